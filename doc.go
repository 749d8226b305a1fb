// Package webcodecs provides WebCodecs-style asynchronous video encoder
// and decoder sessions in Go, backed by pluggable native codec engines.
//
// Key pieces include:
//   - VideoEncoder/VideoDecoder async sessions (configure/encode/decode/
//     flush/reset/close with callback-based output)
//   - Configuration resolution: codec strings, rate control, latency
//     tuning, temporal scalability, and hardware accelerator selection
//     with a one-shot software fallback
//   - Capability probing (ProbeEncoderSupport/ProbeDecoderSupport)
//   - RTP packetization and WebRTC track sinks for encoded output
//
// # Architecture
//
//	Encode: caller -> Configure (resolver) -> job queue -> worker -> Engine -> OnChunk
//	Decode: caller -> Configure (resolver) -> job queue -> worker -> Engine -> OnFrame
//
// Each session owns exactly one background worker goroutine. The caller
// never blocks on Encode/Decode/Reset/Close; Flush returns a promise
// channel that resolves once all prior work has drained. All engine
// handle access is confined to the worker goroutine, and every payload
// crossing between the two goroutines is exclusively owned by one side
// at a time.
//
// # Engines
//
// The actual bitstream transform is performed by an Engine, an external
// collaborator registered per codec family. The built-in native engine
// loads a libwebcodecs_ffi wrapper library via purego (CGO_ENABLED=0).
// Set WEBCODECS_FFI_LIB_PATH to the directory containing the library.
// Tests and embedders can register their own engines.
//
// # Supported Codecs
//
// VP8, VP9, H.264, H.265, AV1. Availability depends on which engines
// are registered at runtime and which native libraries are present.
package webcodecs
