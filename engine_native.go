//go:build darwin || linux

// Native codec engine backed by libwebcodecs_ffi using purego.
//
// libwebcodecs_ffi is a thin wrapper over the platform codec libraries
// with a simple primitive-only API, loaded dynamically at runtime so
// the package builds with CGO_ENABLED=0.
//
// Library locations checked (in order):
//   - WEBCODECS_FFI_LIB_PATH environment variable
//   - Next to the executable, and ../lib
//   - build/ffi relative to the working directory or module root
//   - System library paths

package webcodecs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	wcFFIOnce    sync.Once
	wcFFIHandle  uintptr
	wcFFIInitErr error
)

// libwebcodecs_ffi function pointers
var (
	wcEncoderOpen    func(params uintptr) uint64
	wcEncoderEncode  func(handle uint64, frame uintptr, forceKeyframe int32, out uintptr) int32
	wcEncoderReceive func(handle uint64, out uintptr) int32
	wcEncoderDrain   func(handle uint64, out uintptr) int32
	wcEncoderClose   func(handle uint64)

	wcDecoderOpen    func(params uintptr) uint64
	wcDecoderDecode  func(handle uint64, data uintptr, dataLen int32, pts, duration int64, out uintptr) int32
	wcDecoderReceive func(handle uint64, out uintptr) int32
	wcDecoderDrain   func(handle uint64, out uintptr) int32
	wcDecoderClose   func(handle uint64)

	wcLastError      func() uintptr
	wcCodecAvailable func(codec int32) int32
)

// Constants from webcodecs_ffi.h
const (
	wcCodecVP8  = 0
	wcCodecVP9  = 1
	wcCodecH264 = 2
	wcCodecH265 = 3
	wcCodecAV1  = 4

	wcAccelNone         = 0
	wcAccelVideoToolbox = 1
	wcAccelNVENC        = 2
	wcAccelQSV          = 3
	wcAccelVAAPI        = 4

	wcFlagRealtime  = 1 << 0
	wcFlagAlpha     = 1 << 1
	wcFlagAnnexB    = 1 << 2
	wcFlagFramePool = 1 << 3
	wcFlagLowDelay  = 1 << 4

	wcOK        = 0
	wcAgain     = 1
	wcErrOpen   = -1
	wcErrCodec  = -2
	wcErrInput  = -3
	wcErrNoImpl = -4
)

// wcOpenParams matches wc_open_params_t. Heap-allocated and passed by
// pointer; int64 fields first for alignment.
type wcOpenParams struct {
	BitrateBps    int64
	MinBitrateBps int64
	MaxBitrateBps int64
	BufferBps     int64

	Codec          int32
	Width          int32
	Height         int32
	FramerateX1000 int32
	GOPSize        int32
	Accel          int32
	CRF            int32
	QMin           int32
	QMax           int32
	CPUUsed        int32
	LagInFrames    int32
	MaxBFrames     int32
	RefFrames      int32
	Threads        int32
	TemporalLayers int32
	Flags          int32

	// Cumulative per-layer kbps and rate decimators, base layer first.
	LayerBitrateKbps [3]int32
	LayerDecimator   [3]int32

	DescriptionPtr uint64
	DescriptionLen int32
	Reserved       int32
}

// wcFrameInput matches wc_frame_t.
type wcFrameInput struct {
	YPtr uint64
	UPtr uint64
	VPtr uint64
	APtr uint64

	PTS      int64
	Duration int64

	YStride  int32
	UVStride int32
	AStride  int32
	Width    int32
	Height   int32
	Format   int32
}

// wcChunkResult matches wc_chunk_result_t. Pointers reference memory
// owned by the wrapper, valid until the next call on the same handle.
type wcChunkResult struct {
	DataPtr uint64
	DescPtr uint64

	PTS      int64
	Duration int64

	DataLen       int32
	DescLen       int32
	Key           int32
	TemporalLayer int32
	Result        int32
	Reserved      int32
}

// wcFrameResult matches wc_frame_result_t.
type wcFrameResult struct {
	YPtr uint64
	UPtr uint64
	VPtr uint64
	APtr uint64

	PTS      int64
	Duration int64

	YStride  int32
	UVStride int32
	Width    int32
	Height   int32
	Result   int32
	Reserved int32
}

func loadWebCodecsFFI() error {
	wcFFIOnce.Do(func() {
		wcFFIInitErr = loadWebCodecsFFILib()
	})
	return wcFFIInitErr
}

func loadWebCodecsFFILib() error {
	paths := webCodecsFFILibPaths()

	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			wcFFIHandle = handle
			registerWebCodecsFFISymbols()
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to load libwebcodecs_ffi: %w", lastErr)
	}
	return errors.New("libwebcodecs_ffi not found in any standard location")
}

func webCodecsFFILibPaths() []string {
	var paths []string

	libName := "libwebcodecs_ffi.so"
	if runtime.GOOS == "darwin" {
		libName = "libwebcodecs_ffi.dylib"
	}

	if envPath := os.Getenv("WEBCODECS_FFI_LIB_PATH"); envPath != "" {
		paths = append(paths, filepath.Join(envPath, libName))
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, libName),
			filepath.Join(exeDir, "..", "lib", libName),
		)
	}

	if wd, err := os.Getwd(); err == nil {
		paths = append(paths,
			filepath.Join(wd, "build", libName),
			filepath.Join(wd, "build", "ffi", libName),
		)
	}
	if root := findModuleRoot(); root != "" {
		paths = append(paths,
			filepath.Join(root, "build", libName),
			filepath.Join(root, "build", "ffi", libName),
		)
	}

	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			libName,
			"/usr/local/lib/"+libName,
			"/opt/homebrew/lib/"+libName,
		)
	case "linux":
		paths = append(paths,
			libName,
			"/usr/local/lib/"+libName,
			"/usr/lib/"+libName,
		)
	}

	return paths
}

func registerWebCodecsFFISymbols() {
	purego.RegisterLibFunc(&wcEncoderOpen, wcFFIHandle, "wc_encoder_open")
	purego.RegisterLibFunc(&wcEncoderEncode, wcFFIHandle, "wc_encoder_encode")
	purego.RegisterLibFunc(&wcEncoderReceive, wcFFIHandle, "wc_encoder_receive")
	purego.RegisterLibFunc(&wcEncoderDrain, wcFFIHandle, "wc_encoder_drain")
	purego.RegisterLibFunc(&wcEncoderClose, wcFFIHandle, "wc_encoder_close")

	purego.RegisterLibFunc(&wcDecoderOpen, wcFFIHandle, "wc_decoder_open")
	purego.RegisterLibFunc(&wcDecoderDecode, wcFFIHandle, "wc_decoder_decode")
	purego.RegisterLibFunc(&wcDecoderReceive, wcFFIHandle, "wc_decoder_receive")
	purego.RegisterLibFunc(&wcDecoderDrain, wcFFIHandle, "wc_decoder_drain")
	purego.RegisterLibFunc(&wcDecoderClose, wcFFIHandle, "wc_decoder_close")

	purego.RegisterLibFunc(&wcLastError, wcFFIHandle, "wc_last_error")
	purego.RegisterLibFunc(&wcCodecAvailable, wcFFIHandle, "wc_codec_available")
}

// IsNativeEngineAvailable reports whether libwebcodecs_ffi could be
// loaded on this machine.
func IsNativeEngineAvailable() bool {
	return loadWebCodecsFFI() == nil
}

func nativeLastError() string {
	if wcLastError == nil {
		return ""
	}
	return goStringFromPtr(wcLastError())
}

var nativeCodecTags = map[CodecID]int32{
	CodecVP8:  wcCodecVP8,
	CodecVP9:  wcCodecVP9,
	CodecH264: wcCodecH264,
	CodecH265: wcCodecH265,
	CodecAV1:  wcCodecAV1,
}

var nativeAccelTags = map[Accelerator]int32{
	AcceleratorNone:         wcAccelNone,
	AcceleratorVideoToolbox: wcAccelVideoToolbox,
	AcceleratorNVENC:        wcAccelNVENC,
	AcceleratorQSV:          wcAccelQSV,
	AcceleratorVAAPI:        wcAccelVAAPI,
}

func init() {
	for codec := range nativeCodecTags {
		RegisterEngine(codec, &nativeEngine{codec: codec})
	}
}

// nativeEngine implements Engine on top of libwebcodecs_ffi. The
// library is loaded lazily on the first Open.
type nativeEngine struct {
	codec CodecID
}

func (e *nativeEngine) Name() string { return "webcodecs_ffi" }

func (e *nativeEngine) Open(plan *OpenPlan) (EngineHandle, error) {
	if err := loadWebCodecsFFI(); err != nil {
		return nil, err
	}
	tag := nativeCodecTags[plan.Codec]
	if wcCodecAvailable(tag) == 0 {
		return nil, fmt.Errorf("codec %s not built into libwebcodecs_ffi", plan.Codec)
	}

	params := nativeOpenParams(plan, tag)
	if plan.Encode {
		h := wcEncoderOpen(uintptr(unsafe.Pointer(params)))
		runtime.KeepAlive(params)
		if h == 0 {
			return nil, fmt.Errorf("wc_encoder_open: %s", nativeLastError())
		}
		return &nativeEncoderHandle{handle: h}, nil
	}

	h := wcDecoderOpen(uintptr(unsafe.Pointer(params)))
	runtime.KeepAlive(params)
	if h == 0 {
		return nil, fmt.Errorf("wc_decoder_open: %s", nativeLastError())
	}
	return &nativeDecoderHandle{handle: h}, nil
}

func nativeOpenParams(plan *OpenPlan, tag int32) *wcOpenParams {
	params := &wcOpenParams{
		BitrateBps:     plan.Rate.TargetBitrate,
		MinBitrateBps:  plan.Rate.MinBitrate,
		MaxBitrateBps:  plan.Rate.MaxBitrate,
		BufferBps:      plan.Rate.BufferSize,
		Codec:          tag,
		Width:          int32(plan.Width),
		Height:         int32(plan.Height),
		FramerateX1000: int32(plan.Framerate * 1000),
		GOPSize:        int32(plan.GOPSize),
		Accel:          nativeAccelTags[plan.Accelerator.Type],
		CRF:            int32(plan.Rate.CRF),
		QMin:           int32(plan.Rate.QMin),
		QMax:           int32(plan.Rate.QMax),
		CPUUsed:        int32(plan.Latency.CPUUsed),
		LagInFrames:    int32(plan.Latency.LagInFrames),
		MaxBFrames:     int32(plan.Latency.MaxBFrames),
		RefFrames:      int32(plan.Latency.RefFrames),
		Threads:        int32(plan.Latency.Threads),
		TemporalLayers: int32(len(plan.Temporal.Layers)),
	}

	if plan.Latency.Mode == LatencyModeRealtime {
		params.Flags |= wcFlagRealtime
	}
	if plan.Alpha {
		params.Flags |= wcFlagAlpha
	}
	if plan.AVCFormat == AVCFormatAnnexB {
		params.Flags |= wcFlagAnnexB
	}
	if plan.Accelerator.RequiresFramePool {
		params.Flags |= wcFlagFramePool
	}
	if plan.OptimizeForLatency {
		params.Flags |= wcFlagLowDelay
	}

	for i, layer := range plan.Temporal.Layers {
		if i >= len(params.LayerBitrateKbps) {
			break
		}
		params.LayerBitrateKbps[i] = int32(layer.TargetBitrate / 1000)
		params.LayerDecimator[i] = int32(layer.RateDecimator)
	}

	if len(plan.Description) > 0 {
		params.DescriptionPtr = uint64(uintptr(unsafe.Pointer(&plan.Description[0])))
		params.DescriptionLen = int32(len(plan.Description))
	}
	return params
}

// --- Encoder handle ---

type nativeEncoderHandle struct {
	handle uint64
	closed bool
}

func (h *nativeEncoderHandle) Encode(frame *VideoFrame, forceKeyframe bool) ([]EngineOutput, error) {
	in := nativeFrameInput(frame)
	out := &wcChunkResult{}

	force := int32(0)
	if forceKeyframe {
		force = 1
	}

	ret := wcEncoderEncode(h.handle, uintptr(unsafe.Pointer(in)), force, uintptr(unsafe.Pointer(out)))
	runtime.KeepAlive(frame)
	runtime.KeepAlive(in)
	if ret < 0 {
		return nil, fmt.Errorf("wc_encoder_encode: %s", nativeLastError())
	}

	var outputs []EngineOutput
	for ret == wcAgain {
		outputs = append(outputs, EngineOutput{Chunk: nativeChunk(out)})
		out = &wcChunkResult{}
		ret = wcEncoderReceive(h.handle, uintptr(unsafe.Pointer(out)))
		if ret < 0 {
			return outputs, fmt.Errorf("wc_encoder_receive: %s", nativeLastError())
		}
	}
	return outputs, nil
}

func (h *nativeEncoderHandle) Decode(*EncodedChunk) ([]EngineOutput, error) {
	return nil, errors.New("encoder handle cannot decode")
}

func (h *nativeEncoderHandle) Drain() ([]EngineOutput, error) {
	var outputs []EngineOutput
	for {
		out := &wcChunkResult{}
		ret := wcEncoderDrain(h.handle, uintptr(unsafe.Pointer(out)))
		if ret < 0 {
			return outputs, fmt.Errorf("wc_encoder_drain: %s", nativeLastError())
		}
		if ret != wcAgain {
			return outputs, nil
		}
		outputs = append(outputs, EngineOutput{Chunk: nativeChunk(out)})
	}
}

func (h *nativeEncoderHandle) Close() error {
	if !h.closed {
		wcEncoderClose(h.handle)
		h.closed = true
	}
	return nil
}

// --- Decoder handle ---

type nativeDecoderHandle struct {
	handle uint64
	closed bool
}

func (h *nativeDecoderHandle) Encode(*VideoFrame, bool) ([]EngineOutput, error) {
	return nil, errors.New("decoder handle cannot encode")
}

func (h *nativeDecoderHandle) Decode(chunk *EncodedChunk) ([]EngineOutput, error) {
	if len(chunk.Data) == 0 {
		return nil, errors.New("empty chunk")
	}
	out := &wcFrameResult{}

	ret := wcDecoderDecode(h.handle,
		uintptr(unsafe.Pointer(&chunk.Data[0])), int32(len(chunk.Data)),
		chunk.Timestamp, chunk.Duration,
		uintptr(unsafe.Pointer(out)))
	runtime.KeepAlive(chunk)
	if ret < 0 {
		return nil, fmt.Errorf("wc_decoder_decode: %s", nativeLastError())
	}

	var outputs []EngineOutput
	for ret == wcAgain {
		outputs = append(outputs, EngineOutput{Frame: nativeFrame(out)})
		out = &wcFrameResult{}
		ret = wcDecoderReceive(h.handle, uintptr(unsafe.Pointer(out)))
		if ret < 0 {
			return outputs, fmt.Errorf("wc_decoder_receive: %s", nativeLastError())
		}
	}
	return outputs, nil
}

func (h *nativeDecoderHandle) Drain() ([]EngineOutput, error) {
	var outputs []EngineOutput
	for {
		out := &wcFrameResult{}
		ret := wcDecoderDrain(h.handle, uintptr(unsafe.Pointer(out)))
		if ret < 0 {
			return outputs, fmt.Errorf("wc_decoder_drain: %s", nativeLastError())
		}
		if ret != wcAgain {
			return outputs, nil
		}
		outputs = append(outputs, EngineOutput{Frame: nativeFrame(out)})
	}
}

func (h *nativeDecoderHandle) Close() error {
	if !h.closed {
		wcDecoderClose(h.handle)
		h.closed = true
	}
	return nil
}

// --- Conversions ---

func nativeFrameInput(frame *VideoFrame) *wcFrameInput {
	in := &wcFrameInput{
		PTS:      frame.Timestamp,
		Duration: frame.Duration,
		Width:    int32(frame.Width),
		Height:   int32(frame.Height),
		Format:   int32(frame.Format),
	}
	planePtr := func(i int) uint64 {
		if i < len(frame.Data) && len(frame.Data[i]) > 0 {
			return uint64(uintptr(unsafe.Pointer(&frame.Data[i][0])))
		}
		return 0
	}
	in.YPtr = planePtr(0)
	in.UPtr = planePtr(1)
	in.VPtr = planePtr(2)
	in.APtr = planePtr(3)
	if len(frame.Stride) > 0 {
		in.YStride = int32(frame.Stride[0])
	}
	if len(frame.Stride) > 1 {
		in.UVStride = int32(frame.Stride[1])
	}
	if len(frame.Stride) > 3 {
		in.AStride = int32(frame.Stride[3])
	}
	return in
}

// nativeChunk wraps wrapper-owned chunk memory. The session copies the
// payload before it crosses to the caller, so the view only needs to
// stay valid until then.
func nativeChunk(out *wcChunkResult) *EncodedChunk {
	chunk := &EncodedChunk{
		Type:            ChunkTypeDelta,
		Timestamp:       out.PTS,
		Duration:        out.Duration,
		TemporalLayerID: uint8(out.TemporalLayer),
	}
	if out.Key != 0 {
		chunk.Type = ChunkTypeKey
	}
	if out.DataPtr != 0 && out.DataLen > 0 {
		chunk.Data = unsafe.Slice((*byte)(unsafe.Pointer(uintptr(out.DataPtr))), int(out.DataLen))
	}
	if out.DescPtr != 0 && out.DescLen > 0 {
		chunk.Description = unsafe.Slice((*byte)(unsafe.Pointer(uintptr(out.DescPtr))), int(out.DescLen))
	}
	return chunk
}

func nativeFrame(out *wcFrameResult) *VideoFrame {
	width := int(out.Width)
	height := int(out.Height)
	frame := &VideoFrame{
		Width:     width,
		Height:    height,
		Format:    PixelFormatI420,
		Timestamp: out.PTS,
		Duration:  out.Duration,
		Stride:    []int{int(out.YStride), int(out.UVStride), int(out.UVStride)},
	}
	plane := func(ptr uint64, stride, rows int) []byte {
		if ptr == 0 || stride <= 0 || rows <= 0 {
			return nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), stride*rows)
	}
	frame.Data = [][]byte{
		plane(out.YPtr, int(out.YStride), height),
		plane(out.UPtr, int(out.UVStride), (height+1)/2),
		plane(out.VPtr, int(out.UVStride), (height+1)/2),
	}
	return frame
}
