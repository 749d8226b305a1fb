package webcodecs

import "github.com/sirupsen/logrus"

// ChunkCallback receives encoded chunks from a VideoEncoder. It is
// invoked on the session's worker goroutine; the chunk is owned by the
// receiver.
type ChunkCallback func(chunk *EncodedChunk)

// ErrorCallback receives asynchronous per-job and drain errors.
type ErrorCallback func(err error)

// EncodeOptions carries per-call encode options.
type EncodeOptions struct {
	// KeyFrame forces the frame to be encoded as a keyframe.
	KeyFrame bool
}

// VideoEncoder is an asynchronous video encoder session in the shape of
// the WebCodecs VideoEncoder interface. Frames submitted with Encode
// are processed on a dedicated background goroutine; encoded chunks and
// errors are delivered through the construction callbacks.
//
// A VideoEncoder is intended for use from a single caller goroutine
// plus the internal worker, mirroring an event-loop embedding.
type VideoEncoder struct {
	s *session
}

// NewVideoEncoder creates an unconfigured encoder session and starts
// its worker goroutine. onChunk must not be nil; a nil onError logs
// asynchronous errors instead of delivering them.
func NewVideoEncoder(onChunk ChunkCallback, onError ErrorCallback) *VideoEncoder {
	var errCb func(error)
	if onError != nil {
		errCb = func(err error) { onError(err) }
	}
	e := &VideoEncoder{}
	e.s = newSession("encoder",
		func(out EngineOutput) {
			if out.Chunk != nil {
				onChunk(out.Chunk)
			}
		},
		errCb,
	)
	return e
}

// Configure resolves the configuration and opens the engine handle.
// Open errors are reported synchronously; when the first accelerator
// candidate fails to open and the preference is not prefer-hardware,
// a single software retry is made before giving up. On failure the
// session stays unconfigured with no partial state.
func (e *VideoEncoder) Configure(cfg EncoderConfig) error {
	rc, err := resolveEncoderConfig(cfg)
	if err != nil {
		return err
	}
	engine, err := EngineFor(rc.plan.Codec)
	if err != nil {
		return err
	}

	if err := e.s.configure(rc, engine); err != nil {
		return err
	}
	e.s.log.WithFields(logrus.Fields{
		"codec":       rc.plan.Codec,
		"width":       rc.plan.Width,
		"height":      rc.plan.Height,
		"accelerator": e.s.activeAccelerator(),
		"engine":      engine.Name(),
	}).Debug("encoder configured")
	return nil
}

// Encode submits a frame for encoding and returns immediately. The
// frame's plane data is moved into the session; the caller must not
// touch it afterwards. Only legal while configured.
func (e *VideoEncoder) Encode(frame *VideoFrame, opts EncodeOptions) error {
	return e.s.submit(&job{
		kind:          jobEncode,
		frame:         frame,
		forceKeyframe: opts.KeyFrame,
	})
}

// Flush enqueues a flush marker and returns a promise channel. The
// channel resolves with nil once every previously submitted frame has
// had its chunks delivered and the engine drained, or with an error if
// the session is reset or closed first. Flush does not block new
// submissions and leaves the session configured.
func (e *VideoEncoder) Flush() <-chan error {
	return e.s.flush()
}

// Reset discards all queued frames without delivering chunks, rejects
// outstanding flush promises and releases the engine handle, returning
// the session to the unconfigured state. The worker goroutine is kept.
func (e *VideoEncoder) Reset() error {
	return e.s.reset()
}

// Close tears the session down and joins the worker goroutine. Safe to
// call more than once; the second call is a no-op.
func (e *VideoEncoder) Close() error {
	return e.s.close()
}

// PendingCount returns the number of submitted frames and flush markers
// not yet fully processed; the caller's backpressure signal. This is
// the WebCodecs encodeQueueSize.
func (e *VideoEncoder) PendingCount() int64 {
	return e.s.queue.pendingCount()
}

// State returns the session lifecycle state.
func (e *VideoEncoder) State() SessionState {
	return e.s.currentState()
}

// ActiveAccelerator reports the hardware backend actually in use, or
// AcceleratorNone after a software open or fallback.
func (e *VideoEncoder) ActiveAccelerator() Accelerator {
	return e.s.activeAccelerator()
}
