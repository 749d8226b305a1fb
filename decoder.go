package webcodecs

import "github.com/sirupsen/logrus"

// FrameCallback receives decoded frames from a VideoDecoder. It is
// invoked on the session's worker goroutine; the frame is owned by the
// receiver.
type FrameCallback func(frame *VideoFrame)

// VideoDecoder is an asynchronous video decoder session in the shape of
// the WebCodecs VideoDecoder interface. Chunks submitted with Decode
// are processed on a dedicated background goroutine; decoded frames and
// errors are delivered through the construction callbacks.
//
// Job processing order is strict FIFO. Output frame timestamps are
// whatever the engine reports: engines may reorder presentation order
// internally, this layer never does.
type VideoDecoder struct {
	s *session
}

// NewVideoDecoder creates an unconfigured decoder session and starts
// its worker goroutine. onFrame must not be nil; a nil onError logs
// asynchronous errors instead of delivering them.
func NewVideoDecoder(onFrame FrameCallback, onError ErrorCallback) *VideoDecoder {
	var errCb func(error)
	if onError != nil {
		errCb = func(err error) { onError(err) }
	}
	d := &VideoDecoder{}
	d.s = newSession("decoder",
		func(out EngineOutput) {
			if out.Frame != nil {
				onFrame(out.Frame)
			}
		},
		errCb,
	)
	return d
}

// Configure resolves the configuration and opens the engine handle.
// Same synchronous error reporting and one-shot software fallback
// semantics as VideoEncoder.Configure.
func (d *VideoDecoder) Configure(cfg DecoderConfig) error {
	rc, err := resolveDecoderConfig(cfg)
	if err != nil {
		return err
	}
	engine, err := EngineFor(rc.plan.Codec)
	if err != nil {
		return err
	}

	if err := d.s.configure(rc, engine); err != nil {
		return err
	}
	d.s.log.WithFields(logrus.Fields{
		"codec":       rc.plan.Codec,
		"accelerator": d.s.activeAccelerator(),
		"engine":      engine.Name(),
	}).Debug("decoder configured")
	return nil
}

// Decode submits an encoded chunk and returns immediately. The chunk
// data is moved into the session; the caller must not touch it
// afterwards. Only legal while configured.
func (d *VideoDecoder) Decode(chunk *EncodedChunk) error {
	return d.s.submit(&job{kind: jobDecode, chunk: chunk})
}

// Flush enqueues a flush marker and returns a promise channel, with the
// same semantics as VideoEncoder.Flush.
func (d *VideoDecoder) Flush() <-chan error {
	return d.s.flush()
}

// Reset discards queued chunks without delivering frames and releases
// the engine handle, returning the session to unconfigured.
func (d *VideoDecoder) Reset() error {
	return d.s.reset()
}

// Close tears the session down and joins the worker goroutine.
// Idempotent.
func (d *VideoDecoder) Close() error {
	return d.s.close()
}

// PendingCount returns the number of submitted chunks and flush markers
// not yet fully processed. This is the WebCodecs decodeQueueSize.
func (d *VideoDecoder) PendingCount() int64 {
	return d.s.queue.pendingCount()
}

// State returns the session lifecycle state.
func (d *VideoDecoder) State() SessionState {
	return d.s.currentState()
}

// ActiveAccelerator reports the hardware backend actually in use.
func (d *VideoDecoder) ActiveAccelerator() Accelerator {
	return d.s.activeAccelerator()
}
