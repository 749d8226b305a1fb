package webcodecs

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// SessionState represents the lifecycle state of a codec session.
type SessionState int

const (
	StateUnconfigured SessionState = iota // No engine handle open
	StateConfiguring                      // Configure in progress
	StateConfigured                       // Engine open, accepting work
	StateFlushing                         // Configured with a flush outstanding
	StateClosed                           // Terminal
)

func (s SessionState) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfiguring:
		return "configuring"
	case StateConfigured:
		return "configured"
	case StateFlushing:
		return "flushing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// session is the shared core of VideoEncoder and VideoDecoder: one job
// queue, one worker goroutine, one engine handle. The caller goroutine
// owns the state machine; the worker owns the engine handle and the
// accelerator context. The queue (with its pending counter and
// generation stamp) is the only state touched by both.
type session struct {
	kind  string // "encoder" or "decoder", for logs and errors
	queue *jobQueue
	wg    sync.WaitGroup
	log   *logrus.Entry

	mu          sync.Mutex
	state       SessionState
	flushes     int         // Outstanding flush promises
	activeAccel Accelerator // Backend actually in use after Configure

	closeOnce sync.Once

	// Delivery callbacks, set once at construction, invoked on the
	// worker goroutine with worker-owned copies.
	onOutput func(EngineOutput)
	onError  func(error)

	// Worker-confined after the open job; never touched by the caller.
	handle   EngineHandle
	accelCtx AcceleratorContext
}

func newSession(kind string, onOutput func(EngineOutput), onError func(error)) *session {
	s := &session{
		kind:     kind,
		queue:    newJobQueue(),
		log:      logrus.WithField("session", kind),
		state:    StateUnconfigured,
		onOutput: onOutput,
		onError:  onError,
	}
	if s.onError == nil {
		s.onError = func(err error) {
			s.log.WithError(err).Warn("unhandled session error")
		}
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// configure resolves nothing itself; it receives the already-resolved
// config, hands an open job to the worker and waits for the reply so
// open errors surface synchronously. The engine handle itself is only
// ever touched on the worker goroutine.
func (s *session) configure(rc *resolvedConfig, engine Engine) error {
	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return ErrClosed
	case StateUnconfigured:
	default:
		st := s.state
		s.mu.Unlock()
		return &StateError{Op: "configure", State: st}
	}
	s.state = StateConfiguring
	s.mu.Unlock()

	reply := make(chan error, 1)
	ok := s.queue.push(&job{kind: jobOpen, open: rc, engine: engine, openCh: reply})
	if !ok {
		s.setState(StateUnconfigured)
		return ErrClosed
	}

	if err := <-reply; err != nil {
		s.setState(StateUnconfigured)
		return err
	}
	s.setState(StateConfigured)
	return nil
}

func (s *session) setState(st SessionState) {
	s.mu.Lock()
	if s.state != StateClosed {
		s.state = st
	}
	s.mu.Unlock()
}

// submit enqueues an encode or decode job. Non-blocking.
func (s *session) submit(j *job) error {
	s.mu.Lock()
	if s.state != StateConfigured {
		st := s.state
		s.mu.Unlock()
		j.releaseBuffers()
		if st == StateClosed {
			return ErrClosed
		}
		op := "encode"
		if j.kind == jobDecode {
			op = "decode"
		}
		return &StateError{Op: op, State: st}
	}
	s.mu.Unlock()

	if !s.queue.push(j) {
		j.releaseBuffers()
		return ErrClosed
	}
	return nil
}

// flush enqueues a flush marker and returns a promise channel that
// resolves once every job submitted before the marker has had its
// results delivered and the engine drained. Work submitted after flush
// queues behind the marker and is processed normally afterwards; the
// session stays configured throughout.
func (s *session) flush() <-chan error {
	done := make(chan error, 1)

	s.mu.Lock()
	if s.state != StateConfigured {
		st := s.state
		s.mu.Unlock()
		if st == StateClosed {
			done <- ErrClosed
		} else {
			done <- &StateError{Op: "flush", State: st}
		}
		return done
	}
	s.flushes++
	s.mu.Unlock()

	if !s.queue.push(&job{kind: jobFlush, flushCh: done}) {
		s.flushDone()
		done <- ErrClosed
	}
	return done
}

func (s *session) flushDone() {
	s.mu.Lock()
	if s.flushes > 0 {
		s.flushes--
	}
	s.mu.Unlock()
}

// reset discards all queued work without delivering results, rejects
// outstanding flush promises, zeroes the pending counter and releases
// the engine handle via a worker-executed control job. The worker
// goroutine itself survives; only the handle and the queue are reset.
func (s *session) reset() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.state = StateUnconfigured
	s.flushes = 0
	s.activeAccel = AcceleratorNone
	s.mu.Unlock()

	s.queue.purge(ErrReset)
	s.queue.push(&job{kind: jobRelease})
	s.log.Debug("session reset")
	return nil
}

// close tears the session down: queued jobs are discarded with their
// buffers released, outstanding flushes are rejected, the worker is
// stopped and joined, and the worker releases the engine handle and
// accelerator context on its way out. Idempotent.
func (s *session) close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		s.flushes = 0
		s.mu.Unlock()

		s.queue.purge(ErrClosed)
		s.queue.stop()
		s.wg.Wait()
		s.log.Debug("session closed")
	})
	return nil
}

func (s *session) currentState() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateConfigured && s.flushes > 0 {
		return StateFlushing
	}
	return s.state
}

func (s *session) activeAccelerator() Accelerator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeAccel
}

// --- Worker ---

// run is the worker loop: wait for a job or the stop signal, process
// one job, deliver its results, repeat. All engine handle access
// happens here.
func (s *session) run() {
	defer s.wg.Done()
	for {
		j, ok := s.queue.pop()
		if !ok {
			break
		}
		s.process(j)
	}
	s.releaseEngine()
}

func (s *session) process(j *job) {
	switch j.kind {
	case jobOpen:
		s.processOpen(j)
	case jobEncode:
		s.processEncode(j)
	case jobDecode:
		s.processDecode(j)
	case jobFlush:
		s.processFlush(j)
	case jobRelease:
		s.releaseEngine()
	}
}

func (s *session) processOpen(j *job) {
	handle, accelCtx, used, err := openWithFallback(j.engine, j.open, s.log)

	if s.queue.stale(j) {
		// A reset or close raced the open; drop whatever was opened and
		// reject the waiting Configure call.
		if handle != nil {
			_ = handle.Close()
		}
		if accelCtx != nil {
			_ = accelCtx.Close()
		}
		cause := ErrReset
		if s.queue.isStopped() {
			cause = ErrClosed
		}
		j.openCh <- cause
		return
	}

	if err != nil {
		j.openCh <- err
		return
	}

	s.handle = handle
	s.accelCtx = accelCtx
	s.mu.Lock()
	s.activeAccel = used
	s.mu.Unlock()
	j.openCh <- nil
}

func (s *session) processEncode(j *job) {
	outputs, err := s.handle.Encode(j.frame, j.forceKeyframe)
	j.releaseBuffers()
	s.finishDataJob(j, outputs, err, "encode")
}

func (s *session) processDecode(j *job) {
	outputs, err := s.handle.Decode(j.chunk)
	j.releaseBuffers()
	s.finishDataJob(j, outputs, err, "decode")
}

// finishDataJob delivers a data job's outputs and completes it. Per-job
// engine errors go to the error callback; the session stays configured
// and subsequent jobs may still succeed.
func (s *session) finishDataJob(j *job, outputs []EngineOutput, err error, op string) {
	if s.queue.stale(j) {
		return
	}
	if err != nil {
		s.onError(fmt.Errorf("%s: %w", op, err))
	}
	for _, out := range outputs {
		s.deliver(out)
	}
	s.queue.complete(j)
}

// processFlush drains the engine, delivers everything it was holding,
// then resolves the flush promise. Drain errors are reported like
// per-job errors but never leave the promise unresolved, and flushing
// never makes the session unable to accept new work.
func (s *session) processFlush(j *job) {
	var outputs []EngineOutput
	var err error
	if s.handle != nil {
		outputs, err = s.handle.Drain()
	}

	if s.queue.stale(j) {
		// Purge already rejected the promise if it was still queued;
		// an in-flight marker resolves here instead.
		cause := ErrReset
		if s.queue.isStopped() {
			cause = ErrClosed
		}
		select {
		case j.flushCh <- cause:
		default:
		}
		return
	}

	if err != nil {
		s.onError(fmt.Errorf("flush: %w", err))
	}
	for _, out := range outputs {
		s.deliver(out)
	}
	s.queue.complete(j)
	s.flushDone()
	j.flushCh <- nil
}

// deliver copies an engine output and hands it to the caller-facing
// callback. The worker never exposes engine-owned memory.
func (s *session) deliver(out EngineOutput) {
	copied := EngineOutput{}
	if out.Chunk != nil {
		copied.Chunk = out.Chunk.Clone()
	}
	if out.Frame != nil {
		copied.Frame = out.Frame.Clone()
	}
	s.onOutput(copied)
}

// releaseEngine closes the engine handle and accelerator context.
// Runs on the worker only; both closes are idempotent.
func (s *session) releaseEngine() {
	if s.handle != nil {
		if err := s.handle.Close(); err != nil {
			s.log.WithError(err).Warn("engine handle close failed")
		}
		s.handle = nil
	}
	if s.accelCtx != nil {
		if err := s.accelCtx.Close(); err != nil {
			s.log.WithError(err).Warn("accelerator context close failed")
		}
		s.accelCtx = nil
	}
}

// openWithFallback opens the engine handle using the first accelerator
// candidate of the plan. On open failure it retries exactly once with a
// software-only plan, unless the caller asked for prefer-hardware; a
// second failure is fatal. The two attempts are an explicit two-step
// transition, never a retry loop.
func openWithFallback(engine Engine, rc *resolvedConfig, log *logrus.Entry) (EngineHandle, AcceleratorContext, Accelerator, error) {
	plan := rc.plan

	var accelCtx AcceleratorContext
	if len(rc.candidates) > 0 {
		cand := rc.candidates[0]
		if p := currentAcceleratorProvider(); p != nil {
			accelCtx = p.Create(cand.Type)
		}
		if accelCtx != nil {
			plan.Accelerator = cand
			plan.AcceleratorContext = accelCtx
		} else {
			// Accelerator unavailable on this machine; not a failure,
			// continue with software directly.
			log.WithField("accelerator", cand.Type).Debug("accelerator unavailable, using software")
		}
	}

	handle, err := engine.Open(&plan)
	if err == nil {
		return handle, accelCtx, plan.Accelerator.Type, nil
	}

	hwAttempt := plan.Accelerator.Type != AcceleratorNone
	if !hwAttempt || rc.preference == PreferHardware {
		if accelCtx != nil {
			_ = accelCtx.Close()
		}
		return nil, nil, AcceleratorNone, fmt.Errorf("%w: %s: %v", ErrEngineOpen, engine.Name(), err)
	}

	// Hardware open failed: release accelerator resources and make the
	// single software attempt.
	log.WithFields(logrus.Fields{
		"accelerator": plan.Accelerator.Type,
		"error":       err,
	}).Warn("hardware open failed, falling back to software")
	_ = accelCtx.Close()

	swPlan := rc.plan
	swPlan.Accelerator = AcceleratorCandidate{Type: AcceleratorNone, InputFormat: rc.plan.PixelFormat}
	swPlan.AcceleratorContext = nil

	handle, swErr := engine.Open(&swPlan)
	if swErr != nil {
		return nil, nil, AcceleratorNone, fmt.Errorf("%w: %s: %v (after hardware failure: %v)",
			ErrEngineOpen, engine.Name(), swErr, err)
	}
	return handle, nil, AcceleratorNone, nil
}
