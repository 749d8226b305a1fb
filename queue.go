package webcodecs

import "sync"

// jobKind discriminates the typed jobs flowing through a session queue.
type jobKind int

const (
	jobEncode  jobKind = iota // Frame to encode
	jobDecode                 // Chunk to decode
	jobFlush                  // Flush marker
	jobOpen                   // Control: open the engine handle
	jobRelease                // Control: release the engine handle
)

// job is one unit of work handed from the caller goroutine to the
// worker. Input buffers are moved into the job at enqueue time and
// owned by the worker afterwards.
type job struct {
	kind jobKind
	gen  uint64 // Generation stamp; results from stale jobs are dropped

	frame         *VideoFrame   // jobEncode
	chunk         *EncodedChunk // jobDecode
	forceKeyframe bool          // jobEncode

	flushCh chan error // jobFlush: resolves the caller's flush promise

	open   *resolvedConfig // jobOpen
	engine Engine          // jobOpen: engine resolved at Configure time
	openCh chan error      // jobOpen: synchronous reply to Configure
}

// countable reports whether the job contributes to the caller-visible
// pending counter. Control jobs do not.
func (j *job) countable() bool {
	switch j.kind {
	case jobEncode, jobDecode, jobFlush:
		return true
	default:
		return false
	}
}

// releaseBuffers drops any input buffers owned by the job.
func (j *job) releaseBuffers() {
	if j.frame != nil {
		j.frame.release()
		j.frame = nil
	}
	if j.chunk != nil {
		j.chunk.release()
		j.chunk = nil
	}
}

// jobQueue is the FIFO connecting the caller goroutine to a session's
// single worker. Enqueue is non-blocking; dequeue blocks the worker
// until a job arrives or the queue is stopped. The queue also owns the
// pending-job counter and the generation stamp, so all cross-goroutine
// session state lives under one lock.
type jobQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	jobs    []*job
	pending int64
	gen     uint64
	stopped bool
}

func newJobQueue() *jobQueue {
	q := &jobQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends a job, stamping it with the current generation.
// Returns false if the queue has been stopped.
func (q *jobQueue) push(j *job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return false
	}
	j.gen = q.gen
	q.jobs = append(q.jobs, j)
	if j.countable() {
		q.pending++
	}
	q.cond.Signal()
	return true
}

// pop blocks until a job is available or the queue is stopped.
// The second return is false once the queue is stopped.
func (q *jobQueue) pop() (*job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.jobs) == 0 && !q.stopped {
		q.cond.Wait()
	}
	if q.stopped {
		return nil, false
	}

	j := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	return j, true
}

// complete marks a job finished, decrementing the pending counter
// unless the job predates the last purge.
func (q *jobQueue) complete(j *job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if j.countable() && j.gen == q.gen && q.pending > 0 {
		q.pending--
	}
}

// stale reports whether the job predates the last purge. Results of
// stale jobs must not be delivered.
func (q *jobQueue) stale(j *job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return j.gen != q.gen
}

// purge discards every queued job without delivering results: input
// buffers are released, queued flush promises and open replies are
// rejected with cause, the pending counter is zeroed and the
// generation advances so in-flight results are dropped too.
func (q *jobQueue) purge(cause error) {
	q.mu.Lock()
	jobs := q.jobs
	q.jobs = nil
	q.pending = 0
	q.gen++
	q.mu.Unlock()

	for _, j := range jobs {
		j.releaseBuffers()
		if j.flushCh != nil {
			j.flushCh <- cause
		}
		if j.openCh != nil {
			j.openCh <- cause
		}
	}
}

// stop wakes the worker and makes pop return false from now on.
// Call purge first so no job is silently dropped.
func (q *jobQueue) stop() {
	q.mu.Lock()
	q.stopped = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// isStopped reports whether stop has been called.
func (q *jobQueue) isStopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}

// pendingCount returns the caller-visible backpressure signal.
func (q *jobQueue) pendingCount() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}
