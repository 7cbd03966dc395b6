package recompress

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AnyUserName/imgreduce/internal/source"
)

// State is the caller-visible lifecycle of a session.
type State int32

const (
	StateIdle State = iota
	StateProcessing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session binds one source image to a Recompressor and allows at most one
// job in flight. Its latest result always belongs to its latest job.
type Session struct {
	id  string
	rec *Recompressor
	src *source.Image
	log logrus.FieldLogger

	mu     sync.Mutex
	state  State
	job    *Job
	result *Result
	err    error
}

// NewSession opens a session for src with a fresh identifier.
func (r *Recompressor) NewSession(src *source.Image) *Session {
	id := uuid.NewString()
	return &Session{
		id:  id,
		rec: r,
		src: src,
		log: r.log.WithField("session", id),
	}
}

func (s *Session) ID() string            { return s.id }
func (s *Session) Source() *source.Image { return s.src }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy is the binary progress flag: true while a job is in flight.
func (s *Session) Busy() bool {
	return s.State() == StateProcessing
}

// Latest returns the result of the most recent completed job, if the
// session has not been reset or resubmitted since.
func (s *Session) Latest() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// Err returns the error of the most recent job when the session is Failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Submit starts a job at quality. It returns ErrBusy if a job is already
// in flight; failed and completed sessions accept a new submission.
// Starting a job discards the previous result.
func (s *Session) Submit(ctx context.Context, quality int) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateProcessing {
		return nil, ErrBusy
	}

	jctx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:        uuid.NewString(),
		SessionID: s.id,
		Quality:   quality,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	s.state = StateProcessing
	s.job = job
	s.result = nil
	s.err = nil

	go s.run(jctx, job)
	return job, nil
}

// Reset returns the session to Idle and drops any result. A job still in
// flight keeps running, but its outcome is only delivered to its Job.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job != nil && s.state == StateProcessing {
		s.job.Cancel()
	}
	s.state = StateIdle
	s.job = nil
	s.result = nil
	s.err = nil
}

func (s *Session) run(ctx context.Context, job *Job) {
	res, err := s.rec.process(ctx, request{
		sessionID: s.id,
		requestID: job.ID,
		src:       s.src,
		quality:   job.Quality,
	})

	s.mu.Lock()
	if s.job == job {
		if err != nil {
			s.state = StateFailed
			s.err = err
		} else {
			s.state = StateCompleted
			s.result = &res
		}
	} else {
		s.log.WithField("request", job.ID).Debug("dropping result of superseded job")
	}
	s.mu.Unlock()

	job.settle(res, err)
}

// Job is one asynchronous invocation. It settles exactly once, with
// either a Result or an error.
type Job struct {
	ID        string
	SessionID string
	Quality   int

	cancel context.CancelFunc
	done   chan struct{}
	res    Result
	err    error
}

// Done is closed when the job settles.
func (j *Job) Done() <-chan struct{} { return j.done }

// Cancel abandons the job; it settles with context.Canceled unless it
// already finished.
func (j *Job) Cancel() { j.cancel() }

// Wait blocks until the job settles or ctx is done. A ctx error does not
// cancel the job itself.
func (j *Job) Wait(ctx context.Context) (Result, error) {
	select {
	case <-j.done:
		return j.res, j.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (j *Job) settle(res Result, err error) {
	j.res, j.err = res, err
	j.cancel()
	close(j.done)
}
