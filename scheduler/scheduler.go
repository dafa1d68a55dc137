package scheduler

import (
	"sync"

	"github.com/hupe1980/agenthooks/core"
	"github.com/hupe1980/agenthooks/logging"
)

// Options configures a Serial scheduler.
type Options struct {
	// Logger reports panicking thunks. Defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Serial executes scheduled thunks one at a time, in submission order, on a
// single owned goroutine. It guarantees a thunk never runs on the caller's
// stack, which is what keeps asynchronous state updates from re-entering a
// render procedure already in flight. The queue is unbounded; Schedule never
// blocks. Panicking thunks are recovered and logged.
type Serial struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
	logger logging.Logger
}

var _ core.Scheduler = (*Serial)(nil)

// NewSerial creates a Serial scheduler and starts its worker goroutine.
// Callers own the scheduler and must Close it when done.
func NewSerial(optFns ...func(o *Options)) *Serial {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Serial{done: make(chan struct{}), logger: opts.Logger}
	s.cond = sync.NewCond(&s.mu)
	go s.loop()
	return s
}

// Schedule enqueues fn for execution after all previously scheduled thunks.
// Scheduling on a closed scheduler drops the thunk with a warning.
func (s *Serial) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn("scheduler: schedule on closed scheduler, thunk dropped")
		return
	}
	s.queue = append(s.queue, fn)
	s.cond.Signal()
}

// Close drains any remaining thunks, stops the worker goroutine and waits
// for it to exit. Close is idempotent.
func (s *Serial) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.cond.Signal()
	s.mu.Unlock()
	<-s.done
}

func (s *Serial) loop() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.run(fn)
	}
}

func (s *Serial) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler: scheduled thunk panicked: %v", r)
		}
	}()
	fn()
}
