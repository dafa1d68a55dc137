package scheduler

import (
	"sync"

	"github.com/hupe1980/agenthooks/core"
)

// Manual queues thunks until Flush is called. It makes asynchronous behavior
// fully deterministic and is intended for tests.
type Manual struct {
	mu    sync.Mutex
	queue []func()
}

var _ core.Scheduler = (*Manual)(nil)

// NewManual creates an empty Manual scheduler.
func NewManual() *Manual { return &Manual{} }

// Schedule enqueues fn until the next Flush.
func (m *Manual) Schedule(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, fn)
}

// Pending returns the number of queued thunks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Flush runs queued thunks in submission order until the queue is empty,
// including thunks enqueued by the thunks themselves. It returns the number
// of thunks executed. Panicking thunks are recovered so a failure cannot
// abort the drain.
func (m *Manual) Flush() int {
	count := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return count
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		runRecovered(fn)
		count++
	}
}

func runRecovered(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
