package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSerial_RunsInSubmissionOrder(t *testing.T) {
	s := NewSerial()
	defer s.Close()

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 1; i <= 3; i++ {
		n := i
		s.Schedule(func() {
			mu.Lock()
			got = append(got, n)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestSerial_PanickingThunkDoesNotKillWorker(t *testing.T) {
	s := NewSerial()
	defer s.Close()

	done := make(chan struct{})
	s.Schedule(func() { panic("boom") })
	s.Schedule(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panicking thunk")
	}
}

func TestSerial_CloseDrainsQueue(t *testing.T) {
	s := NewSerial()

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 10; i++ {
		s.Schedule(func() {
			mu.Lock()
			ran++
			mu.Unlock()
		})
	}
	s.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, ran)

	// scheduling after close drops silently
	s.Schedule(func() { t.Error("thunk ran on closed scheduler") })
	s.Close() // idempotent
}

func TestManual_FlushRunsQueuedAndNested(t *testing.T) {
	m := NewManual()

	var got []string
	m.Schedule(func() {
		got = append(got, "outer")
		m.Schedule(func() { got = append(got, "nested") })
	})

	assert.Equal(t, 1, m.Pending())
	assert.Equal(t, 2, m.Flush())
	assert.Equal(t, []string{"outer", "nested"}, got)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_FlushSurvivesPanickingThunk(t *testing.T) {
	m := NewManual()

	ran := false
	m.Schedule(func() { panic("boom") })
	m.Schedule(func() { ran = true })

	assert.Equal(t, 2, m.Flush())
	assert.True(t, ran)
}
