package host

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agenthooks/core"
	"github.com/hupe1980/agenthooks/internal/testutil"
	"github.com/hupe1980/agenthooks/logging"
	"github.com/hupe1980/agenthooks/scheduler"
)

func newTestHost(agent core.Agent, rec *testutil.Recorder) (*Host, *scheduler.Manual) {
	manual := scheduler.NewManual()
	h := New(agent, rec.Listen, func(o *Options) {
		o.ID = "test-host"
		o.Scheduler = manual
	})
	return h, manual
}

func TestRenderStatelessEmitsSingleFinalEvent(t *testing.T) {
	rec := testutil.NewRecorder()
	h, _ := newTestHost(func(args ...any) any {
		return fmt.Sprintf("echo:%v", args[0])
	}, rec)

	h.Render("one")
	h.Render("two")

	events := rec.Events()
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, core.EventTypeValue, ev.Type)
		assert.False(t, ev.Async)
		assert.False(t, ev.Intermediate)
		assert.Equal(t, "test-host", ev.HostID)
		assert.NotEmpty(t, ev.ID)
	}
	assert.Equal(t, "echo:one", events[0].Value)
	assert.Equal(t, "echo:two", events[1].Value)
}

func TestRenderSyncBatchingConvergesInOneExtraPass(t *testing.T) {
	rec := testutil.NewRecorder()
	invocations := 0

	h, manual := newTestHost(func(args ...any) any {
		invocations++
		value, set := UseState(0)
		if value == 0 {
			set.Set(1)
			set.Set(2)
			set.Set(3)
		}
		return value
	}, rec)

	h.Render()

	// Three setter calls in one pass collapse into a single extra pass.
	assert.Equal(t, 2, invocations)
	assert.Equal(t, []any{0, 3}, rec.Values())

	events := rec.Events()
	require.Len(t, events, 2)
	assert.True(t, events[0].Intermediate)
	assert.False(t, events[1].Intermediate)

	// Deferred flushes find the queues already drained and stay silent.
	manual.Flush()
	assert.Equal(t, 2, rec.Len())
	assert.Equal(t, 2, invocations)
}

func TestRenderGreetingScenario(t *testing.T) {
	rec := testutil.NewRecorder()
	var nameSetter *StateSetter

	h, manual := newTestHost(func(args ...any) any {
		salutation := args[0].(string)
		name, setName := UseState("John Doe")
		nameSetter = setName
		UseEffect(func() core.Cleanup {
			if name == "John Doe" {
				setName.Set("Jane Doe")
			}
			return nil
		}, core.Deps{name})
		return fmt.Sprintf("%s, %s!", salutation, name)
	}, rec)

	h.Render("Hello")

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Hello, John Doe!", events[0].Value)
	assert.True(t, events[0].Intermediate)
	assert.Equal(t, "Hello, Jane Doe!", events[1].Value)
	assert.False(t, events[1].Intermediate)
	assert.False(t, events[1].Async)

	// A setter call after the render has finished triggers an asynchronous
	// re-render with the most recent arguments.
	rec.Clear()
	manual.Flush()
	require.Zero(t, rec.Len())

	nameSetter.Set("Johnny Doe")
	manual.Flush()

	events = rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Hello, Johnny Doe!", events[0].Value)
	assert.True(t, events[0].Async)
	assert.False(t, events[0].Intermediate)
}

func TestRenderEffectStateReentersLoop(t *testing.T) {
	rec := testutil.NewRecorder()

	h, _ := newTestHost(func(args ...any) any {
		value, set := UseState(0)
		UseEffect(func() core.Cleanup {
			if n, _ := value.(int); n < 3 {
				set.Set(core.Updater(func(prev any) any { return prev.(int) + 1 }))
			}
			return nil
		}, nil)
		return value
	}, rec)

	h.Render()

	// Every superseded pass surfaces as an intermediate; only the converged
	// value is final.
	assert.Equal(t, []any{0, 1, 2, 3}, rec.Values())
	events := rec.Events()
	require.Len(t, events, 4)
	for _, ev := range events[:3] {
		assert.True(t, ev.Intermediate)
	}
	assert.False(t, events[3].Intermediate)
}

func TestAsyncSetterCallsCoalesce(t *testing.T) {
	rec := testutil.NewRecorder()
	var setter *StateSetter

	h, manual := newTestHost(func(args ...any) any {
		value, set := UseState(0)
		setter = set
		return value
	}, rec)

	h.Render()
	rec.Clear()

	setter.Set(1)
	setter.Set(2)
	setter.Set(3)
	manual.Flush()

	// The first flush drains the whole batch; the remaining flushes are
	// no-ops, so a single re-render reports the folded result.
	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].Value)
	assert.True(t, events[0].Async)
}

func TestAsyncFlushPanickingUpdaterEmitsErrorEvent(t *testing.T) {
	rec := testutil.NewRecorder()
	var setter *StateSetter

	h, manual := newTestHost(func(args ...any) any {
		value, set := UseState(0)
		setter = set
		return value
	}, rec)

	h.Render()
	rec.Clear()

	setter.Set(core.Updater(func(prev any) any { panic("poisoned update") }))
	manual.Flush()

	// The failure surfaces exactly like an in-render one: teardown plus an
	// asynchronous error event.
	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, core.EventTypeError, events[0].Type)
	assert.Equal(t, "poisoned update", events[0].Error)
	assert.True(t, events[0].Async)

	// The failing entry was consumed, so further flushes stay silent.
	manual.Flush()
	assert.Equal(t, 1, rec.Len())

	// The host starts over from a blank slate and keeps working.
	rec.Clear()
	h.Render()
	assert.Equal(t, []any{0}, rec.Values())

	setter.Set(7)
	manual.Flush()
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, 7, last.Value)
	assert.True(t, last.Async)
}

func TestRenderGreetingEffectSchedulesAsyncUpdate(t *testing.T) {
	rec := testutil.NewRecorder()
	release := make(chan struct{})
	setDone := make(chan struct{})

	h, manual := newTestHost(func(args ...any) any {
		salutation := args[0].(string)
		name, setName := UseState("John Doe")
		UseEffect(func() core.Cleanup {
			if name == "John Doe" {
				setName.Set("Jane Doe")
				go func() {
					<-release
					setName.Set("Johnny Doe")
					close(setDone)
				}()
			}
			return nil
		}, core.Deps{name})
		return fmt.Sprintf("%s, %s!", salutation, name)
	}, rec)

	h.Render("Hello")

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Hello, John Doe!", events[0].Value)
	assert.True(t, events[0].Intermediate)
	assert.Equal(t, "Hello, Jane Doe!", events[1].Value)
	assert.False(t, events[1].Intermediate)

	rec.Clear()
	manual.Flush()
	require.Zero(t, rec.Len())

	// The effect's own goroutine delivers the third update after the
	// render has finished.
	close(release)
	<-setDone
	manual.Flush()

	events = rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Hello, Johnny Doe!", events[0].Value)
	assert.True(t, events[0].Async)
	assert.False(t, events[0].Intermediate)
}

func TestRenderLogsStructuredOutcome(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LogLevelDebug,
		Format: "json",
		Output: &buf,
	})

	rec := testutil.NewRecorder()
	manual := scheduler.NewManual()
	var setter *StateSetter

	h := New(func(args ...any) any {
		value, set := UseState(0)
		setter = set
		UseEffect(func() core.Cleanup { return nil }, core.Deps{})
		return value
	}, rec.Listen, func(o *Options) {
		o.Scheduler = manual
		o.Logger = logger
	})

	h.Render()
	setter.Set(1)
	manual.Flush()

	out := buf.String()
	assert.Contains(t, out, "Render completed")
	assert.Contains(t, out, "Effect executed")
	assert.Contains(t, out, "State batch applied")
}

func TestAsyncSetterNoChangeSkipsRender(t *testing.T) {
	rec := testutil.NewRecorder()
	var setter *StateSetter

	h, manual := newTestHost(func(args ...any) any {
		value, set := UseState("same")
		setter = set
		return value
	}, rec)

	h.Render()
	rec.Clear()

	setter.Set("same")
	manual.Flush()

	assert.Zero(t, rec.Len())
}

func TestResetEmitsEventAndClearsState(t *testing.T) {
	rec := testutil.NewRecorder()
	cleaned := 0

	h, _ := newTestHost(func(args ...any) any {
		value, set := UseState(0)
		UseEffect(func() core.Cleanup {
			if value == 0 {
				set.Set(41)
			}
			return nil
		}, core.Deps{value})
		UseEffect(func() core.Cleanup {
			return func() { cleaned++ }
		}, core.Deps{})
		return value
	}, rec)

	h.Render()
	rec.Clear()

	h.Reset()
	assert.Equal(t, 1, cleaned)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, core.EventTypeReset, events[0].Type)

	// Reset is idempotent: a second call emits again but has nothing to
	// tear down.
	h.Reset()
	assert.Equal(t, 1, cleaned)
	assert.Equal(t, 2, rec.Len())

	// The next render starts from a blank slate.
	rec.Clear()
	h.Render()
	assert.Equal(t, []any{0, 41}, rec.Values())
}

func TestRenderAgentPanicEmitsErrorEvent(t *testing.T) {
	rec := testutil.NewRecorder()
	cleaned := false

	h, _ := newTestHost(func(args ...any) any {
		_, _ = UseState(1)
		UseEffect(func() core.Cleanup {
			return func() { cleaned = true }
		}, core.Deps{})
		if len(args) > 0 && args[0] == "boom" {
			panic("agent exploded")
		}
		return "ok"
	}, rec)

	h.Render()
	rec.Clear()

	h.Render("boom")

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, core.EventTypeError, events[0].Type)
	assert.Equal(t, "agent exploded", events[0].Error)
	assert.False(t, events[0].Async)
	assert.True(t, cleaned, "failure must hard-reset the memory")

	// A failed host stays usable: the next render begins from scratch.
	rec.Clear()
	h.Render()
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, core.EventTypeValue, last.Type)
	assert.Equal(t, "ok", last.Value)
}

func TestRenderEffectPanicEmitsErrorEvent(t *testing.T) {
	rec := testutil.NewRecorder()

	h, _ := newTestHost(func(args ...any) any {
		UseEffect(func() core.Cleanup {
			panic("effect exploded")
		}, nil)
		return "unreachable final"
	}, rec)

	h.Render()

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, core.EventTypeError, last.Type)
	assert.Equal(t, "effect exploded", last.Error)
}

func TestRenderHookOrderChangeEmitsErrorEvent(t *testing.T) {
	rec := testutil.NewRecorder()
	flip := false

	h, _ := newTestHost(func(args ...any) any {
		if flip {
			UseEffect(func() core.Cleanup { return nil }, core.Deps{})
		} else {
			_, _ = UseState(0)
		}
		return "ok"
	}, rec)

	h.Render()
	flip = true
	rec.Clear()

	h.Render()

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, core.EventTypeError, last.Type)
}

func TestHostOwnedSchedulerDeliversAsyncRender(t *testing.T) {
	rec := testutil.NewRecorder()
	var setter *StateSetter

	h := New(func(args ...any) any {
		value, set := UseState("initial")
		setter = set
		return value
	}, rec.Listen)
	defer h.Close()

	h.Render()
	require.True(t, rec.WaitFor(1, time.Second))

	setter.Set("updated")
	require.True(t, rec.WaitFor(2, time.Second))

	events := rec.Events()
	assert.Equal(t, "initial", events[0].Value)
	assert.Equal(t, "updated", events[1].Value)
	assert.True(t, events[1].Async)
}

func TestHostDefaultsGenerateID(t *testing.T) {
	h := New(func(args ...any) any { return nil }, nil)
	defer h.Close()

	assert.NotEmpty(t, h.ID())

	// A nil listener is tolerated.
	h.Render()
}
