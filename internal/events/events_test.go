package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickReport struct {
	Period  int
	Seconds int
}

func TestCallbackEvent_ListenNotify(t *testing.T) {
	event := NewCallbackEvent[tickReport](false)

	var received []tickReport
	unregister := event.Listen(func(r tickReport) {
		received = append(received, r)
	})
	assert.Equal(t, 1, event.ListenerCount())

	event.Notify(tickReport{Period: 1, Seconds: 300})
	event.Notify(tickReport{Period: 1, Seconds: 299})
	require.Len(t, received, 2)
	assert.Equal(t, 299, received[1].Seconds)

	unregister()
	unregister()
	assert.Equal(t, 0, event.ListenerCount())

	event.Notify(tickReport{Period: 1, Seconds: 298})
	assert.Len(t, received, 2)
}

func TestCallbackEvent_Replay(t *testing.T) {
	event := NewCallbackEvent[string](true)

	var early []string
	defer event.Listen(func(s string) { early = append(early, s) })()
	assert.Empty(t, early, "nothing to replay before the first Notify")

	_, ok := event.Last()
	assert.False(t, ok)

	event.Notify("Run")

	var late []string
	defer event.Listen(func(s string) { late = append(late, s) })()
	assert.Equal(t, []string{"Run"}, late)

	event.Notify("Walk")
	assert.Equal(t, []string{"Run", "Walk"}, early)
	assert.Equal(t, []string{"Run", "Walk"}, late)

	last, ok := event.Last()
	assert.True(t, ok)
	assert.Equal(t, "Walk", last)
}

func TestCallbackEvent_NoReplay(t *testing.T) {
	event := NewCallbackEvent[string](false)
	event.Notify("Run")

	var received []string
	defer event.Listen(func(s string) { received = append(received, s) })()
	assert.Empty(t, received)

	_, ok := event.Last()
	assert.False(t, ok)
}

func TestCallbackEvent_ListenerMayUnregisterItself(t *testing.T) {
	event := NewCallbackEvent[int](false)

	calls := 0
	var unregister func()
	unregister = event.Listen(func(int) {
		calls++
		unregister()
	})

	event.Notify(1)
	event.Notify(2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, event.ListenerCount())
}

func TestCallbackEvent_NilCallbackPanics(t *testing.T) {
	event := NewCallbackEvent[string](false)
	assert.Panics(t, func() { event.Listen(nil) })
}

func TestChannelEvent_ListenNotify(t *testing.T) {
	event := NewChannelEvent[tickReport](false)

	ch := make(chan tickReport, 4)
	unregister := event.Listen(ch)

	event.Notify(tickReport{Period: 2, Seconds: 60})
	require.Len(t, ch, 1)
	assert.Equal(t, tickReport{Period: 2, Seconds: 60}, <-ch)

	unregister()
	event.Notify(tickReport{Period: 2, Seconds: 59})
	assert.Len(t, ch, 0)
}

func TestChannelEvent_Replay(t *testing.T) {
	event := NewChannelEvent[int](true)
	event.Notify(7)

	ch := make(chan int, 1)
	defer event.Listen(ch)()
	require.Len(t, ch, 1)
	assert.Equal(t, 7, <-ch)
}

func TestChannelEvent_FullChannelIsSkipped(t *testing.T) {
	event := NewChannelEvent[int](false)

	full := make(chan int)
	open := make(chan int, 1)
	defer event.Listen(full)()
	defer event.Listen(open)()

	event.Notify(42)
	assert.Equal(t, 42, <-open)
}

func TestChannelEvent_NilChannelPanics(t *testing.T) {
	event := NewChannelEvent[int](false)
	assert.Panics(t, func() { event.Listen(nil) })
}

func TestEvents_ConcurrentListenNotify(t *testing.T) {
	callbacks := NewCallbackEvent[int](true)
	channels := NewChannelEvent[int](true)

	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	unregisters := make(chan func(), 20)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unregisters <- callbacks.Listen(func(int) {
				mu.Lock()
				count++
				mu.Unlock()
			})
			unregisters <- channels.Listen(make(chan int, 100))
		}()
	}
	wg.Wait()
	close(unregisters)

	assert.Equal(t, 10, callbacks.ListenerCount())
	assert.Equal(t, 10, channels.ListenerCount())

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			callbacks.Notify(v)
			channels.Notify(v)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	assert.Equal(t, 50, count)
	mu.Unlock()

	for unregister := range unregisters {
		unregister()
	}
	assert.Equal(t, 0, callbacks.ListenerCount())
	assert.Equal(t, 0, channels.ListenerCount())
}
