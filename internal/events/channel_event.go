package events

// ChannelEvent is a typed pub/sub point that delivers values to listener
// channels. Sends never block: a full channel misses the value.
type ChannelEvent[T any] struct {
	reg *registry[chan<- T, T]
}

// NewChannelEvent creates a ChannelEvent. With sendLastEventOnListen set,
// the most recent value is offered to a new channel at once.
func NewChannelEvent[T any](sendLastEventOnListen bool) *ChannelEvent[T] {
	return &ChannelEvent[T]{reg: newRegistry[chan<- T, T](sendLastEventOnListen)}
}

// Listen registers ch and returns a func that removes it
func (e *ChannelEvent[T]) Listen(ch chan<- T) func() {
	if ch == nil {
		panic("channel cannot be nil")
	}

	unregister, last, replay := e.reg.add(ch)
	if replay {
		trySend(ch, last)
	}
	return unregister
}

// Notify offers value to every registered channel
func (e *ChannelEvent[T]) Notify(value T) {
	for _, ch := range e.reg.publish(value) {
		trySend(ch, value)
	}
}

// Last returns the most recent value when the event replays
func (e *ChannelEvent[T]) Last() (T, bool) {
	return e.reg.lastValue()
}

func (e *ChannelEvent[T]) ListenerCount() int {
	return e.reg.count()
}

func trySend[T any](ch chan<- T, value T) bool {
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}
