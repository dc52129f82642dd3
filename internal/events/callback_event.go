package events

// CallbackEvent is a typed pub/sub point that calls listener funcs synchronously
// on the notifying goroutine.
type CallbackEvent[T any] struct {
	reg *registry[func(T), T]
}

// NewCallbackEvent creates a CallbackEvent. With sendLastEventOnListen set,
// a new listener is called at once with the most recent value, if there is one.
func NewCallbackEvent[T any](sendLastEventOnListen bool) *CallbackEvent[T] {
	return &CallbackEvent[T]{reg: newRegistry[func(T), T](sendLastEventOnListen)}
}

// Listen registers callback and returns a func that removes it
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("callback cannot be nil")
	}

	unregister, last, replay := e.reg.add(callback)
	if replay {
		callback(last)
	}
	return unregister
}

// Notify calls every listener with value
func (e *CallbackEvent[T]) Notify(value T) {
	for _, callback := range e.reg.publish(value) {
		callback(value)
	}
}

// Last returns the most recent value when the event replays
func (e *CallbackEvent[T]) Last() (T, bool) {
	return e.reg.lastValue()
}

func (e *CallbackEvent[T]) ListenerCount() int {
	return e.reg.count()
}
