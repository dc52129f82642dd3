package haptics

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/running-coach/internal/go_func_utils"
	"github.com/lowaak/running-coach/internal/progression"
)

const (
	DefaultPulseTimeout = 5 * time.Second
	queueSize           = 4
)

// Driver plays patterns on its own goroutine so signal handlers never wait on
// an actuator. When the queue is full the newest pattern is dropped.
type Driver struct {
	logger   *log.Logger
	actuator Actuator
	timeout  time.Duration

	queue        chan Pattern
	doneChan     chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

func NewDriver(actuator Actuator, timeout time.Duration, logger *log.Logger) *Driver {
	if actuator == nil {
		panic("Driver: actuator cannot be nil")
	}
	if logger == nil {
		panic("Driver: logger cannot be nil")
	}
	if timeout <= 0 {
		timeout = DefaultPulseTimeout
	}

	d := &Driver{
		logger:   logger,
		actuator: actuator,
		timeout:  timeout,
		queue:    make(chan Pattern, queueSize),
		doneChan: make(chan struct{}),
	}

	d.wg.Add(1)
	go_func_utils.SafeGo(logger, "haptics driver", d.run)
	return d
}

// HandleSignal queues the pattern for sig, if any. Safe to use as an event callback.
func (d *Driver) HandleSignal(sig progression.Signal) {
	if p, ok := PatternFor(sig); ok {
		d.Play(p)
	}
}

// Play queues p without blocking
func (d *Driver) Play(p Pattern) {
	select {
	case <-d.doneChan:
		return
	default:
	}

	select {
	case d.queue <- p:
	default:
		d.logger.Printf("Haptics: queue full, dropping %s pulse", p)
	}
}

// Shutdown stops the driver after the pattern in progress. Safe to call twice.
func (d *Driver) Shutdown() {
	d.shutdownOnce.Do(func() {
		close(d.doneChan)
		d.wg.Wait()
	})
}

func (d *Driver) run() {
	defer d.wg.Done()

	for {
		select {
		case <-d.doneChan:
			return
		case p := <-d.queue:
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			if err := d.actuator.Pulse(ctx, p); err != nil {
				d.logger.Printf("Haptics: %s pulse failed: %v", p, err)
			}
			cancel()
		}
	}
}
