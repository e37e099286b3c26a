package dosepath

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// FitObserver sees how long each selector refit took during tree construction.
// Depth is the node's cohort count beyond the seed history.
type FitObserver interface {
	ObserveFitLatency(depth int, duration time.Duration)
}

type FitLatencyLogger struct {
	logger *log.Logger
}

func NewFitLatencyLogger(logger *log.Logger) *FitLatencyLogger {
	return &FitLatencyLogger{logger: logger}
}

func (l *FitLatencyLogger) ObserveFitLatency(depth int, duration time.Duration) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf("dosepath_fit_latency depth=%d duration_ms=%.3f", depth, float64(duration.Microseconds())/1000.0)
}

// AsyncFitObserver decouples observation from the build hot path. Events that
// do not fit the buffer are dropped and counted, never blocked on.
type AsyncFitObserver struct {
	next    FitObserver
	events  chan fitEvent
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type fitEvent struct {
	depth    int
	duration time.Duration
}

func NewAsyncFitObserver(next FitObserver, buffer int) *AsyncFitObserver {
	if buffer <= 0 {
		buffer = 1
	}

	o := &AsyncFitObserver{
		next:   next,
		events: make(chan fitEvent, buffer),
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for ev := range o.events {
			if o.next == nil {
				continue
			}
			o.next.ObserveFitLatency(ev.depth, ev.duration)
		}
	}()

	return o
}

func (o *AsyncFitObserver) ObserveFitLatency(depth int, duration time.Duration) {
	if o == nil {
		return
	}
	o.mu.RLock()
	if o.closed {
		o.mu.RUnlock()
		o.dropped.Add(1)
		return
	}
	select {
	case o.events <- fitEvent{depth: depth, duration: duration}:
	default:
		o.dropped.Add(1)
	}
	o.mu.RUnlock()
}

func (o *AsyncFitObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

func (o *AsyncFitObserver) Close() {
	if o == nil {
		return
	}
	o.once.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.events)
		o.mu.Unlock()
		o.wg.Wait()
	})
}
