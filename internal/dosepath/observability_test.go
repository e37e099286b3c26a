package dosepath

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type spyFitObserver struct {
	mu      sync.Mutex
	records []int
}

func (s *spyFitObserver) ObserveFitLatency(depth int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, depth)
}

func (s *spyFitObserver) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestAsyncFitObserver_DeliversEventsOnClose(t *testing.T) {
	spy := &spyFitObserver{}
	async := NewAsyncFitObserver(spy, 8)

	async.ObserveFitLatency(0, 1*time.Millisecond)
	async.ObserveFitLatency(1, 2*time.Millisecond)
	async.Close()

	if got := spy.Count(); got != 2 {
		t.Fatalf("expected 2 delivered events, got %d", got)
	}
}

func TestAsyncFitObserver_DropsWhenBufferIsFull(t *testing.T) {
	spy := &spyFitObserver{}
	async := NewAsyncFitObserver(spy, 1)

	for i := 0; i < 1000; i++ {
		async.ObserveFitLatency(0, time.Microsecond)
	}
	async.Close()

	if async.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0")
	}
}

func TestAsyncFitObserver_CloseDuringConcurrentObserveDoesNotPanic(t *testing.T) {
	spy := &spyFitObserver{}
	async := NewAsyncFitObserver(spy, 32)

	const workers = 8
	const perWorker = 200
	var wg sync.WaitGroup
	var panics atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if recover() != nil {
					panics.Add(1)
				}
			}()
			for j := 0; j < perWorker; j++ {
				async.ObserveFitLatency(1, time.Microsecond)
			}
		}()
	}

	time.Sleep(1 * time.Millisecond)
	async.Close()
	wg.Wait()

	if panics.Load() != 0 {
		t.Fatalf("expected no panics, got %d", panics.Load())
	}
}
