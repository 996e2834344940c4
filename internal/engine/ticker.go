package engine

import (
	"sync"
	"time"
)

// ticker is the countdown's tick source: a goroutine emitting one EvTick per
// interval into the session's event sink. It is fully stopped, not merely
// ignored, on any transition out of in-progress; the generation stamp lets
// the engine drop a tick that was already in flight when the stop happened.
type ticker struct {
	stop chan struct{}
	once sync.Once
}

func startTicker(interval time.Duration, gen int, emit func(Event)) *ticker {
	t := &ticker{stop: make(chan struct{})}
	go func() {
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-tk.C:
				emit(Event{Type: EvTick, Gen: gen})
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

func (t *ticker) halt() {
	t.once.Do(func() { close(t.stop) })
}
