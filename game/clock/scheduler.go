package clock

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/mcp-training/yardsim/game/service"
)

// DefaultTickRate matches the 60Hz animation frame the simulation is tuned for
const DefaultTickRate = 60

// Ticker advances every running session by one tick
type Ticker interface {
	TickAll(ctx context.Context) []*service.TickUpdate
}

// Sink receives the updates produced by each tick
type Sink interface {
	Publish(updates []*service.TickUpdate)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(updates []*service.TickUpdate)

// Publish calls f(updates)
func (f SinkFunc) Publish(updates []*service.TickUpdate) { f(updates) }

// Scheduler drives the simulation on a fixed tick interval
type Scheduler struct {
	ticker       Ticker
	sinks        []Sink
	tickInterval time.Duration

	tickCount atomic.Uint64

	// Control channels
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewScheduler creates a scheduler ticking rate times per second. A
// non-positive rate uses DefaultTickRate.
func NewScheduler(ticker Ticker, rate int, sinks ...Sink) *Scheduler {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return &Scheduler{
		ticker:       ticker,
		sinks:        sinks,
		tickInterval: time.Second / time.Duration(rate),
		stopChan:     make(chan struct{}),
	}
}

// Interval returns the time between ticks
func (cs *Scheduler) Interval() time.Duration {
	return cs.tickInterval
}

// TickCount returns the number of ticks run so far
func (cs *Scheduler) TickCount() uint64 {
	return cs.tickCount.Load()
}

// Running reports whether the loop is active
func (cs *Scheduler) Running() bool {
	return cs.running.Load()
}

// Start begins the scheduler loop. The loop ends on Stop or when ctx is done.
func (cs *Scheduler) Start(ctx context.Context) {
	if cs.running.CompareAndSwap(false, true) {
		cs.wg.Add(1)
		go cs.loop(ctx)
	}
}

// Stop halts the scheduler loop and waits for the current tick to finish
func (cs *Scheduler) Stop() {
	cs.stopOnce.Do(func() {
		close(cs.stopChan)
	})
	cs.wg.Wait()
}

func (cs *Scheduler) loop(ctx context.Context) {
	defer cs.wg.Done()
	defer cs.running.Store(false)

	ticker := time.NewTicker(cs.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cs.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			cs.tick(ctx)
		}
	}
}

// tick runs one step and fans the updates out. A panicking sink is logged
// and does not stop the clock.
func (cs *Scheduler) tick(ctx context.Context) {
	updates := cs.ticker.TickAll(ctx)
	cs.tickCount.Add(1)
	if len(updates) == 0 {
		return
	}

	for _, sink := range cs.sinks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("clock: sink panic: %v", r)
				}
			}()
			sink.Publish(updates)
		}()
	}
}
