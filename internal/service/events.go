package service

import (
	"sync"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultDisplayDuration = 2 * time.Second
	defaultSweepInterval   = 1 * time.Second

	subscriberBuffer = 64
)

// EventBus is the in-memory prediction-error stream. Events live for a
// fixed display duration and are never persisted; subscribers get a
// best-effort fan-out (slow consumers drop events rather than stall the
// simulation).
type EventBus struct {
	logger     *zap.Logger
	displayFor time.Duration

	mu      sync.Mutex
	events  []domain.PredictionError
	subs    map[int]chan domain.PredictionError
	nextSub int

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewEventBus(displayFor time.Duration, logger *zap.Logger) *EventBus {
	if displayFor <= 0 {
		displayFor = defaultDisplayDuration
	}
	return &EventBus{
		logger:     logger,
		displayFor: displayFor,
		subs:       make(map[int]chan domain.PredictionError),
		stopCh:     make(chan struct{}),
	}
}

// Start launches the expiry janitor.
func (b *EventBus) Start() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(defaultSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				b.mu.Lock()
				b.expireLocked(time.Now())
				b.mu.Unlock()
			case <-b.stopCh:
				return
			}
		}
	}()
}

func (b *EventBus) Stop() {
	close(b.stopCh)
	b.wg.Wait()

	b.mu.Lock()
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
	b.mu.Unlock()
}

// Publish stores an event and fans it out to subscribers.
func (b *EventBus) Publish(ev domain.PredictionError) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.expireLocked(ev.At)
	b.events = append(b.events, ev)

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Active returns the events still inside their display window.
func (b *EventBus) Active(now time.Time) []domain.PredictionError {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.expireLocked(now)
	out := make([]domain.PredictionError, len(b.events))
	copy(out, b.events)
	return out
}

// Subscribe registers a live event channel. The returned cancel function
// must be called when the consumer goes away.
func (b *EventBus) Subscribe() (<-chan domain.PredictionError, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSub
	b.nextSub++
	ch := make(chan domain.PredictionError, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			close(c)
			delete(b.subs, id)
		}
	}
	return ch, cancel
}

func (b *EventBus) expireLocked(now time.Time) {
	cutoff := now.Add(-b.displayFor)
	keep := b.events[:0]
	for _, ev := range b.events {
		if ev.At.After(cutoff) {
			keep = append(keep, ev)
		}
	}
	b.events = keep
}
