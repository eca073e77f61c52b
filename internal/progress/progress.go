// Package progress carries optional progress notifications out of the
// download pipeline. The pipeline never depends on anyone listening.
package progress

import (
	"sync"
	"time"
)

// Phase labels a pipeline stage.
type Phase string

const (
	PhaseValidating Phase = "validating"
	PhaseFetching   Phase = "fetching"
	PhaseExtracting Phase = "extracting"
	PhasePackaging  Phase = "packaging"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether no further events follow this phase.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// Event is a discrete progress notification.
type Event struct {
	ID      string    `json:"id"`
	Phase   Phase     `json:"phase"`
	Percent int       `json:"percent"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Observer receives progress events. Implementations must not block for long.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Notify calls f(e).
func (f ObserverFunc) Notify(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Notify(Event) {}

// Nop returns an observer that discards every event.
func Nop() Observer { return nopObserver{} }

// OrNop returns o, or a no-op observer when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop()
	}
	return o
}

// Reporter stamps events with an id and clamps percentages so callers can
// emit from any stage without repeating bookkeeping.
type Reporter struct {
	id       string
	observer Observer
	clock    func() time.Time
	last     int
}

// NewReporter creates a Reporter for one request.
func NewReporter(id string, o Observer) *Reporter {
	return &Reporter{id: id, observer: OrNop(o), clock: time.Now}
}

// Report emits an event. Percent never moves backwards.
func (r *Reporter) Report(phase Phase, percent int, message string) {
	if r == nil {
		return
	}
	if percent < r.last {
		percent = r.last
	}
	if percent > 100 {
		percent = 100
	}
	r.last = percent
	r.observer.Notify(Event{
		ID:      r.id,
		Phase:   phase,
		Percent: percent,
		Message: message,
		Time:    r.clock().UTC(),
	})
}

// Hub fans events out to subscribers keyed by event id.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[chan Event]struct{}
	buffer int
}

// NewHub creates a hub whose subscriber channels hold buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[string]map[chan Event]struct{}), buffer: buffer}
}

// Subscribe registers interest in events for id. The returned cancel func
// must be called to release the subscription.
func (h *Hub) Subscribe(id string) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	set, ok := h.subs[id]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subs[id] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[id]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, id)
				}
			}
		})
	}
}

// Notify implements Observer. Slow subscribers drop events rather than
// stalling the pipeline.
func (h *Hub) Notify(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[e.ID] {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for id.
func (h *Hub) Subscribers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[id])
}
