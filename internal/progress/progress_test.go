package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterClampsPercent(t *testing.T) {
	var got []Event
	r := NewReporter("req-1", ObserverFunc(func(e Event) { got = append(got, e) }))

	r.Report(PhaseFetching, 20, "")
	r.Report(PhaseExtracting, 10, "went backwards")
	r.Report(PhaseComplete, 140, "")

	require.Len(t, got, 3)
	assert.Equal(t, 20, got[0].Percent)
	assert.Equal(t, 20, got[1].Percent)
	assert.Equal(t, 100, got[2].Percent)
	for _, e := range got {
		assert.Equal(t, "req-1", e.ID)
		assert.False(t, e.Time.IsZero())
	}
}

func TestReporterWithoutObserver(t *testing.T) {
	r := NewReporter("req-2", nil)
	assert.NotPanics(t, func() { r.Report(PhaseComplete, 100, "") })

	var nilReporter *Reporter
	assert.NotPanics(t, func() { nilReporter.Report(PhaseFailed, 0, "") })
}

func TestHubRoutesByID(t *testing.T) {
	h := NewHub(4)
	a, cancelA := h.Subscribe("a")
	b, cancelB := h.Subscribe("b")
	defer cancelB()

	h.Notify(Event{ID: "a", Phase: PhaseFetching})

	select {
	case e := <-a:
		assert.Equal(t, PhaseFetching, e.Phase)
	default:
		t.Fatal("subscriber a did not receive its event")
	}
	select {
	case e := <-b:
		t.Fatalf("subscriber b received foreign event %+v", e)
	default:
	}

	assert.Equal(t, 1, h.Subscribers("a"))
	cancelA()
	cancelA()
	assert.Equal(t, 0, h.Subscribers("a"))
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub(1)
	ch, cancel := h.Subscribe("x")
	defer cancel()

	h.Notify(Event{ID: "x", Percent: 1})
	h.Notify(Event{ID: "x", Percent: 2})

	e := <-ch
	assert.Equal(t, 1, e.Percent)
	select {
	case extra := <-ch:
		t.Fatalf("expected dropped event, got %+v", extra)
	default:
	}
}

func TestPhaseTerminal(t *testing.T) {
	assert.True(t, PhaseComplete.Terminal())
	assert.True(t, PhaseFailed.Terminal())
	assert.False(t, PhasePackaging.Terminal())
}
