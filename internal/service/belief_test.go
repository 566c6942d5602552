package service

import (
	"testing"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detection(cx, cy, w, h float64) domain.ObjectFeatures {
	box := domain.Rect(cx-w/2, cy-h/2, w, h)
	return domain.ObjectFeatures{
		Centroid:  orb.Point{cx, cy},
		Box:       box,
		CellCount: int(w * h / 100),
		Aspect:    domain.BoundAspect(box),
	}
}

func observation(dets []domain.ObjectFeatures, now time.Time) Observation {
	return Observation{
		Detections: dets,
		Position:   orb.Point{100, 150},
		Heading:    0,
		Perception: DefaultPerceptionConfig(),
		Bounds:     domain.Rect(0, 0, 400, 300),
		Now:        now,
	}
}

func TestBeliefAdmitsUnmatchedDetection(t *testing.T) {
	m := NewBeliefMap(DefaultBeliefConfig())
	now := time.Now()

	events := m.Observe(observation([]domain.ObjectFeatures{detection(180, 150, 40, 40)}, now))

	assert.Empty(t, events, "first sighting is not a prediction error")
	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.InDelta(t, 0.5, entries[0].PStatic, 1e-9, "neutral prior for an ordinary detection")
	assert.Equal(t, 1.0, entries[0].Confidence)
	assert.True(t, entries[0].Visible)
}

func TestBeliefPriorHeuristics(t *testing.T) {
	cfg := DefaultBeliefConfig()
	now := time.Now()

	t.Run("near boundary seeds high static prior", func(t *testing.T) {
		m := NewBeliefMap(cfg)
		m.Observe(observation([]domain.ObjectFeatures{detection(10, 150, 20, 40)}, now))
		entries := m.Entries()
		require.Len(t, entries, 1)
		assert.InDelta(t, cfg.PriorBoundary, entries[0].PStatic, 1e-9)
	})

	t.Run("large detection seeds high static prior", func(t *testing.T) {
		m := NewBeliefMap(cfg)
		m.Observe(observation([]domain.ObjectFeatures{detection(200, 150, 90, 90)}, now))
		entries := m.Entries()
		require.Len(t, entries, 1)
		assert.InDelta(t, cfg.PriorBoundary, entries[0].PStatic, 1e-9)
	})

	t.Run("known draggable source seeds low prior", func(t *testing.T) {
		m := NewBeliefMap(cfg)
		obs := observation([]domain.ObjectFeatures{detection(180, 150, 40, 40)}, now)
		obs.Obstacles = []domain.Obstacle{{
			ID:    uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
			Bound: domain.Rect(160, 130, 40, 40),
			Kind:  domain.ObstacleDraggable,
		}}
		m.Observe(obs)
		entries := m.Entries()
		require.Len(t, entries, 1)
		assert.InDelta(t, cfg.PriorDraggable, entries[0].PStatic, 1e-9)
		require.NotNil(t, entries[0].SourceID)
	})
}

func TestBeliefConfirmationTrendsUpward(t *testing.T) {
	m := NewBeliefMap(DefaultBeliefConfig())
	now := time.Now()

	det := detection(180, 150, 40, 40)
	m.Observe(observation([]domain.ObjectFeatures{det}, now))
	first := m.Entries()[0].PStatic

	for i := 1; i <= 5; i++ {
		tick := now.Add(time.Duration(i) * 350 * time.Millisecond)
		events := m.Observe(observation([]domain.ObjectFeatures{det}, tick))
		assert.Empty(t, events)
	}

	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Greater(t, entries[0].PStatic, first, "repeated confirmations push pStatic toward 1")
	assert.LessOrEqual(t, entries[0].PStatic, domain.PStaticMax)
}

func TestBeliefSurpriseOnDisplacement(t *testing.T) {
	cfg := DefaultBeliefConfig()
	m := NewBeliefMap(cfg)
	now := time.Now()

	m.Observe(observation([]domain.ObjectFeatures{detection(180, 150, 40, 40)}, now))
	before := m.Entries()[0].PStatic

	moved := detection(201, 150, 40, 40) // 21px > surprise threshold
	events := m.Observe(observation([]domain.ObjectFeatures{moved}, now.Add(350*time.Millisecond)))

	require.Len(t, events, 1)
	assert.Equal(t, domain.PredictionPositive, events[0].Kind)
	assert.InDelta(t, 21.0, events[0].Magnitude, 1e-9)
	assert.InDelta(t, 21.0/(2*cfg.SurpriseThreshold), events[0].Confidence, 1e-9)

	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Less(t, entries[0].PStatic, before, "surprise lowers the static belief")
	assert.InDelta(t, 201.0, entries[0].Features.Centroid[0], 1e-9, "features refresh to the new location")
}

func TestBeliefOmissionInsideFOV(t *testing.T) {
	m := NewBeliefMap(DefaultBeliefConfig())
	now := time.Now()

	m.Observe(observation([]domain.ObjectFeatures{detection(180, 150, 40, 40)}, now))
	before := m.Entries()[0]

	// The obstacle vanished but its remembered spot is still in view.
	events := m.Observe(observation(nil, now.Add(350*time.Millisecond)))

	require.Len(t, events, 1)
	assert.Equal(t, domain.PredictionNegative, events[0].Kind)
	assert.Equal(t, before.ID, events[0].EntryID)

	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Less(t, entries[0].PStatic, before.PStatic)
	assert.Less(t, entries[0].Confidence, before.Confidence)
	assert.False(t, entries[0].Visible)
}

func TestBeliefOutOfViewFadesWithoutEvents(t *testing.T) {
	m := NewBeliefMap(DefaultBeliefConfig())
	now := time.Now()

	m.Observe(observation([]domain.ObjectFeatures{detection(180, 150, 40, 40)}, now))

	// Turn around: the remembered spot leaves the FOV cone.
	obs := observation(nil, now.Add(time.Second))
	obs.Heading = 3.0
	events := m.Observe(obs)

	assert.Empty(t, events, "out-of-view entries fade silently")
	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Less(t, entries[0].Confidence, 1.0)
}

func TestBeliefPrunesStaleEntries(t *testing.T) {
	cfg := DefaultBeliefConfig()
	m := NewBeliefMap(cfg)
	now := time.Now()

	m.Observe(observation([]domain.ObjectFeatures{detection(180, 150, 40, 40)}, now))
	require.Equal(t, 1, m.Len())

	// Out of view, far past the maximum age: the entry must be gone.
	obs := observation(nil, now.Add(cfg.MaxAge+10*time.Second))
	obs.Heading = 3.0
	m.Observe(obs)

	assert.Equal(t, 0, m.Len())
}

func TestBeliefMatchingIsOneToOne(t *testing.T) {
	m := NewBeliefMap(DefaultBeliefConfig())
	now := time.Now()

	m.Observe(observation([]domain.ObjectFeatures{detection(180, 150, 40, 40)}, now))
	require.Equal(t, 1, m.Len())

	// Two detections both near the single entry: the closer one wins the
	// match, the other becomes a new entry.
	dets := []domain.ObjectFeatures{
		detection(185, 150, 40, 40),
		detection(210, 150, 40, 40),
	}
	m.Observe(observation(dets, now.Add(350*time.Millisecond)))

	assert.Equal(t, 2, m.Len())
}

func TestBeliefClampInvariants(t *testing.T) {
	cfg := DefaultBeliefConfig()
	m := NewBeliefMap(cfg)
	now := time.Now()

	det := detection(180, 150, 40, 40)
	m.Observe(observation([]domain.ObjectFeatures{det}, now))

	// Alternate confirmations, displacements and omissions; the
	// invariants must hold after every tick.
	x := 180.0
	for i := 1; i <= 40; i++ {
		tick := now.Add(time.Duration(i) * 350 * time.Millisecond)
		var dets []domain.ObjectFeatures
		switch i % 3 {
		case 0:
			x += 30
			dets = []domain.ObjectFeatures{detection(x, 150, 40, 40)}
		case 1:
			dets = []domain.ObjectFeatures{detection(x, 150, 40, 40)}
		}
		m.Observe(observation(dets, tick))

		for _, e := range m.Entries() {
			assert.GreaterOrEqual(t, e.PStatic, domain.PStaticMin)
			assert.LessOrEqual(t, e.PStatic, domain.PStaticMax)
			assert.GreaterOrEqual(t, e.Confidence, domain.ConfidenceMin)
			assert.LessOrEqual(t, e.Confidence, domain.ConfidenceMax)
		}
	}
}
