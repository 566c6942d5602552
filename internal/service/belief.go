package service

import (
	"math"
	"sort"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// BeliefConfig parameterizes matching, belief updates and forgetting.
type BeliefConfig struct {
	// Data association.
	MatchDistance float64
	MinMatchScore float64

	// Displacement band. At or above SurpriseThreshold a match is a
	// surprise; below it the match counts as a confirmation candidate.
	SurpriseThreshold float64
	SurpriseRate      float64
	ConfirmRate       float64

	// Omission handling.
	OmissionRate       float64
	OmissionConfidence float64 // entries below this are never "missing"
	OmissionDecay      float64

	// Reinforcement and forgetting.
	MatchConfidenceGain float64
	FadePerSecond       float64
	MinConfidence       float64
	MaxAge              time.Duration

	// Prior seeding for unmatched detections.
	BoundaryMargin float64
	LargeArea      float64
	PriorBoundary  float64
	PriorDraggable float64
	PriorNeutral   float64

	// Forced updates from unexpected collisions.
	CollisionPStatic float64
}

func DefaultBeliefConfig() BeliefConfig {
	return BeliefConfig{
		MatchDistance:       60,
		MinMatchScore:       0.35,
		SurpriseThreshold:   14,
		SurpriseRate:        0.3,
		ConfirmRate:         0.04,
		OmissionRate:        0.08,
		OmissionConfidence:  0.3,
		OmissionDecay:       0.7,
		MatchConfidenceGain: 0.15,
		FadePerSecond:       0.05,
		MinConfidence:       0.05,
		MaxAge:              30 * time.Second,
		BoundaryMargin:      24,
		LargeArea:           6000,
		PriorBoundary:       0.85,
		PriorDraggable:      0.25,
		PriorNeutral:        0.5,
		CollisionPStatic:    0.9,
	}
}

// Observation is one low-frequency tick's worth of sensed reality,
// together with the context needed to seed priors and detect omissions.
type Observation struct {
	Detections []domain.ObjectFeatures
	Position   orb.Point
	Heading    float64
	Perception PerceptionConfig
	Obstacles  []domain.Obstacle
	Bounds     orb.Bound
	Now        time.Time
}

// BeliefMap is an agent's private object memory. Exactly one agent owns a
// map; nothing here is safe for concurrent use and nothing needs to be.
type BeliefMap struct {
	cfg      BeliefConfig
	entries  map[uuid.UUID]*domain.MemoryEntry
	lastTick time.Time
}

func NewBeliefMap(cfg BeliefConfig) *BeliefMap {
	return &BeliefMap{
		cfg:     cfg,
		entries: make(map[uuid.UUID]*domain.MemoryEntry),
	}
}

func (m *BeliefMap) Len() int { return len(m.entries) }

// Entries returns a value-copied snapshot sorted by first-seen time, for
// navigation and introspection.
func (m *BeliefMap) Entries() []domain.MemoryEntry {
	out := make([]domain.MemoryEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstSeen.Equal(out[j].FirstSeen) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].FirstSeen.Before(out[j].FirstSeen)
	})
	return out
}

type candidate struct {
	detection int
	entry     uuid.UUID
	score     float64
}

// Observe reconciles this tick's detections with memory: greedy one-to-one
// matching, surprise/confirmation updates, omission detection, passive
// fade and pruning. Returns the prediction errors raised this tick.
func (m *BeliefMap) Observe(obs Observation) []domain.PredictionError {
	dt := 0.0
	if !m.lastTick.IsZero() {
		dt = obs.Now.Sub(m.lastTick).Seconds()
	}
	m.lastTick = obs.Now

	var events []domain.PredictionError

	// Score every detection against every live entry.
	var candidates []candidate
	for di, det := range obs.Detections {
		for id, entry := range m.entries {
			score, ok := m.similarity(det, entry)
			if ok {
				candidates = append(candidates, candidate{detection: di, entry: id, score: score})
			}
		}
	}
	// Greedy descending by similarity; ties broken stably for determinism.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].detection != candidates[j].detection {
			return candidates[i].detection < candidates[j].detection
		}
		return candidates[i].entry.String() < candidates[j].entry.String()
	})

	matchedDetections := make(map[int]bool, len(obs.Detections))
	matchedEntries := make(map[uuid.UUID]bool, len(m.entries))
	for _, c := range candidates {
		if matchedDetections[c.detection] || matchedEntries[c.entry] {
			continue
		}
		matchedDetections[c.detection] = true
		matchedEntries[c.entry] = true

		if ev, raised := m.updateMatched(m.entries[c.entry], obs.Detections[c.detection], obs.Now); raised {
			events = append(events, ev)
		}
	}

	// Unmatched detections become new entries.
	for di, det := range obs.Detections {
		if !matchedDetections[di] {
			m.admit(det, obs)
		}
	}

	// Unmatched entries: omission if still in view, otherwise fade.
	for id, entry := range m.entries {
		if matchedEntries[id] {
			continue
		}
		if m.inView(entry.Features.Centroid, obs) && entry.Confidence > m.cfg.OmissionConfidence {
			entry.PStatic = domain.ClampPStatic(entry.PStatic - m.cfg.OmissionRate)
			entry.Confidence = domain.ClampConfidence(entry.Confidence * m.cfg.OmissionDecay)
			entry.Visible = false
			events = append(events, domain.PredictionError{
				ID:         uuid.New(),
				Kind:       domain.PredictionNegative,
				EntryID:    id,
				Magnitude:  1,
				Confidence: entry.Confidence,
				At:         obs.Now,
			})
			continue
		}
		entry.Visible = false
		if dt > 0 {
			entry.Confidence = domain.ClampConfidence(entry.Confidence - m.cfg.FadePerSecond*dt)
		}
	}

	m.prune(obs.Now)
	return events
}

// similarity scores a detection against an entry: 50% inverse normalized
// centroid distance, 30% box size ratio, 20% aspect closeness. Pairs
// beyond the match distance or below the acceptance score are rejected.
func (m *BeliefMap) similarity(det domain.ObjectFeatures, entry *domain.MemoryEntry) (float64, bool) {
	dist := domain.Dist(det.Centroid, entry.Features.Centroid)
	if dist >= m.cfg.MatchDistance {
		return 0, false
	}
	distScore := 1 - dist/m.cfg.MatchDistance

	sizeScore := ratio(domain.BoundArea(det.Box), domain.BoundArea(entry.Features.Box))
	aspectScore := ratio(det.Aspect, entry.Features.Aspect)

	score := 0.5*distScore + 0.3*sizeScore + 0.2*aspectScore
	if score < m.cfg.MinMatchScore {
		return 0, false
	}
	return score, true
}

func ratio(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return a / b
}

func (m *BeliefMap) updateMatched(entry *domain.MemoryEntry, det domain.ObjectFeatures, now time.Time) (domain.PredictionError, bool) {
	displacement := domain.Dist(det.Centroid, entry.Features.Centroid)

	var ev domain.PredictionError
	raised := false

	if displacement >= m.cfg.SurpriseThreshold {
		// The object was not where the belief predicted: less likely
		// static, with strength proportional to how far off it was.
		conf := math.Min(1, displacement/(2*m.cfg.SurpriseThreshold))
		entry.PStatic = domain.ClampPStatic(entry.PStatic - m.cfg.SurpriseRate*conf)
		ev = domain.PredictionError{
			ID:         uuid.New(),
			Kind:       domain.PredictionPositive,
			EntryID:    entry.ID,
			Magnitude:  displacement,
			Confidence: conf,
			At:         now,
		}
		raised = true
	} else if entry.Confidence > 0.5 {
		// Where expected: confirmation nudges the belief toward static.
		entry.PStatic = domain.ClampPStatic(entry.PStatic + m.cfg.ConfirmRate)
	}

	entry.Features = det
	entry.LastSeen = now
	entry.Visible = true
	entry.Confidence = domain.ClampConfidence(entry.Confidence + m.cfg.MatchConfidenceGain)
	return ev, raised
}

// admit creates a new entry for an unmatched detection, seeding its prior
// from simple geometry heuristics. The ground-truth link is consulted only
// here, never in the update path.
func (m *BeliefMap) admit(det domain.ObjectFeatures, obs Observation) *domain.MemoryEntry {
	pStatic := m.cfg.PriorNeutral
	var sourceID *uuid.UUID

	if src, ok := sourceObstacle(det.Centroid, obs.Obstacles); ok {
		id := src.ID
		sourceID = &id
		if src.Kind == domain.ObstacleDraggable {
			pStatic = m.cfg.PriorDraggable
		}
	}
	if pStatic == m.cfg.PriorNeutral {
		nearBoundary := det.Centroid[0]-obs.Bounds.Min[0] < m.cfg.BoundaryMargin ||
			obs.Bounds.Max[0]-det.Centroid[0] < m.cfg.BoundaryMargin ||
			det.Centroid[1]-obs.Bounds.Min[1] < m.cfg.BoundaryMargin ||
			obs.Bounds.Max[1]-det.Centroid[1] < m.cfg.BoundaryMargin
		if nearBoundary || domain.BoundArea(det.Box) > m.cfg.LargeArea {
			pStatic = m.cfg.PriorBoundary
		}
	}

	entry := &domain.MemoryEntry{
		ID:         uuid.New(),
		Features:   det,
		PStatic:    domain.ClampPStatic(pStatic),
		Confidence: 1,
		FirstSeen:  obs.Now,
		LastSeen:   obs.Now,
		Visible:    true,
		SourceID:   sourceID,
	}
	m.entries[entry.ID] = entry
	return entry
}

func sourceObstacle(p orb.Point, obstacles []domain.Obstacle) (domain.Obstacle, bool) {
	for _, o := range obstacles {
		if o.Contains(p) {
			return o, true
		}
	}
	return domain.Obstacle{}, false
}

func (m *BeliefMap) inView(p orb.Point, obs Observation) bool {
	if domain.Dist(obs.Position, p) > obs.Perception.SensorRadius {
		return false
	}
	bearing := domain.AngleTo(obs.Position, p)
	return math.Abs(domain.AngleDiff(obs.Heading, bearing)) <= obs.Perception.FOVHalfAngle
}

func (m *BeliefMap) prune(now time.Time) {
	for id, entry := range m.entries {
		if entry.Confidence < m.cfg.MinConfidence || now.Sub(entry.LastSeen) > m.cfg.MaxAge {
			delete(m.entries, id)
		}
	}
}

// PredictsObstacleAt reports whether the belief map already expects solid
// geometry at the given point. Used to distinguish anticipated collisions
// from unexpected ones.
func (m *BeliefMap) PredictsObstacleAt(p orb.Point, margin float64) bool {
	for _, entry := range m.entries {
		if entry.PStatic < 0.5 || entry.Confidence < m.cfg.OmissionConfidence {
			continue
		}
		if entry.Features.Box.Pad(margin).Contains(p) {
			return true
		}
	}
	return false
}

// ForceBelieve records a collision-confirmed obstacle: the entry
// overlapping the impact (or a fresh one built from the obstacle's true
// bound) ends up highly static and fully confident. Returns the entry id.
func (m *BeliefMap) ForceBelieve(hit domain.Obstacle, now time.Time) uuid.UUID {
	center := hit.Bound.Center()
	for _, entry := range m.entries {
		if entry.Features.Box.Contains(center) || hit.Bound.Contains(entry.Features.Centroid) {
			entry.PStatic = domain.ClampPStatic(math.Max(entry.PStatic, m.cfg.CollisionPStatic))
			entry.Confidence = 1
			entry.LastSeen = now
			entry.Visible = true
			return entry.ID
		}
	}

	id := hit.ID
	entry := &domain.MemoryEntry{
		ID: uuid.New(),
		Features: domain.ObjectFeatures{
			Centroid: center,
			Box:      hit.Bound,
			Aspect:   domain.BoundAspect(hit.Bound),
		},
		PStatic:    domain.ClampPStatic(m.cfg.CollisionPStatic),
		Confidence: 1,
		FirstSeen:  now,
		LastSeen:   now,
		Visible:    true,
		SourceID:   &id,
	}
	m.entries[entry.ID] = entry
	return entry.ID
}
