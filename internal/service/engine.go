package service

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// EngineConfig parameterizes the orchestration layer.
type EngineConfig struct {
	AgentCount      int
	FrameInterval   time.Duration
	PerceptInterval time.Duration
	BoundsTolerance float64
	Seed            int64

	Perception   PerceptionConfig
	Segmentation SegmentationConfig
	Belief       BeliefConfig
	Navigation   NavigationConfig
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AgentCount:      8,
		FrameInterval:   16 * time.Millisecond,
		PerceptInterval: 350 * time.Millisecond,
		BoundsTolerance: 1.0,
		Seed:            1,
		Perception:      DefaultPerceptionConfig(),
		Segmentation:    DefaultSegmentationConfig(),
		Belief:          DefaultBeliefConfig(),
		Navigation:      DefaultNavigationConfig(),
	}
}

// Engine drives the population at two cadences: every frame it runs
// navigation and collision resolution; at a wall-clock interval decoupled
// from the frame rate it runs the perceive/segment/believe pass. Agents
// share only the read-only obstacle snapshot, so per-agent updates within
// a pass run on worker goroutines joined before the pass ends.
type Engine struct {
	cfg      EngineConfig
	provider domain.GeometryProvider
	events   domain.EventSink
	logger   *zap.Logger

	mu           sync.RWMutex
	agents       []*Agent
	attractor    *domain.Attractor
	seededBounds orb.Bound

	frames   atomic.Int64
	lowTicks atomic.Int64
	reseeds  atomic.Int64

	lastFrame   time.Time
	lastPercept time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewEngine(cfg EngineConfig, provider domain.GeometryProvider, events domain.EventSink, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		provider: provider,
		events:   events,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the frame loop.
func (e *Engine) Start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.cfg.FrameInterval)
		defer ticker.Stop()

		e.logger.Info("engine started",
			zap.Duration("frame_interval", e.cfg.FrameInterval),
			zap.Duration("percept_interval", e.cfg.PerceptInterval),
			zap.Int("agents", e.cfg.AgentCount))

		for {
			select {
			case now := <-ticker.C:
				e.Step(now)
			case <-e.stopCh:
				e.logger.Info("engine stopped",
					zap.Int64("frames", e.frames.Load()),
					zap.Int64("percept_ticks", e.lowTicks.Load()))
				return
			}
		}
	}()
}

func (e *Engine) Stop() {
	close(e.stopCh)
	e.wg.Wait()
}

// Step advances one frame, running the low-frequency pass as well when
// its wall-clock interval has elapsed. Exported for deterministic tests.
func (e *Engine) Step(now time.Time) {
	obstacles, bounds := e.provider.Snapshot()
	if !domain.ValidRect(bounds) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.ensurePopulationLocked(obstacles, bounds)

	dt := e.cfg.FrameInterval.Seconds()
	if !e.lastFrame.IsZero() {
		if elapsed := now.Sub(e.lastFrame).Seconds(); elapsed > 0 {
			// Cap catch-up after stalls to keep integration stable.
			dt = math.Min(elapsed, 4*e.cfg.FrameInterval.Seconds())
		}
	}
	e.lastFrame = now

	attractor := e.attractor
	for _, ag := range e.agents {
		for _, ev := range ag.Advance(dt, obstacles, bounds, attractor, e.cfg.Navigation, now) {
			e.events.Publish(ev)
		}
	}
	e.frames.Add(1)

	if e.lastPercept.IsZero() || now.Sub(e.lastPercept) >= e.cfg.PerceptInterval {
		e.lastPercept = now
		e.perceptPassLocked(obstacles, bounds, now)
		e.lowTicks.Add(1)
	}
}

// perceptPassLocked fans the cognitive pass out across workers. Each agent
// owns its belief map and the snapshot is immutable, so the only shared
// write is event publication, which the sink serializes.
func (e *Engine) perceptPassLocked(obstacles []domain.Obstacle, bounds orb.Bound, now time.Time) {
	var wg sync.WaitGroup
	results := make([][]domain.PredictionError, len(e.agents))

	for i, ag := range e.agents {
		wg.Add(1)
		go func(i int, ag *Agent) {
			defer wg.Done()
			results[i] = ag.Perceive(obstacles, bounds, e.cfg.Perception, e.cfg.Segmentation, now)
		}(i, ag)
	}
	wg.Wait()

	for _, evs := range results {
		for _, ev := range evs {
			e.events.Publish(ev)
		}
	}
}

// ensurePopulationLocked regenerates the population when world bounds move
// beyond tolerance or the desired count changes. This is the explicit
// resize/reinit transition; otherwise per-agent state survives.
func (e *Engine) ensurePopulationLocked(obstacles []domain.Obstacle, bounds orb.Bound) {
	if len(e.agents) == e.cfg.AgentCount && !boundsChanged(e.seededBounds, bounds, e.cfg.BoundsTolerance) {
		return
	}

	e.agents = seedPopulation(e.cfg, obstacles, bounds)
	e.seededBounds = bounds
	e.reseeds.Add(1)
	e.logger.Info("population seeded",
		zap.Int("agents", len(e.agents)),
		zap.Float64("width", bounds.Max[0]-bounds.Min[0]),
		zap.Float64("height", bounds.Max[1]-bounds.Min[1]))
}

func boundsChanged(a, b orb.Bound, tol float64) bool {
	return math.Abs((a.Max[0]-a.Min[0])-(b.Max[0]-b.Min[0])) > tol ||
		math.Abs((a.Max[1]-a.Min[1])-(b.Max[1]-b.Min[1])) > tol
}

// seedPopulation places agents on a jittered grid, skipping blocked spots.
// Deterministic for a fixed seed, bounds and count.
func seedPopulation(cfg EngineConfig, obstacles []domain.Obstacle, bounds orb.Bound) []*Agent {
	n := cfg.AgentCount
	w := bounds.Max[0] - bounds.Min[0]
	h := bounds.Max[1] - bounds.Min[1]

	cols := int(math.Ceil(math.Sqrt(float64(n) * w / math.Max(h, 1))))
	if cols < 1 {
		cols = 1
	}
	rows := (n + cols - 1) / cols

	rng := rand.New(rand.NewSource(cfg.Seed))
	agents := make([]*Agent, 0, n)

	for i := 0; i < n; i++ {
		col := i % cols
		row := i / cols
		base := orb.Point{
			bounds.Min[0] + (float64(col)+0.5)*w/float64(cols),
			bounds.Min[1] + (float64(row)+0.5)*h/float64(rows),
		}

		pos := base
		placed := false
		for attempt := 0; attempt < 24; attempt++ {
			jitter := orb.Point{
				base[0] + (rng.Float64()*2-1)*w/float64(cols)*0.3,
				base[1] + (rng.Float64()*2-1)*h/float64(rows)*0.3,
			}
			jitter = domain.ClosestPointOnBound(bounds, jitter)
			if _, blocked := obstacleAt(jitter, obstacles); !blocked {
				pos = jitter
				placed = true
				break
			}
		}
		// Dense scenes can block a whole grid cell; fall back to a
		// uniform search over the world.
		if !placed {
			for attempt := 0; attempt < 200; attempt++ {
				p := orb.Point{
					bounds.Min[0] + rng.Float64()*w,
					bounds.Min[1] + rng.Float64()*h,
				}
				if _, blocked := obstacleAt(p, obstacles); !blocked {
					pos = p
					break
				}
			}
		}

		heading := rng.Float64()*2*math.Pi - math.Pi
		agents = append(agents, NewAgent(pos, heading, cfg.Seed+int64(i)+1, cfg.Belief))
	}
	return agents
}

// SetAttractor places the external attractor; its pull decays from now.
func (e *Engine) SetAttractor(p orb.Point, now time.Time) {
	e.mu.Lock()
	e.attractor = &domain.Attractor{Position: p, UpdatedAt: now}
	e.mu.Unlock()
}

// Poses returns render-facing agent snapshots.
func (e *Engine) Poses() []domain.Pose {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.Pose, 0, len(e.agents))
	for _, ag := range e.agents {
		out = append(out, ag.Pose())
	}
	return out
}

// Mind returns the belief snapshot of one agent.
func (e *Engine) Mind(id uuid.UUID) ([]domain.MemoryEntry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, ag := range e.agents {
		if ag.ID == id {
			return ag.Mind(), true
		}
	}
	return nil, false
}

// EngineMetrics is a point-in-time view of engine counters.
type EngineMetrics struct {
	Agents       int   `json:"agents"`
	Frames       int64 `json:"frames"`
	PerceptTicks int64 `json:"percept_ticks"`
	Reseeds      int64 `json:"reseeds"`
}

func (e *Engine) Metrics() EngineMetrics {
	e.mu.RLock()
	agents := len(e.agents)
	e.mu.RUnlock()
	return EngineMetrics{
		Agents:       agents,
		Frames:       e.frames.Load(),
		PerceptTicks: e.lowTicks.Load(),
		Reseeds:      e.reseeds.Load(),
	}
}
