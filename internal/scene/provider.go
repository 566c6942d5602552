package scene

import (
	"sync"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/paulmach/orb"
)

// Provider holds the current geometry snapshot. Snapshots are immutable
// once published: SetScene copies its input and Snapshot hands out the
// published slice without further writes, so a tick can hold it safely.
type Provider struct {
	mu        sync.RWMutex
	obstacles []domain.Obstacle
	bounds    orb.Bound
}

func NewProvider() *Provider {
	return &Provider{}
}

// SetScene publishes a new snapshot.
func (p *Provider) SetScene(obstacles []domain.Obstacle, bounds orb.Bound) {
	snapshot := make([]domain.Obstacle, len(obstacles))
	copy(snapshot, obstacles)

	p.mu.Lock()
	p.obstacles = snapshot
	p.bounds = bounds
	p.mu.Unlock()
}

// SetDocument validates, converts and publishes a scene document.
func (p *Provider) SetDocument(doc *Document) error {
	obstacles, bounds, err := doc.Obstacles()
	if err != nil {
		return err
	}
	p.SetScene(obstacles, bounds)
	return nil
}

// Snapshot returns the current obstacles and world bounds. The returned
// slice must be treated as read-only.
func (p *Provider) Snapshot() ([]domain.Obstacle, orb.Bound) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.obstacles, p.bounds
}
