package chart

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Manager owns at most one live Instance per target. Every dataset change is a
// full destroy and recreate; there is no partial update path.
type Manager struct {
	renderer Renderer
	log      *zap.Logger

	mu   sync.Mutex
	live map[string]Instance
}

// NewManager creates a Manager that builds instances with r.
func NewManager(r Renderer, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		renderer: r,
		log:      log.With(zap.String("component", "chart")),
		live:     make(map[string]Instance),
	}
}

// Render replaces the instance bound to target with one built from ds. The
// previous instance is destroyed before the replacement is created. If creation
// fails no instance is left live.
func (m *Manager) Render(ds *Dataset, target Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := target.ID()
	if err := m.destroyLocked(id); err != nil {
		m.log.Warn("destroy previous chart", zap.String("target", id), zap.Error(err))
	}

	inst, err := m.renderer.Create(target, ds)
	if err != nil {
		return fmt.Errorf("create chart on %s: %w", id, err)
	}
	m.live[id] = inst
	m.log.Debug("chart rendered", zap.String("target", id), zap.Int("points", ds.Len()))
	return nil
}

// Teardown destroys the instance bound to target. It is a no-op when there is none.
func (m *Manager) Teardown(target Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyLocked(target.ID())
}

// Live reports whether target currently has a live instance.
func (m *Manager) Live(target Target) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live[target.ID()]
	return ok
}

func (m *Manager) destroyLocked(id string) error {
	inst, ok := m.live[id]
	if !ok {
		return nil
	}
	delete(m.live, id)
	if err := inst.Destroy(); err != nil {
		return fmt.Errorf("destroy chart on %s: %w", id, err)
	}
	return nil
}
