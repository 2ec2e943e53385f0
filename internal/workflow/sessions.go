package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

const (
	defaultSessionTTL = 30 * time.Minute
	defaultSweepEvery = time.Minute
)

// Manager owns the live cancellation sessions. One operator session per
// controller; abandoned sessions are swept after the TTL so drafts never
// outlive the operator who typed them.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Controller

	deps Deps
	ttl  time.Duration

	logger *log.Entry
	now    func() time.Time
}

// NewManager builds a session registry over the shared controller deps.
func NewManager(deps Deps, ttl time.Duration) *Manager {
	if deps.Logger == nil {
		deps.Logger = log.New().WithField("component", "cancelflow")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Manager{
		sessions: make(map[string]*Controller),
		deps:     deps,
		ttl:      ttl,
		logger:   deps.Logger.WithField("component", "cancelflow-sessions"),
		now:      deps.Now,
	}
}

// Open loads the order and starts a session for the operator.
func (m *Manager) Open(ctx context.Context, orderID, shopID, operatorID string) (*Controller, error) {
	id := uuid.NewString()
	ctrl, err := NewController(ctx, id, m.deps, orderID, shopID, operatorID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = ctrl
	m.mu.Unlock()

	m.logger.WithFields(log.Fields{
		"session_id": id,
		"order_id":   orderID,
		"shop_id":    shopID,
	}).Info("cancellation session opened")
	return ctrl, nil
}

// Get returns a live session or ErrSessionNotFound.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return ctrl, nil
}

// Abandon drops a session and its draft without committing anything.
func (m *Manager) Abandon(id string) error {
	m.mu.Lock()
	ctrl, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	if m.deps.Metrics != nil && !ctrl.finished() {
		m.deps.Metrics.RecordSessionAbandoned()
	}
	m.logger.WithField("session_id", id).Info("cancellation session abandoned")
	return nil
}

// Close drops a finished session without counting it as abandoned.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// PurgeExpired removes sessions idle past the TTL and returns the count.
func (m *Manager) PurgeExpired(now time.Time) int {
	m.mu.Lock()
	expired := make([]*Controller, 0)
	for id, ctrl := range m.sessions {
		if ctrl.idleSince(now) >= m.ttl {
			delete(m.sessions, id)
			expired = append(expired, ctrl)
		}
	}
	m.mu.Unlock()

	for _, ctrl := range expired {
		if m.deps.Metrics != nil && !ctrl.finished() {
			m.deps.Metrics.RecordSessionAbandoned()
		}
		m.logger.WithField("session_id", ctrl.ID()).Info("cancellation session expired")
	}
	return len(expired)
}

// Run sweeps expired sessions until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(defaultSweepEvery)
	defer ticker.Stop()

	m.logger.WithField("ttl", m.ttl.String()).Info("session sweeper started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := m.PurgeExpired(m.now()); n > 0 {
				m.logger.WithField("count", n).Debug("expired sessions purged")
			}
		}
	}
}
