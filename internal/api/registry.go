package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"animeverse/internal/logging"
	"animeverse/internal/metrics"
	"animeverse/internal/services"
	"animeverse/internal/session"
)

const (
	defaultIdleTimeout = time.Hour
	defaultMaxSessions = 1000
)

type entry struct {
	mu       sync.Mutex
	state    *session.State
	lastUsed time.Time
}

// Registry holds live sessions in memory.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*entry
	idleTimeout time.Duration
	maxSessions int
	logger      *slog.Logger
	now         func() time.Time
}

// NewRegistry creates an empty registry. Non-positive limits fall back to
// one hour of idleness and 1000 sessions.
func NewRegistry(idleTimeout time.Duration, maxSessions int, logger *slog.Logger) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	return &Registry{
		sessions:    make(map[string]*entry),
		idleTimeout: idleTimeout,
		maxSessions: maxSessions,
		logger:      logging.NewComponentLogger(logger, "registry"),
		now:         time.Now,
	}
}

// Add stores a new session. Idle sessions are swept first; if the registry
// is still full the session is rejected.
func (r *Registry) Add(state *session.State) error {
	r.Sweep()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[state.ID]; exists {
		return services.Wrap(services.ErrConflict, "registry", "add", fmt.Sprintf("session %s already exists", state.ID), nil)
	}
	if len(r.sessions) >= r.maxSessions {
		return services.Wrap(services.ErrConflict, "registry", "add",
			fmt.Sprintf("session limit of %d reached, try again later", r.maxSessions), nil)
	}
	r.sessions[state.ID] = &entry{state: state, lastUsed: r.now()}
	metrics.SetActiveSessions(len(r.sessions))
	return nil
}

// With runs fn while holding the session's lock, so requests for one session
// are processed one at a time.
func (r *Registry) With(id string, fn func(*session.State) error) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return services.Wrap(services.ErrNotFound, "registry", "lookup", fmt.Sprintf("session %s not found", id), nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.lastUsed = r.now() }()
	return fn(e.state)
}

// Remove deletes a session. Removing an unknown session reports ErrNotFound.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return services.Wrap(services.ErrNotFound, "registry", "remove", fmt.Sprintf("session %s not found", id), nil)
	}
	delete(r.sessions, id)
	metrics.SetActiveSessions(len(r.sessions))
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the idle timeout and returns how
// many were removed. Sessions busy with a request are never dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTimeout)
	removed := 0
	for id, e := range r.sessions {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.SetActiveSessions(len(r.sessions))
		r.logger.Info("expired idle sessions",
			logging.Int("removed", removed),
			logging.Int("remaining", len(r.sessions)),
		)
	}
	return removed
}

// Run sweeps idle sessions periodically until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	interval := max(min(r.idleTimeout/4, time.Minute), time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
