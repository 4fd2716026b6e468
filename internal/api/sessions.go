package api

import (
	"context"
	"sync"
	"time"

	"dealflow/internal/ic"
)

// sessionEntry pairs a live committee session with its lock. Session methods
// are not concurrency-safe, so every touch goes through the entry mutex,
// including the background timer.
type sessionEntry struct {
	mu        sync.Mutex
	sess      *ic.Session
	gameID    string
	companyID string
}

// sessionRegistry holds live meetings in memory. Meetings are ephemeral:
// only finalized verdicts reach the database, a crashed server simply drops
// its meetings.
type sessionRegistry struct {
	mu sync.RWMutex
	m  map[string]*sessionEntry
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{m: make(map[string]*sessionEntry)}
}

func (r *sessionRegistry) add(e *sessionEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[e.sess.ID] = e
}

func (r *sessionRegistry) get(id string) (*sessionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.m[id]
	return e, ok
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
}

// runTimers drives every live session's 1 Hz countdown until the context
// ends. Terminal sessions are swept out after a grace period so clients can
// still fetch the verdict.
func (r *sessionRegistry) runTimers(ctx context.Context, onExpire func(*sessionEntry)) {
	const sweepAfter = 10 * time.Minute

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	done := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.mu.RLock()
			entries := make([]*sessionEntry, 0, len(r.m))
			for _, e := range r.m {
				entries = append(entries, e)
			}
			r.mu.RUnlock()

			for _, e := range entries {
				e.mu.Lock()
				fired := e.sess.TickTimer()
				terminal := e.sess.Done()
				id := e.sess.ID
				e.mu.Unlock()

				if fired && onExpire != nil {
					onExpire(e)
				}
				if terminal {
					if _, ok := done[id]; !ok {
						done[id] = now
					}
				}
			}

			for id, since := range done {
				if now.Sub(since) > sweepAfter {
					r.remove(id)
					delete(done, id)
				}
			}
		}
	}
}
