package authflow

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry tracks live flows by ID. A flow exists for one page visit;
// abandoned flows are swept by Cleanup.
type Registry struct {
	mu    sync.Mutex
	flows map[string]*trackedFlow
}

type trackedFlow struct {
	flow     *Flow
	lastSeen time.Time
}

func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]*trackedFlow)}
}

// Create registers a new flow and returns it.
func (r *Registry) Create(pctx PageContext, sessionID, redirect string, svc AuthService, sessions SessionWriter) *Flow {
	f := New(uuid.NewString(), pctx, sessionID, redirect, svc, sessions)
	r.mu.Lock()
	r.flows[f.ID] = &trackedFlow{flow: f, lastSeen: time.Now()}
	r.mu.Unlock()
	return f
}

// Get returns the flow by ID, or nil if it is unknown or already swept.
func (r *Registry) Get(id string) *Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.flows[id]
	if !ok {
		return nil
	}
	t.lastSeen = time.Now()
	return t.flow
}

// Remove drops a flow, typically once it reaches StepDone.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.flows, id)
	r.mu.Unlock()
}

// Cleanup sweeps flows idle for longer than maxIdle and returns the count.
func (r *Registry) Cleanup(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, t := range r.flows {
		if t.lastSeen.Before(cutoff) {
			delete(r.flows, id)
			removed++
		}
	}
	return removed
}
