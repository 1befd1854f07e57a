package authflow

import (
	"testing"
	"time"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()

	f := r.Create(ContextLogin, "sess-1", "/dashboard", &fakeAuth{}, &fakeSessions{})
	if f.ID == "" {
		t.Fatal("expected a flow ID")
	}
	if got := r.Get(f.ID); got != f {
		t.Fatal("expected Get to return the created flow")
	}
	if r.Get("nope") != nil {
		t.Fatal("expected nil for an unknown ID")
	}

	r.Remove(f.ID)
	if r.Get(f.ID) != nil {
		t.Fatal("expected removed flow to be gone")
	}
}

func TestRegistryCleanup(t *testing.T) {
	r := NewRegistry()
	stale := r.Create(ContextLogin, "sess-1", "/dashboard", &fakeAuth{}, &fakeSessions{})
	fresh := r.Create(ContextSignup, "sess-2", "/dashboard", &fakeAuth{}, &fakeSessions{})

	r.flows[stale.ID].lastSeen = time.Now().Add(-time.Hour)

	if removed := r.Cleanup(30 * time.Minute); removed != 1 {
		t.Fatalf("expected 1 swept flow, got %d", removed)
	}
	if r.Get(stale.ID) != nil {
		t.Fatal("expected stale flow swept")
	}
	if r.Get(fresh.ID) == nil {
		t.Fatal("expected fresh flow kept")
	}
}
