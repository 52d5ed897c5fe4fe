package source

import (
	"testing"
	"time"
)

func TestRegistry_StatusReflectsRecency(t *testing.T) {
	reg := NewRegistry(NewMock(nil))
	now := time.Now()

	status := reg.Status(now, time.Minute)
	if status["Mock"] {
		t.Error("expected Mock to be unhealthy before any success is recorded")
	}

	reg.MarkSuccess("Mock", now)
	status = reg.Status(now, time.Minute)
	if !status["Mock"] {
		t.Error("expected Mock to be healthy immediately after a recorded success")
	}

	status = reg.Status(now.Add(2*time.Minute), time.Minute)
	if status["Mock"] {
		t.Error("expected Mock to go stale once freshWithin has elapsed")
	}
}

func TestRegistry_AllPreservesRegistrationOrder(t *testing.T) {
	a, b := NewMock(nil), NewMock(nil)
	reg := NewRegistry(a, b)
	all := reg.All()
	if len(all) != 2 || all[0] != Source(a) || all[1] != Source(b) {
		t.Error("expected All() to preserve registration order")
	}
}
