package chainclock

import "testing"

func TestCounterMonotonic(t *testing.T) {
	clock := New(10)
	if got := clock.Epoch(); got != 10 {
		t.Fatalf("expected epoch 10, got %d", got)
	}
	if err := clock.Set(25); err != nil {
		t.Fatalf("set forward failed: %v", err)
	}
	if err := clock.Set(25); err != nil {
		t.Fatalf("set to same epoch should be allowed: %v", err)
	}
	if err := clock.Set(24); err == nil {
		t.Fatalf("expected regression error")
	}
	if got := clock.Advance(5); got != 30 {
		t.Fatalf("expected epoch 30 after advance, got %d", got)
	}
}
