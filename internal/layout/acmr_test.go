package layout

import "testing"

func TestFIFOCache_HitsAndEvicts(t *testing.T) {
	c := NewFIFOCache(2)
	if hit := c.Touch(1); hit {
		t.Error("first touch of a new value should miss")
	}
	if hit := c.Touch(1); !hit {
		t.Error("second touch of the same value should hit")
	}
	c.Touch(2)
	if hit := c.Touch(3); hit {
		t.Error("touching a third value in a size-2 cache should miss")
	}
	// 1 should have been evicted (FIFO) once 3 was inserted.
	if hit := c.Touch(1); hit {
		t.Error("expected 1 to have been evicted")
	}
}

func TestACMR_NoRevisitsIsZero(t *testing.T) {
	stream := []uint32{1, 2, 3, 4}
	if got := ACMR(stream, 2); got != 0 {
		t.Errorf("expected 0 ACMR with no revisits, got %v", got)
	}
}

func TestACMR_AllHitsIsZero(t *testing.T) {
	// Every point is revisited immediately, well within cache capacity.
	stream := []uint32{1, 1, 2, 2, 3, 3}
	if got := ACMR(stream, 4); got != 0 {
		t.Errorf("expected 0 ACMR when every revisit hits, got %v", got)
	}
}

func TestACMR_RevisitMissesCountAgainstMetric(t *testing.T) {
	// Cache size 1: touching 2 between the two 1s evicts 1, so the revisit
	// of 1 misses.
	stream := []uint32{1, 2, 1}
	if got := ACMR(stream, 1); got != 1 {
		t.Errorf("expected ACMR 1.0 when the only revisit misses, got %v", got)
	}
}

func TestSpringAccessStream_FlattensEndpoints(t *testing.T) {
	springs := []BuildSpring{{A: 1, B: 2}, {A: 3, B: 4}}
	got := SpringAccessStream(springs)
	want := []uint32{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected length %d, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}
