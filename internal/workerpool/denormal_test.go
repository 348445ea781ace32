package workerpool

import (
	"math"
	"testing"
)

func TestFlushDenormal_NormalValuesUnchanged(t *testing.T) {
	for _, v := range []float32{0, 1, -1, 3.14, 1e10, -1e-3} {
		if got := FlushDenormal(v); got != v {
			t.Errorf("FlushDenormal(%v) = %v, want unchanged", v, got)
		}
	}
}

func TestFlushDenormal_SubnormalFlushedWhenAvailable(t *testing.T) {
	if !denormalControlAvailable {
		t.Skip("denormal control not available on this build target")
	}
	subnormal := float32(1e-40) // below the smallest normal float32
	got := FlushDenormal(subnormal)
	if got != 0 {
		t.Errorf("expected subnormal to flush to zero, got %v", got)
	}
}

func TestFlushDenormal_PreservesSign(t *testing.T) {
	if !denormalControlAvailable {
		t.Skip("denormal control not available on this build target")
	}
	neg := float32(-1e-40)
	got := FlushDenormal(neg)
	if got != 0 {
		t.Errorf("expected negative subnormal to flush to zero, got %v", got)
	}
	// Sign bit preserved means -0, which compares equal to +0 but is
	// distinguishable via math.Signbit.
	if !math.Signbit(float64(got)) {
		t.Errorf("expected negative subnormal to flush to -0, got +0")
	}
}
