//go:build amd64

package workerpool

import "golang.org/x/sys/cpu"

// denormalControlAvailable is true on amd64, where SSE2 (and therefore
// subnormal float32 arithmetic slow paths) is always present.
var denormalControlAvailable = cpu.X86.HasSSE2

// setFTZDAZ sets the MXCSR flush-to-zero/denormals-are-zero bits for the
// calling OS thread (denormal_amd64.s).
func setFTZDAZ()

// setDenormalControl engages the hardware FTZ/DAZ control word for the
// calling OS thread, spec.md §5's "every thread, on creation, sets
// flush-to-zero / denormals-are-zero on its SIMD control word". Called once
// from initWorkerThread (pool.go) after the goroutine is locked to its OS
// thread, so the setting sticks for the thread's lifetime.
func setDenormalControl() {
	if denormalControlAvailable {
		setFTZDAZ()
	}
}
