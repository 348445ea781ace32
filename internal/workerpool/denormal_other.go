//go:build !amd64

package workerpool

// denormalControlAvailable is false off amd64: the software flush this
// package applies in its place is a measured-not-assumed win only where the
// original engine's hardware flush actually engaged.
var denormalControlAvailable = false

// setDenormalControl is a no-op off amd64: there is no portable control word
// to set, so every thread relies solely on FlushDenormal's software path.
func setDenormalControl() {}
