package core

import (
	"errors"
	"fmt"
)

// UnrecognizedPixelError reports a structural-layer pixel whose color has no
// matching material and isn't the reserved empty color (spec.md §4.2 step 1,
// §7: "fatal error" class).
type UnrecognizedPixelError struct {
	X, Y  int
	Color [3]byte
}

func (e *UnrecognizedPixelError) Error() string {
	return fmt.Sprintf("pixel at (%d, %d) with color #%02X%02X%02X is not a recognized material",
		e.X, e.Y, e.Color[0], e.Color[1], e.Color[2])
}

// ErrDuplicateBendingProbe is returned when more than one built point carries
// a bending-probe material. The material table already rejects more than one
// *material* flagged is_bending_probe, but a single such material can still
// paint more than one pixel, so the object builder re-checks at the point
// level once the structural layer has been scanned (spec.md §6; mirrors the
// original's Points::Finalize check).
var ErrDuplicateBendingProbe = errors.New("object has more than one bending probe point")

// ErrEmptyStructure is returned when the structural layer contains no
// recognized pixels at all.
var ErrEmptyStructure = errors.New("object structural layer contains no points")
