// Package material loads the color-keyed material table that the object
// builder uses to turn recognized pixels into points.
package material

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// emptyColor is the designated "no point here" pixel value.
var emptyColor = [3]byte{0xFF, 0xFF, 0xFF}

// Mass holds the two factors multiplied together to get a point's mass.
type Mass struct {
	NominalMass float64 `json:"nominal_mass"`
	Density     float64 `json:"density"`
}

// Particle returns nominal_mass * density, the actual per-point mass.
func (m Mass) Particle() float64 { return m.NominalMass * m.Density }

// Material describes one recognized pixel color.
type Material struct {
	ColorKey       string  `json:"color_key"`
	Name           string  `json:"name"`
	Mass           Mass    `json:"mass"`
	Stiffness      float64 `json:"stiffness"`
	IsFixed        bool    `json:"is_fixed,omitempty"`
	IsBendingProbe bool    `json:"is_bending_probe,omitempty"`

	rgb [3]byte
}

// RGB returns the decoded 6-hex-digit color key.
func (m *Material) RGB() [3]byte { return m.rgb }

// FrozenCoefficient returns 0 for a fixed material, 1 otherwise, matching
// spec.md §6.
func (m *Material) FrozenCoefficient() float32 {
	if m.IsFixed {
		return 0
	}
	return 1
}

// Table maps recognized RGB colors to their material definition.
type Table struct {
	byColor           map[[3]byte]*Material
	bendingProbeColor *[3]byte
	bendingProbeName  string
}

// Lookup returns the material for an RGB color. ok is false for the
// designated empty color (white); err is non-nil for any other unrecognized
// color, per spec.md §4.2 step 1 and §7.
func (t *Table) Lookup(rgb [3]byte) (mat *Material, ok bool, err error) {
	if rgb == emptyColor {
		return nil, false, nil
	}
	m, found := t.byColor[rgb]
	if !found {
		return nil, false, &UnknownColorError{Color: rgb}
	}
	return m, true, nil
}

// UnknownColorError reports a pixel color with no matching material.
type UnknownColorError struct {
	Color [3]byte
}

func (e *UnknownColorError) Error() string {
	return fmt.Sprintf("unknown material color #%02X%02X%02X", e.Color[0], e.Color[1], e.Color[2])
}

// LoadTable parses the material JSON array described in spec.md §6.
// It is fatal (returns an error) if more than one material has
// is_bending_probe set.
func LoadTable(r io.Reader) (*Table, error) {
	var raw []Material
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("material: decode table: %w", err)
	}

	t := &Table{byColor: make(map[[3]byte]*Material, len(raw))}

	for i := range raw {
		m := &raw[i]
		if m.Stiffness == 0 {
			m.Stiffness = 1.0
		}

		rgb, err := parseColorKey(m.ColorKey)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", m.Name, err)
		}
		m.rgb = rgb

		if rgb == emptyColor {
			return nil, fmt.Errorf("material %q: color_key %s collides with the reserved empty color", m.Name, m.ColorKey)
		}

		if m.IsBendingProbe {
			if t.bendingProbeColor != nil {
				return nil, fmt.Errorf("material: more than one material has is_bending_probe set (%q and %q)", t.bendingProbeName, m.Name)
			}
			c := rgb
			t.bendingProbeColor = &c
			t.bendingProbeName = m.Name
		}

		t.byColor[rgb] = m
	}

	return t, nil
}

// parseColorKey decodes a 6-hex-digit RGB string, accepting uppercase or
// lowercase digits.
func parseColorKey(key string) ([3]byte, error) {
	key = strings.TrimPrefix(key, "#")
	if len(key) != 6 {
		return [3]byte{}, fmt.Errorf("color_key %q must be 6 hex digits", key)
	}
	raw, err := hex.DecodeString(key)
	if err != nil {
		return [3]byte{}, fmt.Errorf("color_key %q: %w", key, err)
	}
	return [3]byte{raw[0], raw[1], raw[2]}, nil
}
