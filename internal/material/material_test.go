package material

import (
	"strings"
	"testing"
)

const sampleTable = `[
	{"color_key": "FF0000", "name": "steel", "mass": {"nominal_mass": 1.0, "density": 2.0}, "stiffness": 500},
	{"color_key": "00FF00", "name": "anchor", "mass": {"nominal_mass": 1.0, "density": 1.0}, "is_fixed": true},
	{"color_key": "0000FF", "name": "probe", "mass": {"nominal_mass": 1.0, "density": 1.0}, "is_bending_probe": true}
]`

func TestLoadTable_Basic(t *testing.T) {
	table, err := LoadTable(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	steel, ok, err := table.Lookup([3]byte{0xFF, 0x00, 0x00})
	if err != nil || !ok {
		t.Fatalf("expected steel to be found, got ok=%v err=%v", ok, err)
	}
	if steel.Mass.Particle() != 2.0 {
		t.Errorf("expected particle mass 2.0, got %v", steel.Mass.Particle())
	}
	if steel.Stiffness != 500 {
		t.Errorf("expected stiffness 500, got %v", steel.Stiffness)
	}
}

func TestLoadTable_DefaultStiffness(t *testing.T) {
	table, err := LoadTable(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	anchor, ok, err := table.Lookup([3]byte{0x00, 0xFF, 0x00})
	if err != nil || !ok {
		t.Fatalf("expected anchor to be found, got ok=%v err=%v", ok, err)
	}
	if anchor.Stiffness != 1.0 {
		t.Errorf("expected default stiffness 1.0, got %v", anchor.Stiffness)
	}
}

func TestMaterial_FrozenCoefficient(t *testing.T) {
	table, err := LoadTable(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	anchor, _, _ := table.Lookup([3]byte{0x00, 0xFF, 0x00})
	if anchor.FrozenCoefficient() != 0 {
		t.Errorf("expected fixed material to have frozen coefficient 0, got %v", anchor.FrozenCoefficient())
	}
	steel, _, _ := table.Lookup([3]byte{0xFF, 0x00, 0x00})
	if steel.FrozenCoefficient() != 1 {
		t.Errorf("expected free material to have frozen coefficient 1, got %v", steel.FrozenCoefficient())
	}
}

func TestLookup_EmptyColor(t *testing.T) {
	table, err := LoadTable(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	_, ok, err := table.Lookup([3]byte{0xFF, 0xFF, 0xFF})
	if err != nil {
		t.Fatalf("expected no error for the reserved empty color, got %v", err)
	}
	if ok {
		t.Error("expected ok=false for the reserved empty color")
	}
}

func TestLookup_UnknownColor(t *testing.T) {
	table, err := LoadTable(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	_, ok, err := table.Lookup([3]byte{0x12, 0x34, 0x56})
	if ok {
		t.Error("expected ok=false for an unknown color")
	}
	var unknownErr *UnknownColorError
	if err == nil {
		t.Fatal("expected an UnknownColorError")
	}
	if uerr, isType := err.(*UnknownColorError); !isType {
		t.Fatalf("expected *UnknownColorError, got %T", err)
	} else {
		unknownErr = uerr
	}
	_ = unknownErr
}

func TestLoadTable_DuplicateBendingProbe(t *testing.T) {
	data := `[
		{"color_key": "0000FF", "name": "probe1", "mass": {"nominal_mass": 1, "density": 1}, "is_bending_probe": true},
		{"color_key": "00FFFF", "name": "probe2", "mass": {"nominal_mass": 1, "density": 1}, "is_bending_probe": true}
	]`
	_, err := LoadTable(strings.NewReader(data))
	if err == nil {
		t.Fatal("expected an error for two bending-probe materials")
	}
}

func TestLoadTable_RejectsEmptyColorKey(t *testing.T) {
	data := `[{"color_key": "FFFFFF", "name": "bad", "mass": {"nominal_mass": 1, "density": 1}}]`
	_, err := LoadTable(strings.NewReader(data))
	if err == nil {
		t.Fatal("expected an error when a material claims the reserved empty color")
	}
}

func TestLoadTable_BadColorKey(t *testing.T) {
	data := `[{"color_key": "NOTHEX", "name": "bad", "mass": {"nominal_mass": 1, "density": 1}}]`
	_, err := LoadTable(strings.NewReader(data))
	if err == nil {
		t.Fatal("expected an error for a non-hex color key")
	}
}

func TestLoadTable_CaseInsensitiveColorKey(t *testing.T) {
	data := `[{"color_key": "#ff0000", "name": "steel", "mass": {"nominal_mass": 1, "density": 1}}]`
	table, err := LoadTable(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	_, ok, err := table.Lookup([3]byte{0xFF, 0x00, 0x00})
	if err != nil || !ok {
		t.Fatalf("expected lowercase hex color key to resolve, got ok=%v err=%v", ok, err)
	}
}
