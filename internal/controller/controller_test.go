package controller

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/layout"
	"github.com/cwbudde/springlab/internal/material"
	"github.com/cwbudde/springlab/internal/workerpool"
)

func testTable(t *testing.T) *material.Table {
	t.Helper()
	data := `[{"color_key": "FF0000", "name": "steel", "mass": {"nominal_mass": 1, "density": 1}, "stiffness": 50}]`
	table, err := material.LoadTable(strings.NewReader(data))
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	return table
}

func testGrid(t *testing.T, edge int) core.PixelGrid {
	t.Helper()
	raw, err := hex.DecodeString("FF0000")
	if err != nil {
		t.Fatal(err)
	}
	color := [3]byte{raw[0], raw[1], raw[2]}
	return core.PixelGrid{
		Width:  edge,
		Height: edge,
		RGB: func(x, y int) [3]byte {
			return color
		},
	}
}

func newTestController(t *testing.T) (*Controller, *workerpool.Pool) {
	t.Helper()
	pool := workerpool.New(2)
	ctl := New(pool, nil)
	if err := ctl.LoadObject("grid", testGrid(t, 3), testTable(t), layout.Identity{}, "classic"); err != nil {
		t.Fatalf("LoadObject: %v", err)
	}
	return ctl, pool
}

func TestController_LoadObject_SelectsSimulator(t *testing.T) {
	ctl, pool := newTestController(t)
	defer pool.Close()
	if ctl.SimulatorName() != "classic" {
		t.Errorf("expected simulator classic, got %q", ctl.SimulatorName())
	}
	if ctl.Object() == nil {
		t.Fatal("expected an object to be loaded")
	}
}

func TestController_LoadObject_DefaultsToClassicWhenEmpty(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Close()
	ctl := New(pool, nil)
	if err := ctl.LoadObject("grid", testGrid(t, 2), testTable(t), layout.Identity{}, ""); err != nil {
		t.Fatalf("LoadObject: %v", err)
	}
	if ctl.SimulatorName() != "classic" {
		t.Errorf("expected default simulator classic, got %q", ctl.SimulatorName())
	}
}

func TestController_SelectSimulator_UnknownNameErrors(t *testing.T) {
	ctl, pool := newTestController(t)
	defer pool.Close()
	if err := ctl.SelectSimulator("not-a-simulator"); err == nil {
		t.Error("expected an error for an unknown simulator name")
	}
}

func TestController_RunIteration_AdvancesClockAndPublishes(t *testing.T) {
	ctl, pool := newTestController(t)
	defer pool.Close()

	var received []Measurement
	unsubscribe := ctl.Subscribe(func(m Measurement) {
		received = append(received, m)
	})
	defer unsubscribe()

	_, err := ctl.RunIteration()
	if err != nil {
		t.Fatalf("RunIteration: %v", err)
	}
	if ctl.Step() != 1 {
		t.Errorf("expected step 1, got %d", ctl.Step())
	}
	if ctl.SimTime() <= 0 {
		t.Errorf("expected sim time to advance, got %v", ctl.SimTime())
	}
	if len(received) != 1 {
		t.Fatalf("expected 1 published measurement, got %d", len(received))
	}
	if received[0].Step != 1 {
		t.Errorf("expected measurement step 1, got %d", received[0].Step)
	}
}

func TestController_Unsubscribe_StopsNotifications(t *testing.T) {
	ctl, pool := newTestController(t)
	defer pool.Close()

	count := 0
	unsubscribe := ctl.Subscribe(func(m Measurement) { count++ })
	ctl.RunIteration()
	unsubscribe()
	ctl.RunIteration()
	if count != 1 {
		t.Errorf("expected exactly 1 notification before unsubscribing, got %d", count)
	}
}

func TestController_RunIteration_NoObjectLoadedErrors(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Close()
	ctl := New(pool, nil)
	if _, err := ctl.RunIteration(); err == nil {
		t.Error("expected an error when no object is loaded")
	}
}

func TestController_SetParameter_ValidationPassthrough(t *testing.T) {
	ctl, pool := newTestController(t)
	defer pool.Close()
	if err := ctl.SetParameter("global_damping", 5); err == nil {
		t.Error("expected an error for an out-of-range parameter value")
	}
	if err := ctl.SetParameter("global_damping", 0.5); err != nil {
		t.Errorf("expected a valid parameter value to be accepted, got %v", err)
	}
	if ctl.Parameters().GlobalDamping != 0.5 {
		t.Errorf("expected global damping 0.5, got %v", ctl.Parameters().GlobalDamping)
	}
}

func TestController_Reset_ReloadsFromSource(t *testing.T) {
	ctl, pool := newTestController(t)
	defer pool.Close()
	ctl.RunIteration()
	ctl.RunIteration()
	if err := ctl.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ctl.Step() != 0 {
		t.Errorf("expected step 0 after reset, got %d", ctl.Step())
	}
	if ctl.SimTime() != 0 {
		t.Errorf("expected sim time 0 after reset, got %v", ctl.SimTime())
	}
}

func TestController_ProbeNearestPoint(t *testing.T) {
	ctl, pool := newTestController(t)
	defer pool.Close()
	idx, ok := ctl.ProbeNearestPoint(core.Vec2{X: -100, Y: -100})
	if !ok {
		t.Fatal("expected a nearest point to be found")
	}
	_ = idx
}

func TestController_ProbeNearestPoint_NoObjectLoaded(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Close()
	ctl := New(pool, nil)
	_, ok := ctl.ProbeNearestPoint(core.Vec2{})
	if ok {
		t.Error("expected no nearest point when no object is loaded")
	}
}

func TestController_MovePoint(t *testing.T) {
	ctl, pool := newTestController(t)
	defer pool.Close()
	before := ctl.Object().Points.Position(0)
	ctl.MovePoint(0, core.Vec2{X: 1, Y: 2})
	after := ctl.Object().Points.Position(0)
	want := before.Add(core.Vec2{X: 1, Y: 2})
	if after != want {
		t.Errorf("expected position %v, got %v", want, after)
	}
}

func TestController_ToggleFreeze(t *testing.T) {
	ctl, pool := newTestController(t)
	defer pool.Close()
	wasFrozen := ctl.Object().Points.IsFrozen(0)
	ctl.ToggleFreeze(0)
	if ctl.Object().Points.IsFrozen(0) == wasFrozen {
		t.Error("expected freeze state to flip")
	}
}
