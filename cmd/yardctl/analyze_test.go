package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/yardsim/game/engine"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

func TestAnalyzeZone(t *testing.T) {
	a, err := analyzeZone(engine.NewYardConfig(layout.FactoryB()))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if a.Slots != 8 {
		t.Errorf("Expected 8 slots, got %d", a.Slots)
	}
	if a.ByArea[layout.Top] != 5 || a.ByArea[layout.Bottom] != 3 {
		t.Errorf("Expected 5 top and 3 bottom slots, got %v", a.ByArea)
	}
	if a.ByKind[layout.KindYard] != 5 || a.ByKind[layout.KindDock] != 3 {
		t.Errorf("Expected 5 yard and 3 dock slots, got %v", a.ByKind)
	}

	expectedCoverage := 8 * 140.0 * 180.0 / (1600.0 * 900.0)
	if diff := a.Coverage - expectedCoverage; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected coverage %f, got %f", expectedCoverage, a.Coverage)
	}

	if len(a.Routes) != 8 {
		t.Fatalf("Expected 8 routes, got %d", len(a.Routes))
	}
	for i := 1; i < len(a.Routes); i++ {
		if a.Routes[i].Distance < a.Routes[i-1].Distance {
			t.Errorf("Expected routes sorted by distance, got %v before %v", a.Routes[i-1], a.Routes[i])
		}
	}

	// the dock door nearest the gate is the closest slot
	near, ok := a.Nearest()
	if !ok || near.SlotID != 415 {
		t.Errorf("Expected nearest slot 415, got %+v", near)
	}
	far, _ := a.Farthest()
	if far.SlotID != 5 {
		t.Errorf("Expected farthest slot 5, got %+v", far)
	}
	if len(a.BlockedLane) != 0 {
		t.Errorf("Expected no blocked lanes, got %v", a.BlockedLane)
	}
}

func TestEstimateRoute(t *testing.T) {
	cfg := engine.NewYardConfig(layout.FactoryB())
	motion := cfg.ResolvedMotion()
	slot := layout.Slot{ID: 415, Rect: layout.Rect{X: 50, Y: 620, Width: 140, Height: 180}, Area: layout.Bottom}

	route := estimateRoute(cfg, motion, slot)

	// gate (20,880) -> safe row 520 -> lane x 120 -> lane y 560 -> centre (120,710)
	expectedDistance := 360.0 + 100.0 + 40.0 + 150.0
	if route.Distance != expectedDistance {
		t.Errorf("Expected distance %v, got %v", expectedDistance, route.Distance)
	}
	expectedTicks := motion.GateWaitTicks + motion.TurnTicks + int(expectedDistance/motion.Speed)
	if route.Ticks != expectedTicks {
		t.Errorf("Expected %d ticks, got %d", expectedTicks, route.Ticks)
	}
}

func TestAnalyzeZone_Empty(t *testing.T) {
	cfg := engine.NewYardConfig(layout.FactoryB())
	cfg.Areas = nil

	a, err := analyzeZone(cfg)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := a.Nearest(); ok {
		t.Error("Expected no routes for an empty zone")
	}

	var out bytes.Buffer
	printAnalysis(&out, a)
	if !strings.Contains(out.String(), "zone has no slots") {
		t.Errorf("Expected empty warning, got %q", out.String())
	}
}

func TestRunAnalyze(t *testing.T) {
	dir := t.TempDir()
	writeZone(t, dir, "factory_b.json", engine.NewYardConfig(layout.FactoryB()))
	writeRaw(t, dir, "broken.json", "{")

	var out bytes.Buffer
	if err := runAnalyze(&out, dir); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	output := out.String()
	for _, want := range []string{
		"=== Analyzing",
		"Name: factory_b",
		"Canvas: 1600 x 900",
		"Slots: 8",
		"Kinds: 5 yard, 3 dock",
		"Nearest slot: 415",
		"✅ All lanes are clear of the obstacle",
		"Error:",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestRunAnalyzeBuiltin(t *testing.T) {
	var out bytes.Buffer
	if err := runAnalyzeBuiltin(&out); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for name := range layout.BuiltinZones() {
		if !strings.Contains(out.String(), "=== Analyzing built-in "+name+" ===") {
			t.Errorf("Expected a section for %s", name)
		}
	}
}
