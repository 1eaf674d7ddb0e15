package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/wricardo/mcp-training/yardsim/game/engine"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

// Analysis is a quick, human-readable profile of one zone
type Analysis struct {
	Name        string
	Canvas      layout.Size
	Slots       int
	ByArea      map[layout.Area]int
	ByKind      map[layout.Kind]int
	Coverage    float64 // share of the canvas covered by slots
	Motion      engine.MotionConfig
	Routes      []RouteEstimate
	BlockedLane []int
}

// RouteEstimate is the rough path from the gate to one slot
type RouteEstimate struct {
	SlotID   int
	Distance float64
	Ticks    int
}

// estimateRoute follows the gate, safe row, lane column, lane, slot path a
// truck drives and adds the fixed waits of the maneuver
func estimateRoute(config *engine.YardConfig, motion engine.MotionConfig, slot layout.Slot) RouteEstimate {
	gate := config.Gate
	lane := slot.Lane(motion.LaneOffset)
	center := slot.Center()

	distance := math.Abs(gate.Y-config.SafeZoneY) +
		math.Abs(gate.X-lane.X) +
		math.Abs(config.SafeZoneY-lane.Y) +
		lane.Distance(center)

	ticks := motion.GateWait() + motion.TurnTicks + int(math.Ceil(distance/motion.Speed))
	return RouteEstimate{SlotID: slot.ID, Distance: distance, Ticks: ticks}
}

// analyzeZone profiles a validated zone
func analyzeZone(config *engine.YardConfig) (*Analysis, error) {
	yard, err := layout.NewLayout(&config.ZoneConfig)
	if err != nil {
		return nil, err
	}

	motion := config.ResolvedMotion()
	a := &Analysis{
		Name:   config.Name,
		Canvas: config.Canvas,
		Slots:  yard.Len(),
		ByArea: yard.CountByArea(),
		ByKind: make(map[layout.Kind]int),
		Motion: motion,
	}

	var clearance *layout.Rect
	if config.Obstacle != nil {
		zone := config.Obstacle.Expand(motion.ObstacleClearance)
		clearance = &zone
	}

	covered := 0.0
	for _, slot := range yard.Slots() {
		a.ByKind[slot.Kind]++
		covered += slot.Rect.Width * slot.Rect.Height
		a.Routes = append(a.Routes, estimateRoute(config, motion, slot))
		if clearance != nil && clearance.Contains(slot.Lane(motion.LaneOffset)) {
			a.BlockedLane = append(a.BlockedLane, slot.ID)
		}
	}
	if canvas := config.Canvas.Width * config.Canvas.Height; canvas > 0 {
		a.Coverage = covered / canvas
	}

	sort.Slice(a.Routes, func(i, j int) bool {
		return a.Routes[i].Distance < a.Routes[j].Distance
	})
	return a, nil
}

// Nearest returns the shortest route, if any
func (a *Analysis) Nearest() (RouteEstimate, bool) {
	if len(a.Routes) == 0 {
		return RouteEstimate{}, false
	}
	return a.Routes[0], true
}

// Farthest returns the longest route, if any
func (a *Analysis) Farthest() (RouteEstimate, bool) {
	if len(a.Routes) == 0 {
		return RouteEstimate{}, false
	}
	return a.Routes[len(a.Routes)-1], true
}

func printAnalysis(out io.Writer, a *Analysis) {
	fmt.Fprintf(out, "Name: %s\n", a.Name)
	fmt.Fprintf(out, "Canvas: %.0f x %.0f\n", a.Canvas.Width, a.Canvas.Height)
	fmt.Fprintf(out, "Slots: %d (%.1f%% of the canvas)\n", a.Slots, a.Coverage*100)

	for _, area := range layout.Areas {
		if n := a.ByArea[area]; n > 0 {
			fmt.Fprintf(out, "  %-10s %d\n", area, n)
		}
	}
	fmt.Fprintf(out, "Kinds: %d yard, %d dock\n", a.ByKind[layout.KindYard], a.ByKind[layout.KindDock])
	fmt.Fprintf(out, "Motion: speed %.1f px/tick, gate wait %d, turn %d, lane offset %.0f\n",
		a.Motion.Speed, a.Motion.GateWait(), a.Motion.TurnTicks, a.Motion.LaneOffset)

	if near, ok := a.Nearest(); ok {
		far, _ := a.Farthest()
		fmt.Fprintf(out, "Nearest slot: %d (~%d ticks, %.1fs)\n", near.SlotID, near.Ticks, float64(near.Ticks)/60)
		fmt.Fprintf(out, "Farthest slot: %d (~%d ticks, %.1fs)\n", far.SlotID, far.Ticks, float64(far.Ticks)/60)
		if a.Motion.MaxPhaseTicks > 0 && far.Ticks > a.Motion.MaxPhaseTicks {
			fmt.Fprintf(out, "⚠️  WARNING: the farthest route may exceed max_phase_ticks (%d) and be flagged as stalled\n",
				a.Motion.MaxPhaseTicks)
		}
	} else {
		fmt.Fprintf(out, "⚠️  WARNING: zone has no slots\n")
	}

	if len(a.BlockedLane) > 0 {
		fmt.Fprintf(out, "⚠️  WARNING: %d lanes sit inside the obstacle clearance: %v\n", len(a.BlockedLane), a.BlockedLane)
	} else if a.Slots > 0 {
		fmt.Fprintf(out, "✅ All lanes are clear of the obstacle\n")
	}
}

// runAnalyze analyzes every zone file in dir
func runAnalyze(out io.Writer, dir string) error {
	files, err := zoneFiles(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintf(out, "\n=== Analyzing %s ===\n", f)

		data, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(out, "Error reading file: %v\n", err)
			continue
		}
		config, err := decodeZone(data)
		if err == nil {
			err = engine.ValidateYardConfig(config)
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		a, err := analyzeZone(config)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		printAnalysis(out, a)
	}
	return nil
}

// runAnalyzeBuiltin analyzes the zones compiled into the binary
func runAnalyzeBuiltin(out io.Writer) error {
	zones := layout.BuiltinZones()
	names := make([]string, 0, len(zones))
	for name := range zones {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(out, "\n=== Analyzing built-in %s ===\n", name)
		a, err := analyzeZone(engine.NewYardConfig(zones[name]))
		if err != nil {
			return fmt.Errorf("zone %s: %w", name, err)
		}
		printAnalysis(out, a)
	}
	return nil
}
