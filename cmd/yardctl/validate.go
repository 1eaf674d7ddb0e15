package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/yardsim/game/engine"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

// ValidationResult captures the outcome of validating a single file.
// Warnings never make a file invalid.
type ValidationResult struct {
	File     string
	Valid    bool
	Slots    int
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// zoneFiles lists the json files of dir in name order
func zoneFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("config directory %s: %w", dir, err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// decodeZone parses a zone file, rejecting unknown fields
func decodeZone(data []byte) (*engine.YardConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var config engine.YardConfig
	if err := dec.Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// validateZoneFile loads and validates a single zone file. On top of the
// checks applied when a zone is loaded it looks at the generated geometry:
// slots leaving the canvas, overlapping each other or the obstacle, and lane
// points a truck could not reach.
func validateZoneFile(path string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := decodeZone(data)
	if err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateYardConfig(config); err != nil {
		result.fail("%v", err)
		return result
	}

	yard, err := layout.NewLayout(&config.ZoneConfig)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	checkGeometry(&result, config, yard)
	return result
}

func checkGeometry(result *ValidationResult, config *engine.YardConfig, yard *layout.Layout) {
	slots := yard.Slots()
	result.Slots = len(slots)
	if len(slots) == 0 {
		result.warn("Zone has no slots; every spawn will be refused")
		return
	}

	canvas := layout.Rect{Width: config.Canvas.Width, Height: config.Canvas.Height}
	motion := config.ResolvedMotion()

	var clearance *layout.Rect
	if config.Obstacle != nil {
		zone := config.Obstacle.Expand(motion.ObstacleClearance)
		clearance = &zone
	}

	for i, slot := range slots {
		r := slot.Rect
		if r.X < 0 || r.Y < 0 || r.X+r.Width > canvas.Width || r.Y+r.Height > canvas.Height {
			result.fail("Slot %d (%s) extends beyond the %.0fx%.0f canvas", slot.ID, slot.Area, canvas.Width, canvas.Height)
		}
		if config.Obstacle != nil && r.Overlaps(*config.Obstacle) {
			result.fail("Slot %d (%s) overlaps the obstacle", slot.ID, slot.Area)
		}
		for _, other := range slots[i+1:] {
			if r.Overlaps(other.Rect) {
				result.fail("Slots %d and %d overlap", slot.ID, other.ID)
			}
		}

		lane := slot.Lane(motion.LaneOffset)
		if !canvas.Contains(lane) {
			result.warn("Lane of slot %d at (%.0f, %.0f) is off the canvas", slot.ID, lane.X, lane.Y)
		}
		if clearance != nil && clearance.Contains(lane) {
			result.warn("Lane of slot %d at (%.0f, %.0f) is inside the obstacle clearance", slot.ID, lane.X, lane.Y)
		}
	}

	if !canvas.Contains(config.Gate) {
		result.warn("Gate (%.0f, %.0f) is off the canvas", config.Gate.X, config.Gate.Y)
	}
}

// validateDir validates every zone file in dir
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := zoneFiles(dir)
	if err != nil {
		return nil, err
	}
	results := make([]ValidationResult, 0, len(files))
	for _, f := range files {
		results = append(results, validateZoneFile(f))
	}
	return results, nil
}

// runValidate prints a report and fails when any file is invalid
func runValidate(out io.Writer, dir string) error {
	results, err := validateDir(dir)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(out, "No zone files found in %s\n", dir)
		return nil
	}

	invalid := 0
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(out, "✅ %s (%d slots)\n", r.File, r.Slots)
		} else {
			invalid++
			fmt.Fprintf(out, "❌ %s\n", r.File)
			for _, e := range r.Errors {
				fmt.Fprintf(out, "   - %s\n", e)
			}
		}
		for _, w := range r.Warnings {
			fmt.Fprintf(out, "   ⚠️  %s\n", w)
		}
	}

	fmt.Fprintf(out, "\n%d/%d zone files valid\n", len(results)-invalid, len(results))
	if invalid > 0 {
		return fmt.Errorf("%d invalid zone file(s)", invalid)
	}
	return nil
}
