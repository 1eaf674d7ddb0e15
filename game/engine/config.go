package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

// Motion defaults
const (
	DefaultSpeed             = 2.0
	DefaultGateWaitTicks     = 60
	DefaultTurnTicks         = 30
	DefaultLaneOffset        = 60.0
	DefaultObstacleClearance = 20.0
	DefaultMaxPhaseTicks     = 3600

	// StallCheckDisabled turns off stall detection when used as MaxPhaseTicks
	StallCheckDisabled = -1

	// NoGateWait used as GateWaitTicks lets trucks leave the gate on their
	// first tick. Zero means the default wait.
	NoGateWait = -1
)

// MotionConfig tunes how trucks move. Distances are canvas pixels and
// durations are ticks. Zero fields take their defaults in WithDefaults, so
// GateWaitTicks and MaxPhaseTicks use -1 for "none".
type MotionConfig struct {
	Speed             float64 `json:"speed"`
	GateWaitTicks     int     `json:"gate_wait_ticks"`
	TurnTicks         int     `json:"turn_ticks"`
	LaneOffset        float64 `json:"lane_offset"`
	ObstacleClearance float64 `json:"obstacle_clearance"`
	MaxPhaseTicks     int     `json:"max_phase_ticks"`
}

// DefaultMotion returns the stock motion tuning
func DefaultMotion() MotionConfig {
	return MotionConfig{
		Speed:             DefaultSpeed,
		GateWaitTicks:     DefaultGateWaitTicks,
		TurnTicks:         DefaultTurnTicks,
		LaneOffset:        DefaultLaneOffset,
		ObstacleClearance: DefaultObstacleClearance,
		MaxPhaseTicks:     DefaultMaxPhaseTicks,
	}
}

// WithDefaults fills zero fields from DefaultMotion
func (m MotionConfig) WithDefaults() MotionConfig {
	d := DefaultMotion()
	if m.Speed == 0 {
		m.Speed = d.Speed
	}
	if m.GateWaitTicks == 0 {
		m.GateWaitTicks = d.GateWaitTicks
	}
	if m.TurnTicks == 0 {
		m.TurnTicks = d.TurnTicks
	}
	if m.LaneOffset == 0 {
		m.LaneOffset = d.LaneOffset
	}
	if m.ObstacleClearance == 0 {
		m.ObstacleClearance = d.ObstacleClearance
	}
	if m.MaxPhaseTicks == 0 {
		m.MaxPhaseTicks = d.MaxPhaseTicks
	}
	return m
}

// GateWait is the number of ticks a truck waits at the gate
func (m MotionConfig) GateWait() int {
	if m.GateWaitTicks < 0 {
		return 0
	}
	return m.GateWaitTicks
}

// Validate checks the motion tuning
func (m MotionConfig) Validate() error {
	if m.Speed <= 0 {
		return fmt.Errorf("motion validation: speed must be positive, got %v", m.Speed)
	}
	if m.GateWaitTicks < NoGateWait {
		return fmt.Errorf("motion validation: gate_wait_ticks must be -1 or greater, got %d", m.GateWaitTicks)
	}
	if m.TurnTicks <= 0 {
		return fmt.Errorf("motion validation: turn_ticks must be positive, got %d", m.TurnTicks)
	}
	if m.LaneOffset < 0 {
		return fmt.Errorf("motion validation: lane_offset must not be negative, got %v", m.LaneOffset)
	}
	if m.ObstacleClearance < 0 {
		return fmt.Errorf("motion validation: obstacle_clearance must not be negative, got %v", m.ObstacleClearance)
	}
	if m.MaxPhaseTicks < StallCheckDisabled {
		return fmt.Errorf("motion validation: max_phase_ticks must be -1 or greater, got %d", m.MaxPhaseTicks)
	}
	return nil
}

// YardConfig is a zone file: the yard geometry plus optional motion tuning
type YardConfig struct {
	layout.ZoneConfig
	Motion *MotionConfig `json:"motion,omitempty"`
}

// NewYardConfig wraps a zone with default motion
func NewYardConfig(zone *layout.ZoneConfig) *YardConfig {
	return &YardConfig{ZoneConfig: *zone}
}

// ResolvedMotion returns the motion tuning with defaults applied
func (c *YardConfig) ResolvedMotion() MotionConfig {
	if c.Motion == nil {
		return DefaultMotion()
	}
	return c.Motion.WithDefaults()
}

// ValidateYardConfig validates geometry and motion together
func ValidateYardConfig(config *YardConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if err := layout.ValidateZoneConfig(&config.ZoneConfig); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	motion := config.ResolvedMotion()
	if err := motion.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if config.Obstacle != nil {
		zone := config.Obstacle.Expand(motion.ObstacleClearance)
		if config.SafeZoneY > zone.Y && config.SafeZoneY < zone.Y+zone.Height {
			return fmt.Errorf("config validation: safe_zone_y %.0f is within %.0fpx of the obstacle",
				config.SafeZoneY, motion.ObstacleClearance)
		}
		if zone.Contains(config.Gate) {
			return fmt.Errorf("config validation: gate (%.0f, %.0f) is inside the obstacle", config.Gate.X, config.Gate.Y)
		}
	}

	return nil
}

// LoadYardConfig loads a zone file from disk
func LoadYardConfig(filename string) (*YardConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config YardConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateYardConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
