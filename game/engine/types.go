package engine

import (
	"fmt"

	"github.com/wricardo/mcp-training/yardsim/game/asn"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

// Phase is a step of the parking maneuver. Phases only move forward.
type Phase int

const (
	PhaseAtGate Phase = iota
	PhaseEntering
	PhaseMovingToLane
	PhaseMoving
	PhaseApproaching
	PhaseBacking
	PhaseParked
)

const (
	// Validation constants
	MaxAdvanceTicks  = 600
	MaxPendingEvents = 1024
)

var phaseNames = [...]string{
	PhaseAtGate:       "at_gate",
	PhaseEntering:     "entering",
	PhaseMovingToLane: "moving_to_lane",
	PhaseMoving:       "moving",
	PhaseApproaching:  "approaching",
	PhaseBacking:      "backing",
	PhaseParked:       "parked",
}

// String returns the wire name of the phase
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase converts a wire name back into a Phase
func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

// isMotion reports whether the phase moves the truck across the canvas
func (p Phase) isMotion() bool {
	switch p {
	case PhaseEntering, PhaseMovingToLane, PhaseMoving, PhaseBacking:
		return true
	}
	return false
}

// Pose is a position and rotation on the canvas
type Pose struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// Point returns the position part of the pose
func (p Pose) Point() layout.Point {
	return layout.Point{X: p.X, Y: p.Y}
}

// Truck is an in-flight vehicle holding a reservation on TargetSlotID
type Truck struct {
	ID              string
	ContainerNumber string
	TrailerID       string
	TruckPlate      string
	ASN             asn.ASN
	TargetSlotID    int
	Pose            Pose
	SpawnedAt       uint64

	state      phaseState
	phaseTicks int
	stalled    bool
}

// Phase returns the truck's current phase
func (t *Truck) Phase() Phase {
	return t.state.Phase()
}

// View returns a copy of the truck safe to hand to other goroutines
func (t *Truck) View() TruckView {
	v := TruckView{
		ID:              t.ID,
		ContainerNumber: t.ContainerNumber,
		TrailerID:       t.TrailerID,
		TruckPlate:      t.TruckPlate,
		ASNNumber:       t.ASN.ASNNumber,
		Label:           t.ASN.Label(),
		Status:          t.ASN.Status,
		Phase:           t.Phase(),
		TargetSlotID:    t.TargetSlotID,
		Pose:            t.Pose,
		PhaseTicks:      t.phaseTicks,
		Stalled:         t.stalled,
		SpawnedAt:       t.SpawnedAt,
	}
	if g, ok := t.state.(*atGate); ok {
		v.WaitTimer = g.waited
	}
	return v
}

// TruckView is the per-frame render record of an in-flight truck
type TruckView struct {
	ID              string              `json:"id"`
	ContainerNumber string              `json:"container_number"`
	TrailerID       string              `json:"trailer_id,omitempty"`
	TruckPlate      string              `json:"truck_plate,omitempty"`
	ASNNumber       string              `json:"asn_number,omitempty"`
	Label           string              `json:"label"`
	Status          asn.ContainerStatus `json:"status,omitempty"`
	Phase           Phase               `json:"phase"`
	TargetSlotID    int                 `json:"target_slot_id"`
	Pose
	WaitTimer  int    `json:"wait_timer,omitempty"`
	PhaseTicks int    `json:"phase_ticks"`
	Stalled    bool   `json:"stalled,omitempty"`
	SpawnedAt  uint64 `json:"spawned_at"`
}

// ParkedTruck is a truck that completed its maneuver, keyed by slot
type ParkedTruck struct {
	SlotID          int         `json:"slot_id"`
	TruckID         string      `json:"truck_id"`
	ContainerNumber string      `json:"container_number"`
	TrailerID       string      `json:"trailer_id,omitempty"`
	TruckPlate      string      `json:"truck_plate,omitempty"`
	ASN             asn.ASN     `json:"asn"`
	Area            layout.Area `json:"area"`
	Kind            layout.Kind `json:"kind"`
	Pose
	ParkedAt  uint64 `json:"parked_at"`
	SpawnedAt uint64 `json:"spawned_at"`
}

// SlotView is a slot with its occupancy for highlighting
type SlotView struct {
	layout.Slot
	Occupied        bool   `json:"occupied"`
	Reserved        bool   `json:"reserved"`
	ContainerNumber string `json:"container_number,omitempty"`
}

// Frame is everything a renderer needs for one tick
type Frame struct {
	Tick      uint64        `json:"tick"`
	Zone      string        `json:"zone"`
	Canvas    layout.Size   `json:"canvas"`
	Gate      layout.Point  `json:"gate"`
	SafeZoneY float64       `json:"safe_zone_y"`
	Obstacle  *layout.Rect  `json:"obstacle,omitempty"`
	Slots     []SlotView    `json:"slots"`
	Trucks    []TruckView   `json:"trucks"`
	Parked    []ParkedTruck `json:"parked"`
}

// AreaStatistics is the occupancy of one area
type AreaStatistics struct {
	Total    int `json:"total"`
	Occupied int `json:"occupied"`
	Reserved int `json:"reserved"`
}

// Statistics summarizes yard occupancy
type Statistics struct {
	Tick                uint64                         `json:"tick"`
	TotalSlots          int                            `json:"total_slots"`
	OccupiedSlots       int                            `json:"occupied_slots"`
	ReservedSlots       int                            `json:"reserved_slots"`
	EmptySlots          int                            `json:"empty_slots"`
	InFlight            int                            `json:"in_flight"`
	StalledTrucks       int                            `json:"stalled_trucks"`
	FullContainers      int                            `json:"full_containers"`
	EmptyContainers     int                            `json:"empty_containers"`
	LoadingContainers   int                            `json:"loading_containers"`
	UnloadingContainers int                            `json:"unloading_containers"`
	ByArea              map[layout.Area]AreaStatistics `json:"by_area"`
	ByPhase             map[string]int                 `json:"by_phase"`
}

// EventType names a simulation event
type EventType string

const (
	EventSpawned      EventType = "spawned"
	EventPhaseChanged EventType = "phase_changed"
	EventParked       EventType = "parked"
	EventCheckedOut   EventType = "checked_out"
	EventReassigned   EventType = "reassigned"
	EventStalled      EventType = "stalled"
)

// Event records something that happened to a truck
type Event struct {
	Type            EventType `json:"type"`
	Tick            uint64    `json:"tick"`
	TruckID         string    `json:"truck_id"`
	ContainerNumber string    `json:"container_number"`
	SlotID          int       `json:"slot_id"`
	Phase           Phase     `json:"phase"`
	Message         string    `json:"message,omitempty"`
}

// TickReport describes the result of advancing the simulation
type TickReport struct {
	Tick        uint64        `json:"tick"`
	Ticks       int           `json:"ticks"`
	InFlight    int           `json:"in_flight"`
	NewlyParked []ParkedTruck `json:"newly_parked,omitempty"`
}
