package service

import (
	"time"

	"github.com/wricardo/mcp-training/yardsim/game/asn"
	"github.com/wricardo/mcp-training/yardsim/game/engine"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

// SessionInfo provides information about a yard session
type SessionInfo struct {
	ID             string             `json:"id"`
	ZoneID         string             `json:"zone_id"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Running        bool               `json:"running"`
	AutoSpawn      AutoSpawnOptions   `json:"auto_spawn"`
	Statistics     *engine.Statistics `json:"statistics"`
	Zone           *engine.YardConfig `json:"zone,omitempty"`
}

// AutoSpawnOptions controls periodic truck dispatch from the ASN catalog
type AutoSpawnOptions struct {
	Enabled       bool `json:"enabled"`
	IntervalTicks int  `json:"interval_ticks"`
}

// SpawnRequest describes a truck to dispatch. With no ASN and no
// ASNNumber the next unused catalog entry is taken.
type SpawnRequest struct {
	ASNNumber  string        `json:"asn_number,omitempty"`
	ASN        *asn.ASN      `json:"asn,omitempty"`
	TrailerID  string        `json:"trailer_id,omitempty"`
	TruckPlate string        `json:"truck_plate,omitempty"`
	Kinds      []layout.Kind `json:"kinds,omitempty"`
	Areas      []layout.Area `json:"areas,omitempty"`
	SlotID     int           `json:"slot_id,omitempty"`
}

// SpawnResult contains the outcome of a spawn
type SpawnResult struct {
	TruckID string           `json:"truck_id"`
	SlotID  int              `json:"slot_id"`
	Truck   engine.TruckView `json:"truck"`
	Message string           `json:"message"`
	Events  []engine.Event   `json:"events,omitempty"`
}

// CheckOutResult contains the outcome of a check-out
type CheckOutResult struct {
	ContainerNumber string         `json:"container_number"`
	SlotID          int            `json:"slot_id"`
	Message         string         `json:"message"`
	Events          []engine.Event `json:"events,omitempty"`
}

// ReassignResult contains the outcome of a reassignment request
type ReassignResult struct {
	TruckID  string         `json:"truck_id"`
	SlotID   int            `json:"slot_id"`
	Accepted bool           `json:"accepted"`
	Message  string         `json:"message"`
	Events   []engine.Event `json:"events,omitempty"`
}

// AdvanceResult contains the outcome of manual stepping
type AdvanceResult struct {
	Report     engine.TickReport  `json:"report"`
	Requested  int                `json:"requested"`
	Truncated  bool               `json:"truncated,omitempty"`
	Limit      int                `json:"limit,omitempty"`
	Events     []engine.Event     `json:"events,omitempty"`
	Statistics *engine.Statistics `json:"statistics"`
}

// TickUpdate is produced for every running session on a clock tick
type TickUpdate struct {
	SessionID string            `json:"session_id"`
	Report    engine.TickReport `json:"report"`
	Events    []engine.Event    `json:"events,omitempty"`
	Frame     *engine.Frame     `json:"frame"`
}

// ZoneInfo provides information about a zone configuration
type ZoneInfo struct {
	Filename    string              `json:"filename"`
	ZoneID      string              `json:"zone_id"` // The identifier to use for session creation
	Name        string              `json:"name"`
	Description string              `json:"description"`
	TotalSlots  int                 `json:"total_slots"`
	AreaCounts  map[layout.Area]int `json:"area_counts"`
}
