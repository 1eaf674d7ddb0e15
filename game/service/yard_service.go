package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/yardsim/game/asn"
	"github.com/wricardo/mcp-training/yardsim/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrZoneNotFound    = errors.New("zone not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// DefaultAutoSpawnInterval is the auto-spawn cadence in ticks (5s at 60Hz)
const DefaultAutoSpawnInterval = 300

// YardService defines all yard-related operations
type YardService interface {
	// Session Management
	CreateSession(ctx context.Context, zoneName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Truck Operations
	Spawn(ctx context.Context, sessionID string, req SpawnRequest) (*SpawnResult, error)
	CheckOut(ctx context.Context, sessionID, containerNumber string) (*CheckOutResult, error)
	Reassign(ctx context.Context, sessionID, truckID string, slotID int) (*ReassignResult, error)

	// Simulation Clock
	Advance(ctx context.Context, sessionID string, ticks int) (*AdvanceResult, error)
	TickAll(ctx context.Context) []*TickUpdate
	SetRunning(ctx context.Context, sessionID string, running bool) (*SessionInfo, error)
	SetAutoSpawn(ctx context.Context, sessionID string, opts AutoSpawnOptions) (*SessionInfo, error)

	// Yard State
	GetFrame(ctx context.Context, sessionID string) (*engine.Frame, error)
	GetStatistics(ctx context.Context, sessionID string) (*engine.Statistics, error)
	ListASNs(ctx context.Context, sessionID string) ([]asn.ASN, error)

	// Zones
	ListZones(ctx context.Context) ([]*ZoneInfo, error)
	LoadZone(ctx context.Context, zoneName string) (*engine.YardConfig, error)
	SaveZone(ctx context.Context, zoneName string, config *engine.YardConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.YardConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles zone configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.YardConfig, error)
	ListConfigs() ([]*ZoneInfo, error)
	GetDefault() *engine.YardConfig
	SaveConfig(name string, config *engine.YardConfig) error
}

// Metrics receives simulation outcomes for export
type Metrics interface {
	SpawnAttempt(zone, result string)
	CheckedOut(zone string)
	Parked(zone string, maneuverTicks uint64)
	Reassigned(zone string, accepted bool)
	Stalled(zone string)
	Observe(sessionID, zone string, stats *engine.Statistics)
	Forget(sessionID string)
}

// Session represents an active yard simulation
type Session struct {
	ID             string
	ZoneID         string
	Sim            *engine.Simulation
	Config         *engine.YardConfig
	ASNs           *asn.Dispenser
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu        sync.Mutex
	running   bool
	autoSpawn AutoSpawnOptions
	lastSpawn uint64
}

// NewSession builds a running session over a fresh simulation
func NewSession(id string, config *engine.YardConfig, catalog *asn.Catalog) (*Session, error) {
	sim, err := engine.NewSimulationFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation: %w", err)
	}
	if catalog == nil {
		catalog = asn.Builtin()
	}

	now := time.Now()
	return &Session{
		ID:             id,
		ZoneID:         config.Name,
		Sim:            sim,
		Config:         config,
		ASNs:           asn.NewDispenser(catalog),
		CreatedAt:      now,
		LastAccessedAt: now,
		running:        true,
		autoSpawn:      AutoSpawnOptions{IntervalTicks: DefaultAutoSpawnInterval},
	}, nil
}

// Running reports whether the clock advances this session
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetRunning pauses or resumes the session
func (s *Session) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
}

// AutoSpawn returns the auto-spawn settings
func (s *Session) AutoSpawn() AutoSpawnOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSpawn
}

// SetAutoSpawn replaces the auto-spawn settings. The interval restarts
// from the current tick.
func (s *Session) SetAutoSpawn(opts AutoSpawnOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if opts.IntervalTicks <= 0 {
		opts.IntervalTicks = DefaultAutoSpawnInterval
	}
	s.autoSpawn = opts
	s.lastSpawn = s.Sim.CurrentTick()
}

// autoSpawnDue reports whether an auto-spawn should fire at tick and marks it
func (s *Session) autoSpawnDue(tick uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.autoSpawn.Enabled {
		return false
	}
	if tick-s.lastSpawn < uint64(s.autoSpawn.IntervalTicks) {
		return false
	}
	s.lastSpawn = tick
	return true
}
