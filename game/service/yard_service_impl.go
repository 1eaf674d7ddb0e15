package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/yardsim/game/asn"
	"github.com/wricardo/mcp-training/yardsim/game/engine"
)

// yardServiceImpl implements the YardService interface
type yardServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	metrics  Metrics
	mu       sync.RWMutex
}

// Option customizes the service
type Option func(*yardServiceImpl)

// WithMetrics reports simulation outcomes to m
func WithMetrics(m Metrics) Option {
	return func(s *yardServiceImpl) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewYardService creates a new yard service instance
func NewYardService(sessions SessionManager, configs ConfigManager, opts ...Option) YardService {
	s := &yardServiceImpl{
		sessions: sessions,
		configs:  configs,
		metrics:  noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new yard session
func (s *yardServiceImpl) CreateSession(ctx context.Context, zoneName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.YardConfig
	if zoneName != "" {
		loaded, err := s.configs.LoadConfig(zoneName)
		if err != nil {
			return nil, s.zoneError(zoneName, err)
		}
		config = loaded
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate the ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	info := s.sessionInfo(sess)
	info.Zone = sess.Config
	return info, nil
}

// GetSession retrieves session information
func (s *yardServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	info := s.sessionInfo(sess)
	info.Zone = sess.Config
	return info, nil
}

// ListSessions returns all active sessions, oldest first
func (s *yardServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteSession removes a session
func (s *yardServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.metrics.Forget(sessionID)
	return nil
}

// Spawn dispatches a truck for a shipment
func (s *yardServiceImpl) Spawn(ctx context.Context, sessionID string, req SpawnRequest) (*SpawnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	shipment, taken, err := s.resolveASN(sess, req)
	if err != nil {
		return nil, err
	}

	truckID, err := sess.Sim.Spawn(shipment, spawnOptions(req)...)
	if err != nil {
		if taken {
			sess.ASNs.Release(shipment.ASNNumber)
		}
		s.metrics.SpawnAttempt(sess.ZoneID, spawnOutcome(err))
		return nil, fmt.Errorf("spawn %s: %w", shipment.ContainerNumber, err)
	}
	s.metrics.SpawnAttempt(sess.ZoneID, "ok")

	view, _ := sess.Sim.Truck(truckID)
	return &SpawnResult{
		TruckID: truckID,
		SlotID:  view.TargetSlotID,
		Truck:   view,
		Message: fmt.Sprintf("%s assigned to slot %d", shipment.Label(), view.TargetSlotID),
		Events:  s.drain(sess),
	}, nil
}

// CheckOut removes a container's truck and frees its slot
func (s *yardServiceImpl) CheckOut(ctx context.Context, sessionID, containerNumber string) (*CheckOutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(containerNumber) == "" {
		return nil, fmt.Errorf("%w: container number is required", ErrInvalidRequest)
	}

	slotID, err := sess.Sim.CheckOut(containerNumber)
	if err != nil {
		return nil, err
	}
	sess.ASNs.ReleaseContainer(containerNumber)
	s.metrics.CheckedOut(sess.ZoneID)

	return &CheckOutResult{
		ContainerNumber: containerNumber,
		SlotID:          slotID,
		Message:         fmt.Sprintf("%s checked out, slot %d released", containerNumber, slotID),
		Events:          s.drain(sess),
	}, nil
}

// Reassign moves an in-flight truck to another slot while the window is open
func (s *yardServiceImpl) Reassign(ctx context.Context, sessionID, truckID string, slotID int) (*ReassignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	accepted, err := sess.Sim.Reassign(truckID, slotID)
	if err != nil {
		return nil, err
	}
	s.metrics.Reassigned(sess.ZoneID, accepted)

	result := &ReassignResult{
		TruckID:  truckID,
		SlotID:   slotID,
		Accepted: accepted,
		Events:   s.drain(sess),
	}
	if accepted {
		result.Message = fmt.Sprintf("truck %s now heading to slot %d", truckID, slotID)
	} else {
		result.Message = "reassignment window closed"
	}
	return result, nil
}

// Advance steps one session manually, whether or not it is running
func (s *yardServiceImpl) Advance(ctx context.Context, sessionID string, ticks int) (*AdvanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if ticks <= 0 {
		return nil, fmt.Errorf("%w: ticks must be positive, got %d", ErrInvalidRequest, ticks)
	}

	result := &AdvanceResult{Requested: ticks}
	if ticks > engine.MaxAdvanceTicks {
		ticks = engine.MaxAdvanceTicks
		result.Truncated = true
		result.Limit = engine.MaxAdvanceTicks
	}

	result.Report = s.step(ctx, sess, ticks)
	result.Events = s.drain(sess)
	result.Statistics = sess.Sim.Statistics()
	s.metrics.Observe(sess.ID, sess.ZoneID, result.Statistics)
	return result, nil
}

// TickAll advances every running session by one tick
func (s *yardServiceImpl) TickAll(ctx context.Context) []*TickUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updates []*TickUpdate
	for _, sess := range s.sessions.List() {
		if ctx.Err() != nil {
			break
		}
		if !sess.Running() {
			continue
		}

		report := s.step(ctx, sess, 1)
		s.metrics.Observe(sess.ID, sess.ZoneID, sess.Sim.Statistics())
		updates = append(updates, &TickUpdate{
			SessionID: sess.ID,
			Report:    report,
			Events:    s.drain(sess),
			Frame:     sess.Sim.Frame(),
		})
	}
	return updates
}

// SetRunning pauses or resumes the clock for a session
func (s *yardServiceImpl) SetRunning(ctx context.Context, sessionID string, running bool) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sess.SetRunning(running)
	return s.sessionInfo(sess), nil
}

// SetAutoSpawn configures periodic dispatch from the ASN catalog
func (s *yardServiceImpl) SetAutoSpawn(ctx context.Context, sessionID string, opts AutoSpawnOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if opts.IntervalTicks < 0 {
		return nil, fmt.Errorf("%w: interval_ticks must not be negative", ErrInvalidRequest)
	}
	sess.SetAutoSpawn(opts)
	return s.sessionInfo(sess), nil
}

// GetFrame returns the render snapshot for a session
func (s *yardServiceImpl) GetFrame(ctx context.Context, sessionID string) (*engine.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Sim.Frame(), nil
}

// GetStatistics returns occupancy statistics for a session
func (s *yardServiceImpl) GetStatistics(ctx context.Context, sessionID string) (*engine.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Sim.Statistics(), nil
}

// ListASNs returns the shipments not yet dispatched in a session
func (s *yardServiceImpl) ListASNs(ctx context.Context, sessionID string) ([]asn.ASN, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.ASNs.Available(), nil
}

// ListZones returns all available zone configurations
func (s *yardServiceImpl) ListZones(ctx context.Context) ([]*ZoneInfo, error) {
	return s.configs.ListConfigs()
}

// LoadZone loads a specific zone configuration
func (s *yardServiceImpl) LoadZone(ctx context.Context, zoneName string) (*engine.YardConfig, error) {
	config, err := s.configs.LoadConfig(zoneName)
	if err != nil {
		return nil, s.zoneError(zoneName, err)
	}
	return config, nil
}

// SaveZone validates and saves a zone configuration
func (s *yardServiceImpl) SaveZone(ctx context.Context, zoneName string, config *engine.YardConfig) error {
	if strings.TrimSpace(zoneName) == "" {
		return fmt.Errorf("%w: zone name is required", ErrInvalidRequest)
	}
	if err := engine.ValidateYardConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return s.configs.SaveConfig(zoneName, config)
}

// step runs n ticks on sess, firing auto-spawns before each tick
func (s *yardServiceImpl) step(ctx context.Context, sess *Session, n int) engine.TickReport {
	report := engine.TickReport{}
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		if sess.autoSpawnDue(sess.Sim.CurrentTick()) {
			s.autoSpawn(sess)
		}

		r := sess.Sim.Tick()
		report.Ticks++
		report.Tick = r.Tick
		report.InFlight = r.InFlight
		report.NewlyParked = append(report.NewlyParked, r.NewlyParked...)

		for _, p := range r.NewlyParked {
			s.metrics.Parked(sess.ZoneID, p.ParkedAt-p.SpawnedAt)
		}
	}
	if report.Ticks == 0 {
		report.Tick = sess.Sim.CurrentTick()
		report.InFlight = len(sess.Sim.InFlight())
	}
	return report
}

// autoSpawn dispatches the next unused ASN whose container is not already
// in the yard. A full yard or an exhausted catalog skips the attempt.
func (s *yardServiceImpl) autoSpawn(sess *Session) {
	shipment, err := nextShipment(sess)
	if err != nil {
		return
	}
	if _, err := sess.Sim.Spawn(shipment); err != nil {
		sess.ASNs.Release(shipment.ASNNumber)
		s.metrics.SpawnAttempt(sess.ZoneID, spawnOutcome(err))
		return
	}
	s.metrics.SpawnAttempt(sess.ZoneID, "ok")
}

// resolveASN picks the shipment for a spawn request. taken reports whether
// it was claimed from the session's dispenser.
func (s *yardServiceImpl) resolveASN(sess *Session, req SpawnRequest) (asn.ASN, bool, error) {
	switch {
	case req.ASN != nil:
		if err := req.ASN.Validate(); err != nil {
			return asn.ASN{}, false, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return *req.ASN, false, nil
	case req.ASNNumber != "":
		shipment, err := sess.ASNs.Take(req.ASNNumber)
		if err != nil {
			return asn.ASN{}, false, err
		}
		return shipment, true, nil
	default:
		shipment, err := nextShipment(sess)
		if err != nil {
			return asn.ASN{}, false, err
		}
		return shipment, true, nil
	}
}

// nextShipment claims the first unused ASN whose container is not in the yard
func nextShipment(sess *Session) (asn.ASN, error) {
	return sess.ASNs.NextWhere(func(a asn.ASN) bool {
		return !sess.Sim.HasContainer(a.ContainerNumber)
	})
}

// drain collects pending simulation events and feeds the metrics
func (s *yardServiceImpl) drain(sess *Session) []engine.Event {
	events := sess.Sim.DrainEvents()
	for _, e := range events {
		if e.Type == engine.EventStalled {
			s.metrics.Stalled(sess.ZoneID)
		}
	}
	return events
}

func (s *yardServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *yardServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ZoneID:         sess.ZoneID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Running:        sess.Running(),
		AutoSpawn:      sess.AutoSpawn(),
		Statistics:     sess.Sim.Statistics(),
	}
}

// zoneError adds the available zone ids to a not-found error
func (s *yardServiceImpl) zoneError(zoneName string, err error) error {
	available, listErr := s.configs.ListConfigs()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("%w: '%s': %v", ErrZoneNotFound, zoneName, err)
	}
	ids := make([]string, 0, len(available))
	for _, z := range available {
		ids = append(ids, z.ZoneID)
	}
	return fmt.Errorf("%w: '%s'. Available zones: %v", ErrZoneNotFound, zoneName, ids)
}

func spawnOptions(req SpawnRequest) []engine.SpawnOption {
	var opts []engine.SpawnOption
	if req.TrailerID != "" {
		opts = append(opts, engine.WithTrailerID(req.TrailerID))
	}
	if req.TruckPlate != "" {
		opts = append(opts, engine.WithTruckPlate(req.TruckPlate))
	}
	if len(req.Kinds) > 0 {
		opts = append(opts, engine.WithKinds(req.Kinds...))
	}
	if len(req.Areas) > 0 {
		opts = append(opts, engine.WithAreas(req.Areas...))
	}
	if req.SlotID != 0 {
		opts = append(opts, engine.WithSlot(req.SlotID))
	}
	return opts
}

// spawnOutcome labels a spawn error for metrics
func spawnOutcome(err error) string {
	switch {
	case errors.Is(err, engine.ErrNoSlotAvailable):
		return "no_slot"
	case errors.Is(err, engine.ErrDuplicateContainer):
		return "duplicate"
	case errors.Is(err, engine.ErrSlotReserved), errors.Is(err, engine.ErrUnknownSlot):
		return "slot_rejected"
	default:
		return "invalid"
	}
}

type noopMetrics struct{}

func (noopMetrics) SpawnAttempt(string, string) {}
func (noopMetrics) CheckedOut(string) {}
func (noopMetrics) Parked(string, uint64) {}
func (noopMetrics) Reassigned(string, bool) {}
func (noopMetrics) Stalled(string) {}
func (noopMetrics) Observe(string, string, *engine.Statistics) {}
func (noopMetrics) Forget(string) {}
