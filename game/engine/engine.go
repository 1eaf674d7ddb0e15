package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/yardsim/game/asn"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

var (
	ErrNoSlotAvailable    = errors.New("no slot available")
	ErrDuplicateContainer = errors.New("container already in the yard")
	ErrContainerNotFound  = errors.New("container not found")
	ErrTruckNotFound      = errors.New("truck not found")
	ErrSlotReserved       = errors.New("slot already reserved")
	ErrUnknownSlot        = layout.ErrUnknownSlot
)

// Simulation owns one yard: its layout, the trucks in flight and the parked
// trucks. All methods are safe for concurrent use; each call and each tick
// runs under a single lock.
type Simulation struct {
	layout *layout.Layout
	motion MotionConfig
	trucks []*Truck
	parked map[int]*ParkedTruck
	tick   uint64
	events []Event
	mu     sync.Mutex
}

// NewSimulation creates an empty yard over lay
func NewSimulation(lay *layout.Layout, motion MotionConfig) (*Simulation, error) {
	if lay == nil {
		return nil, fmt.Errorf("layout cannot be nil")
	}
	if err := motion.Validate(); err != nil {
		return nil, err
	}

	return &Simulation{
		layout: lay,
		motion: motion,
		parked: make(map[int]*ParkedTruck),
	}, nil
}

// NewSimulationFromConfig validates config, builds its layout and returns an
// empty yard
func NewSimulationFromConfig(config *YardConfig) (*Simulation, error) {
	if err := ValidateYardConfig(config); err != nil {
		return nil, err
	}

	lay, err := layout.NewLayout(&config.ZoneConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build layout: %w", err)
	}

	return NewSimulation(lay, config.ResolvedMotion())
}

// Layout returns the yard layout
func (s *Simulation) Layout() *layout.Layout {
	return s.layout
}

// Motion returns the motion tuning
func (s *Simulation) Motion() MotionConfig {
	return s.motion
}

// CurrentTick returns the number of ticks run so far
func (s *Simulation) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

type spawnOptions struct {
	trailerID  string
	truckPlate string
	filter     SlotFilter
	slotID     int
}

// SpawnOption customizes Spawn
type SpawnOption func(*spawnOptions)

// WithTrailerID sets the trailer plate shown on the truck
func WithTrailerID(id string) SpawnOption {
	return func(o *spawnOptions) { o.trailerID = id }
}

// WithTruckPlate sets the tractor plate shown on the truck
func WithTruckPlate(plate string) SpawnOption {
	return func(o *spawnOptions) { o.truckPlate = plate }
}

// WithKinds restricts allocation to slots of the given kinds
func WithKinds(kinds ...layout.Kind) SpawnOption {
	return func(o *spawnOptions) { o.filter.Kinds = kinds }
}

// WithAreas restricts allocation to slots in the given areas
func WithAreas(areas ...layout.Area) SpawnOption {
	return func(o *spawnOptions) { o.filter.Areas = areas }
}

// WithSlot requests a specific slot. Spawn fails if it is taken.
func WithSlot(id int) SpawnOption {
	return func(o *spawnOptions) { o.slotID = id }
}

// Spawn checks a truck in at the gate for shipment a and reserves a slot for
// it. When no slot is free it returns ErrNoSlotAvailable and changes nothing.
func (s *Simulation) Spawn(a asn.ASN, opts ...SpawnOption) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}

	o := spawnOptions{filter: FilterForASN(a)}
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.containerPresent(a.ContainerNumber) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateContainer, a.ContainerNumber)
	}

	reserved := s.reservedSlots()

	var slot layout.Slot
	switch {
	case o.slotID != 0:
		requested, ok := s.layout.Slot(o.slotID)
		if !ok {
			return "", fmt.Errorf("%w: %d", ErrUnknownSlot, o.slotID)
		}
		if reserved[requested.ID] {
			return "", fmt.Errorf("%w: %d", ErrSlotReserved, requested.ID)
		}
		slot = requested
	default:
		if preferred, ok := s.layout.Slot(a.LocationID); ok && !reserved[preferred.ID] && o.filter.Match(preferred) {
			slot = preferred
			break
		}
		free, ok := Allocate(s.layout.Slots(), reserved, o.filter)
		if !ok {
			return "", ErrNoSlotAvailable
		}
		slot = free
	}

	trailer := o.trailerID
	if trailer == "" {
		trailer = a.ContainerNumber
	}

	t := &Truck{
		ID:              uuid.NewString(),
		ContainerNumber: a.ContainerNumber,
		TrailerID:       trailer,
		TruckPlate:      o.truckPlate,
		ASN:             a,
		TargetSlotID:    slot.ID,
		Pose:            Pose{X: s.layout.Gate.X, Y: s.layout.Gate.Y},
		SpawnedAt:       s.tick,
		state:           &atGate{},
	}
	s.trucks = append(s.trucks, t)
	s.emit(t, EventSpawned, fmt.Sprintf("%s assigned to slot %d", t.ContainerNumber, slot.ID))

	return t.ID, nil
}

// Tick advances every in-flight truck by one step
func (s *Simulation) Tick() TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := TickReport{Ticks: 1}
	report.NewlyParked = s.tickLocked()
	report.Tick = s.tick
	report.InFlight = len(s.trucks)
	return report
}

// Advance runs n ticks. The lock is released between ticks so other calls
// may interleave.
func (s *Simulation) Advance(n int) TickReport {
	report := TickReport{}
	for i := 0; i < n; i++ {
		r := s.Tick()
		report.Ticks++
		report.Tick = r.Tick
		report.InFlight = r.InFlight
		report.NewlyParked = append(report.NewlyParked, r.NewlyParked...)
	}
	if n <= 0 {
		report.Tick = s.CurrentTick()
		report.InFlight = len(s.InFlight())
	}
	return report
}

func (s *Simulation) tickLocked() []ParkedTruck {
	s.tick++

	var done []ParkedTruck
	remaining := s.trucks[:0]

	for _, t := range s.trucks {
		before := t.Phase()
		t.state = t.state.advance(t, s)
		after := t.Phase()

		if after != before {
			t.phaseTicks = 0
			t.stalled = false
			s.emit(t, EventPhaseChanged, fmt.Sprintf("%s -> %s", before, after))
		} else {
			t.phaseTicks++
			s.checkStall(t)
		}

		if after == PhaseParked {
			p := s.commitParked(t)
			done = append(done, p)
			continue
		}
		remaining = append(remaining, t)
	}

	for i := len(remaining); i < len(s.trucks); i++ {
		s.trucks[i] = nil
	}
	s.trucks = remaining

	return done
}

// checkStall flags a truck that has spent too long in one motion phase
func (s *Simulation) checkStall(t *Truck) {
	if s.motion.MaxPhaseTicks <= 0 || t.stalled || !t.Phase().isMotion() {
		return
	}
	if t.phaseTicks <= s.motion.MaxPhaseTicks {
		return
	}
	t.stalled = true
	s.emit(t, EventStalled, fmt.Sprintf("no progress in %s for %d ticks", t.Phase(), t.phaseTicks))
}

func (s *Simulation) commitParked(t *Truck) ParkedTruck {
	slot := s.layout.MustSlot(t.TargetSlotID)
	p := &ParkedTruck{
		SlotID:          slot.ID,
		TruckID:         t.ID,
		ContainerNumber: t.ContainerNumber,
		TrailerID:       t.TrailerID,
		TruckPlate:      t.TruckPlate,
		ASN:             t.ASN,
		Area:            slot.Area,
		Kind:            slot.Kind,
		Pose:            t.Pose,
		ParkedAt:        s.tick,
		SpawnedAt:       t.SpawnedAt,
	}
	s.parked[slot.ID] = p
	s.emit(t, EventParked, fmt.Sprintf("%s parked in slot %d", t.ContainerNumber, slot.ID))
	return *p
}

// CheckOut removes the container's truck from the yard, whatever its phase,
// and frees its slot
func (s *Simulation) CheckOut(containerNumber string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.trucks {
		if !strings.EqualFold(t.ContainerNumber, containerNumber) {
			continue
		}
		s.trucks = append(s.trucks[:i], s.trucks[i+1:]...)
		s.emit(t, EventCheckedOut, fmt.Sprintf("%s left during %s", t.ContainerNumber, t.Phase()))
		return t.TargetSlotID, nil
	}

	for slotID, p := range s.parked {
		if !strings.EqualFold(p.ContainerNumber, containerNumber) {
			continue
		}
		delete(s.parked, slotID)
		s.pushEvent(Event{
			Type:            EventCheckedOut,
			Tick:            s.tick,
			TruckID:         p.TruckID,
			ContainerNumber: p.ContainerNumber,
			SlotID:          slotID,
			Phase:           PhaseParked,
			Message:         fmt.Sprintf("%s left slot %d", p.ContainerNumber, slotID),
		})
		return slotID, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrContainerNotFound, containerNumber)
}

// Reassign moves an in-flight truck's reservation to slotID. It is allowed
// until the truck starts approaching its slot; from approaching on it returns
// false without changing anything, whatever slotID is.
func (s *Simulation) Reassign(truckID string, slotID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.findTruck(truckID)
	if t == nil {
		for _, p := range s.parked {
			if p.TruckID == truckID {
				return false, nil
			}
		}
		return false, fmt.Errorf("%w: %s", ErrTruckNotFound, truckID)
	}

	if t.Phase() > PhaseMoving {
		return false, nil
	}

	slot, ok := s.layout.Slot(slotID)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownSlot, slotID)
	}
	if slot.ID == t.TargetSlotID {
		return true, nil
	}
	if s.reservedSlots()[slot.ID] {
		return false, fmt.Errorf("%w: %d", ErrSlotReserved, slot.ID)
	}

	from := t.TargetSlotID
	t.TargetSlotID = slot.ID
	switch t.Phase() {
	case PhaseMovingToLane:
		t.state = s.enterMovingToLane(t)
	case PhaseMoving:
		t.state = s.replanMoving(t)
	}
	s.emit(t, EventReassigned, fmt.Sprintf("slot %d -> %d", from, slot.ID))

	return true, nil
}

// HasContainer reports whether containerNumber is in the yard, in flight or
// parked. Container numbers compare case-insensitively.
func (s *Simulation) HasContainer(containerNumber string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.containerPresent(containerNumber)
}

// Allocate reports which slot the next spawn matching filter would receive
func (s *Simulation) Allocate(filter SlotFilter) (layout.Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Allocate(s.layout.Slots(), s.reservedSlots(), filter)
}

// Truck returns a snapshot of an in-flight truck
func (s *Simulation) Truck(id string) (TruckView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.findTruck(id); t != nil {
		return t.View(), true
	}
	return TruckView{}, false
}

// InFlight returns snapshots of the trucks still maneuvering, in spawn order
func (s *Simulation) InFlight() []TruckView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlightLocked()
}

// Parked returns the parked trucks ordered by slot id
func (s *Simulation) Parked() []ParkedTruck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parkedLocked()
}

// Frame returns the render snapshot of the current tick
func (s *Simulation) Frame() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservedBy := make(map[int]string, len(s.trucks))
	for _, t := range s.trucks {
		reservedBy[t.TargetSlotID] = t.ContainerNumber
	}

	slots := s.layout.Slots()
	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		v := SlotView{Slot: slot}
		if p, ok := s.parked[slot.ID]; ok {
			v.Occupied = true
			v.ContainerNumber = p.ContainerNumber
		} else if c, ok := reservedBy[slot.ID]; ok {
			v.Reserved = true
			v.ContainerNumber = c
		}
		views = append(views, v)
	}

	return &Frame{
		Tick:      s.tick,
		Zone:      s.layout.Name,
		Canvas:    s.layout.Canvas,
		Gate:      s.layout.Gate,
		SafeZoneY: s.layout.SafeZoneY,
		Obstacle:  s.layout.Obstacle,
		Slots:     views,
		Trucks:    s.inFlightLocked(),
		Parked:    s.parkedLocked(),
	}
}

// Statistics summarizes occupancy and container states
func (s *Simulation) Statistics() *Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &Statistics{
		Tick:       s.tick,
		TotalSlots: s.layout.Len(),
		InFlight:   len(s.trucks),
		ByArea:     make(map[layout.Area]AreaStatistics),
		ByPhase:    make(map[string]int),
	}

	for _, slot := range s.layout.Slots() {
		a := stats.ByArea[slot.Area]
		a.Total++
		stats.ByArea[slot.Area] = a
	}

	count := func(status asn.ContainerStatus) {
		switch status {
		case asn.StatusFull:
			stats.FullContainers++
		case asn.StatusEmpty:
			stats.EmptyContainers++
		case asn.StatusLoading:
			stats.LoadingContainers++
		case asn.StatusUnloading:
			stats.UnloadingContainers++
		}
	}

	for _, p := range s.parked {
		stats.OccupiedSlots++
		a := stats.ByArea[p.Area]
		a.Occupied++
		stats.ByArea[p.Area] = a
		stats.ByPhase[PhaseParked.String()]++
		count(p.ASN.Status)
	}

	for _, t := range s.trucks {
		stats.ReservedSlots++
		slot := s.layout.MustSlot(t.TargetSlotID)
		a := stats.ByArea[slot.Area]
		a.Reserved++
		stats.ByArea[slot.Area] = a
		stats.ByPhase[t.Phase().String()]++
		if t.stalled {
			stats.StalledTrucks++
		}
		count(t.ASN.Status)
	}

	stats.EmptySlots = stats.TotalSlots - stats.OccupiedSlots - stats.ReservedSlots
	return stats
}

// DrainEvents returns and clears the pending events
func (s *Simulation) DrainEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.events
	s.events = nil
	return events
}

func (s *Simulation) findTruck(id string) *Truck {
	for _, t := range s.trucks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Simulation) containerPresent(containerNumber string) bool {
	for _, t := range s.trucks {
		if strings.EqualFold(t.ContainerNumber, containerNumber) {
			return true
		}
	}
	for _, p := range s.parked {
		if strings.EqualFold(p.ContainerNumber, containerNumber) {
			return true
		}
	}
	return false
}

// reservedSlots is the union of in-flight targets and parked slots. It is
// rebuilt from the truck lists on every call.
func (s *Simulation) reservedSlots() map[int]bool {
	reserved := make(map[int]bool, len(s.trucks)+len(s.parked))
	for _, t := range s.trucks {
		reserved[t.TargetSlotID] = true
	}
	for id := range s.parked {
		reserved[id] = true
	}
	return reserved
}

func (s *Simulation) inFlightLocked() []TruckView {
	views := make([]TruckView, 0, len(s.trucks))
	for _, t := range s.trucks {
		views = append(views, t.View())
	}
	return views
}

func (s *Simulation) parkedLocked() []ParkedTruck {
	out := make([]ParkedTruck, 0, len(s.parked))
	for _, p := range s.parked {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotID < out[j].SlotID })
	return out
}

func (s *Simulation) emit(t *Truck, typ EventType, message string) {
	s.pushEvent(Event{
		Type:            typ,
		Tick:            s.tick,
		TruckID:         t.ID,
		ContainerNumber: t.ContainerNumber,
		SlotID:          t.TargetSlotID,
		Phase:           t.Phase(),
		Message:         message,
	})
}

func (s *Simulation) pushEvent(e Event) {
	if len(s.events) >= MaxPendingEvents {
		s.events = s.events[1:]
	}
	s.events = append(s.events, e)
}
