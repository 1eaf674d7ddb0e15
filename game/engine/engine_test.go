package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/yardsim/game/asn"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

func createTestZone(count int) *layout.ZoneConfig {
	return &layout.ZoneConfig{
		Name:        "test",
		Description: "Single row of bays for engine tests",
		Canvas:      layout.Size{Width: 600, Height: 400},
		Gate:        layout.Point{X: 10, Y: 390},
		SafeZoneY:   250,
		Areas: []layout.AreaSpec{
			{Area: layout.Top, Origin: layout.Point{X: 50, Y: 10}, SlotWidth: 40, SlotHeight: 60, Gap: 10, Count: count},
		},
	}
}

func testMotion() MotionConfig {
	return MotionConfig{
		Speed:             5,
		GateWaitTicks:     3,
		TurnTicks:         4,
		LaneOffset:        10,
		ObstacleClearance: 5,
		MaxPhaseTicks:     StallCheckDisabled,
	}
}

func createTestSimulation(t *testing.T, count int) *Simulation {
	t.Helper()
	lay, err := layout.NewLayout(createTestZone(count))
	if err != nil {
		t.Fatalf("Failed to build layout: %v", err)
	}
	sim, err := NewSimulation(lay, testMotion())
	if err != nil {
		t.Fatalf("Failed to create simulation: %v", err)
	}
	return sim
}

func shipment(container string) asn.ASN {
	return asn.ASN{
		ASNNumber:       "ASN-" + container,
		Type:            asn.Inbound,
		ContainerNumber: container,
		Status:          asn.StatusFull,
	}
}

// runUntil ticks until done returns true or the budget runs out
func runUntil(t *testing.T, sim *Simulation, budget int, done func() bool) int {
	t.Helper()
	for i := 0; i < budget; i++ {
		if done() {
			return i
		}
		sim.Tick()
	}
	if !done() {
		t.Fatalf("Condition not reached within %d ticks", budget)
	}
	return budget
}

func phaseOf(sim *Simulation, id string) (Phase, bool) {
	v, ok := sim.Truck(id)
	if !ok {
		return PhaseParked, false
	}
	return v.Phase, true
}

func TestNewSimulation(t *testing.T) {
	lay, err := layout.NewLayout(createTestZone(3))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewSimulation(nil, testMotion()); err == nil {
		t.Error("Expected error for nil layout")
	}

	bad := testMotion()
	bad.Speed = 0
	if _, err := NewSimulation(lay, bad); err == nil {
		t.Error("Expected error for zero speed")
	}

	sim, err := NewSimulation(lay, testMotion())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sim.CurrentTick() != 0 {
		t.Errorf("Expected tick 0, got %d", sim.CurrentTick())
	}
	if len(sim.InFlight()) != 0 || len(sim.Parked()) != 0 {
		t.Error("Expected an empty yard")
	}
}

func TestSpawnAllocatesLowestFreeSlot(t *testing.T) {
	sim := createTestSimulation(t, 3)

	for i, want := range []int{1, 2, 3} {
		id, err := sim.Spawn(shipment(fmt.Sprintf("C%d", i)))
		if err != nil {
			t.Fatalf("Spawn %d failed: %v", i, err)
		}
		truck, ok := sim.Truck(id)
		if !ok {
			t.Fatalf("Expected truck %s to be in flight", id)
		}
		if truck.TargetSlotID != want {
			t.Errorf("Expected slot %d, got %d", want, truck.TargetSlotID)
		}
		if truck.Phase != PhaseAtGate {
			t.Errorf("Expected at_gate, got %s", truck.Phase)
		}
	}
}

func TestSpawnNoSlotAvailableIsNoop(t *testing.T) {
	sim := createTestSimulation(t, 2)

	for _, c := range []string{"A", "B"} {
		if _, err := sim.Spawn(shipment(c)); err != nil {
			t.Fatalf("Spawn %s failed: %v", c, err)
		}
	}
	sim.DrainEvents()
	before := sim.Frame()

	_, err := sim.Spawn(shipment("C"))
	if !errors.Is(err, ErrNoSlotAvailable) {
		t.Fatalf("Expected ErrNoSlotAvailable, got %v", err)
	}

	after := sim.Frame()
	if len(after.Trucks) != len(before.Trucks) {
		t.Errorf("Expected %d trucks, got %d", len(before.Trucks), len(after.Trucks))
	}
	for i := range after.Slots {
		if after.Slots[i].Reserved != before.Slots[i].Reserved || after.Slots[i].Occupied != before.Slots[i].Occupied {
			t.Errorf("Slot %d changed after failed spawn", after.Slots[i].ID)
		}
	}
	if events := sim.DrainEvents(); len(events) != 0 {
		t.Errorf("Expected no events after failed spawn, got %d", len(events))
	}
}

func TestSpawnValidation(t *testing.T) {
	sim := createTestSimulation(t, 3)

	if _, err := sim.Spawn(asn.ASN{}); !errors.Is(err, asn.ErrInvalidASN) {
		t.Errorf("Expected ErrInvalidASN, got %v", err)
	}

	if _, err := sim.Spawn(shipment("DUP")); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Spawn(shipment("dup")); !errors.Is(err, ErrDuplicateContainer) {
		t.Errorf("Expected ErrDuplicateContainer, got %v", err)
	}

	if _, err := sim.Spawn(shipment("X"), WithSlot(99)); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("Expected ErrUnknownSlot, got %v", err)
	}
	if _, err := sim.Spawn(shipment("Y"), WithSlot(1)); !errors.Is(err, ErrSlotReserved) {
		t.Errorf("Expected ErrSlotReserved, got %v", err)
	}

	id, err := sim.Spawn(shipment("Z"), WithSlot(3), WithTrailerID("TR-9"), WithTruckPlate("51C-123"))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := sim.Truck(id)
	if v.TargetSlotID != 3 || v.TrailerID != "TR-9" || v.TruckPlate != "51C-123" {
		t.Errorf("Unexpected truck %+v", v)
	}
}

func TestSpawnRespectsKindAndPreferredLocation(t *testing.T) {
	sim, err := NewSimulationFromConfig(NewYardConfig(layout.FactoryB()))
	if err != nil {
		t.Fatal(err)
	}

	door := shipment("DOOR-1")
	door.LocationType = asn.LocationDoor
	id, err := sim.Spawn(door)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := sim.Truck(id); v.TargetSlotID != 415 {
		t.Errorf("Expected dock door 415, got %d", v.TargetSlotID)
	}

	preferred := shipment("PREF-1")
	preferred.LocationID = 4
	id, err = sim.Spawn(preferred)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := sim.Truck(id); v.TargetSlotID != 4 {
		t.Errorf("Expected preferred slot 4, got %d", v.TargetSlotID)
	}

	id, err = sim.Spawn(shipment("ANY-1"), WithKinds(layout.KindYard))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := sim.Truck(id); v.TargetSlotID != 1 {
		t.Errorf("Expected slot 1, got %d", v.TargetSlotID)
	}
}

func TestTruckReachesParked(t *testing.T) {
	sim := createTestSimulation(t, 3)

	id, err := sim.Spawn(shipment("A"))
	if err != nil {
		t.Fatal(err)
	}

	last := PhaseAtGate
	seen := map[Phase]bool{}
	for i := 0; i < 1000; i++ {
		phase, inFlight := phaseOf(sim, id)
		if !inFlight {
			break
		}
		if phase < last {
			t.Fatalf("Phase went backwards from %s to %s", last, phase)
		}
		if phase > last+1 {
			t.Fatalf("Phase skipped from %s to %s", last, phase)
		}
		seen[phase] = true
		last = phase
		sim.Tick()
	}

	for p := PhaseAtGate; p < PhaseParked; p++ {
		if !seen[p] {
			t.Errorf("Expected truck to pass through %s", p)
		}
	}

	parked := sim.Parked()
	if len(parked) != 1 {
		t.Fatalf("Expected 1 parked truck, got %d", len(parked))
	}
	p := parked[0]
	if p.SlotID != 1 || p.X != 70 || p.Y != 40 {
		t.Errorf("Expected slot 1 at (70,40), got slot %d at (%v,%v)", p.SlotID, p.X, p.Y)
	}
	if p.Rotation != math.Pi {
		t.Errorf("Expected rotation π, got %v", p.Rotation)
	}
}

func TestGateWait(t *testing.T) {
	sim := createTestSimulation(t, 1)
	id, _ := sim.Spawn(shipment("A"))

	for i := 0; i < 2; i++ {
		sim.Tick()
		v, _ := sim.Truck(id)
		if v.Phase != PhaseAtGate {
			t.Fatalf("Expected at_gate after %d ticks, got %s", i+1, v.Phase)
		}
		if v.WaitTimer != i+1 {
			t.Errorf("Expected wait timer %d, got %d", i+1, v.WaitTimer)
		}
		if v.X != 10 || v.Y != 390 {
			t.Errorf("Expected truck to stay at gate, got (%v,%v)", v.X, v.Y)
		}
	}

	sim.Tick()
	if phase, _ := phaseOf(sim, id); phase != PhaseEntering {
		t.Errorf("Expected entering after gate wait, got %s", phase)
	}
}

func TestCheckOutDuringBackingFreesSlot(t *testing.T) {
	sim := createTestSimulation(t, 3)

	a, err := sim.Spawn(shipment("A"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Spawn(shipment("B")); err != nil {
		t.Fatal(err)
	}

	runUntil(t, sim, 1000, func() bool {
		phase, _ := phaseOf(sim, a)
		return phase == PhaseBacking
	})

	slot, err := sim.CheckOut("A")
	if err != nil {
		t.Fatalf("Check out failed: %v", err)
	}
	if slot != 1 {
		t.Errorf("Expected slot 1 to be freed, got %d", slot)
	}
	if _, ok := sim.Truck(a); ok {
		t.Error("Expected truck A to be gone")
	}

	c, err := sim.Spawn(shipment("C"))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := sim.Truck(c); v.TargetSlotID != 1 {
		t.Errorf("Expected C to receive slot 1, got %d", v.TargetSlotID)
	}
}

func TestCheckOutParked(t *testing.T) {
	sim := createTestSimulation(t, 2)
	if _, err := sim.Spawn(shipment("A")); err != nil {
		t.Fatal(err)
	}
	runUntil(t, sim, 1000, func() bool { return len(sim.Parked()) == 1 })

	if _, err := sim.Spawn(shipment("A")); !errors.Is(err, ErrDuplicateContainer) {
		t.Errorf("Expected parked container to block respawn, got %v", err)
	}

	slot, err := sim.CheckOut("a")
	if err != nil {
		t.Fatalf("Check out failed: %v", err)
	}
	if slot != 1 {
		t.Errorf("Expected slot 1, got %d", slot)
	}
	if len(sim.Parked()) != 0 {
		t.Error("Expected no parked trucks")
	}

	if _, err := sim.CheckOut("A"); !errors.Is(err, ErrContainerNotFound) {
		t.Errorf("Expected ErrContainerNotFound, got %v", err)
	}
}

func TestReassign(t *testing.T) {
	sim := createTestSimulation(t, 4)

	a, _ := sim.Spawn(shipment("A"))
	b, _ := sim.Spawn(shipment("B"))

	ok, err := sim.Reassign(a, 2)
	if ok || !errors.Is(err, ErrSlotReserved) {
		t.Errorf("Expected reserved slot to be rejected, got %v %v", ok, err)
	}

	if _, err := sim.Reassign(a, 42); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("Expected ErrUnknownSlot, got %v", err)
	}
	if _, err := sim.Reassign("nope", 3); !errors.Is(err, ErrTruckNotFound) {
		t.Errorf("Expected ErrTruckNotFound, got %v", err)
	}

	ok, err = sim.Reassign(a, 4)
	if !ok || err != nil {
		t.Fatalf("Expected reassignment at gate to succeed, got %v %v", ok, err)
	}

	// slot 1 is free again
	c, _ := sim.Spawn(shipment("C"))
	if v, _ := sim.Truck(c); v.TargetSlotID != 1 {
		t.Errorf("Expected freed slot 1 for C, got %d", v.TargetSlotID)
	}

	runUntil(t, sim, 1000, func() bool {
		phase, _ := phaseOf(sim, b)
		return phase == PhaseApproaching
	})
	ok, err = sim.Reassign(b, 3)
	if ok || err != nil {
		t.Errorf("Expected reassignment during approaching to be refused, got %v %v", ok, err)
	}
	ok, err = sim.Reassign(b, 42)
	if ok || err != nil {
		t.Errorf("Expected closed window to ignore unknown slot, got %v %v", ok, err)
	}
	if v, _ := sim.Truck(b); v.TargetSlotID != 2 {
		t.Errorf("Expected B to keep slot 2, got %d", v.TargetSlotID)
	}

	runUntil(t, sim, 2000, func() bool { return len(sim.InFlight()) == 0 })
	ok, err = sim.Reassign(a, 3)
	if ok || err != nil {
		t.Errorf("Expected parked truck reassignment to be refused, got %v %v", ok, err)
	}

	for _, p := range sim.Parked() {
		if p.ContainerNumber == "A" && p.SlotID != 4 {
			t.Errorf("Expected A parked in slot 4, got %d", p.SlotID)
		}
	}
}

func TestReassignDuringMovingToLane(t *testing.T) {
	sim := createTestSimulation(t, 6)
	id, _ := sim.Spawn(shipment("A"))

	runUntil(t, sim, 1000, func() bool {
		phase, _ := phaseOf(sim, id)
		return phase == PhaseMovingToLane
	})
	sim.Tick()

	ok, err := sim.Reassign(id, 6)
	if !ok || err != nil {
		t.Fatalf("Expected reassignment to succeed, got %v %v", ok, err)
	}
	if phase, _ := phaseOf(sim, id); phase != PhaseMovingToLane {
		t.Errorf("Expected phase to stay moving_to_lane, got %s", phase)
	}

	runUntil(t, sim, 2000, func() bool { return len(sim.Parked()) == 1 })
	p := sim.Parked()[0]
	want := sim.Layout().MustSlot(6).Center()
	if p.SlotID != 6 || p.X != want.X || p.Y != want.Y {
		t.Errorf("Expected parked at slot 6 %+v, got slot %d (%v,%v)", want, p.SlotID, p.X, p.Y)
	}
}

func TestReassignDuringMoving(t *testing.T) {
	sim := createTestSimulation(t, 6)
	id, _ := sim.Spawn(shipment("A"))

	runUntil(t, sim, 1000, func() bool {
		phase, _ := phaseOf(sim, id)
		return phase == PhaseMoving
	})
	sim.Tick()
	sim.Tick()

	ok, err := sim.Reassign(id, 6)
	if !ok || err != nil {
		t.Fatalf("Expected reassignment while moving to succeed, got %v %v", ok, err)
	}
	v, _ := sim.Truck(id)
	if v.Phase != PhaseMoving {
		t.Errorf("Expected phase to stay moving, got %s", v.Phase)
	}
	if v.TargetSlotID != 6 {
		t.Errorf("Expected target slot 6, got %d", v.TargetSlotID)
	}

	// slot 1 is free for the next truck
	if slot, ok := sim.Allocate(SlotFilter{}); !ok || slot.ID != 1 {
		t.Errorf("Expected slot 1 to be free again, got %d %v", slot.ID, ok)
	}

	last := PhaseMoving
	runUntil(t, sim, 2000, func() bool {
		if phase, inFlight := phaseOf(sim, id); inFlight {
			if phase < last {
				t.Fatalf("Phase regressed from %s to %s", last, phase)
			}
			last = phase
		}
		return len(sim.Parked()) == 1
	})

	p := sim.Parked()[0]
	want := sim.Layout().MustSlot(6).Center()
	if p.SlotID != 6 || p.X != want.X || p.Y != want.Y {
		t.Errorf("Expected parked at slot 6 %+v, got slot %d (%v,%v)", want, p.SlotID, p.X, p.Y)
	}
}

func TestReassignDuringMovingAroundObstacle(t *testing.T) {
	zone := createTestZone(6)
	zone.Obstacle = &layout.Rect{X: 260, Y: 100, Width: 120, Height: 60}
	lay, err := layout.NewLayout(zone)
	if err != nil {
		t.Fatalf("Failed to build layout: %v", err)
	}
	sim, err := NewSimulation(lay, testMotion())
	if err != nil {
		t.Fatalf("Failed to create simulation: %v", err)
	}

	id, _ := sim.Spawn(shipment("A"))
	runUntil(t, sim, 1000, func() bool {
		phase, _ := phaseOf(sim, id)
		return phase == PhaseMoving
	})

	if ok, err := sim.Reassign(id, 6); !ok || err != nil {
		t.Fatalf("Expected reassignment to succeed, got %v %v", ok, err)
	}

	blocked := *lay.Obstacle
	runUntil(t, sim, 3000, func() bool {
		if v, ok := sim.Truck(id); ok && blocked.Contains(v.Point()) {
			t.Fatalf("Truck entered the obstacle at (%v,%v)", v.X, v.Y)
		}
		return len(sim.Parked()) == 1
	})
	if p := sim.Parked()[0]; p.SlotID != 6 {
		t.Errorf("Expected parked in slot 6, got %d", p.SlotID)
	}
}

func TestTerminalPoseEveryArea(t *testing.T) {
	sim, err := NewSimulationFromConfig(NewYardConfig(layout.Perimeter()))
	if err != nil {
		t.Fatal(err)
	}
	obstacle := *sim.Layout().Obstacle

	// slot 4 sits behind the warehouse and needs the side corridor
	spawns := []SpawnOption{
		WithAreas(layout.TopYard),
		WithAreas(layout.BottomYard),
		WithAreas(layout.Left),
		WithAreas(layout.Right),
		WithSlot(4),
	}
	for i, opt := range spawns {
		if _, err := sim.Spawn(shipment(fmt.Sprintf("P%d", i)), opt); err != nil {
			t.Fatalf("Spawn %d failed: %v", i, err)
		}
		sim.Advance(40)
	}

	for i := 0; i < 5000 && len(sim.InFlight()) > 0; i++ {
		sim.Tick()
		for _, tr := range sim.InFlight() {
			inside := tr.X > obstacle.X && tr.X < obstacle.X+obstacle.Width &&
				tr.Y > obstacle.Y && tr.Y < obstacle.Y+obstacle.Height
			if inside {
				t.Fatalf("Truck %s entered the obstacle at (%v,%v) during %s", tr.ContainerNumber, tr.X, tr.Y, tr.Phase)
			}
		}
	}

	parked := sim.Parked()
	if len(parked) != len(spawns) {
		t.Fatalf("Expected %d parked trucks, got %d", len(spawns), len(parked))
	}
	for _, p := range parked {
		slot := sim.Layout().MustSlot(p.SlotID)
		c := slot.Center()
		if p.X != c.X || p.Y != c.Y {
			t.Errorf("Slot %d (%s): expected centre %+v, got (%v,%v)", slot.ID, slot.Area, c, p.X, p.Y)
		}
		if p.Rotation != slot.Area.Heading() {
			t.Errorf("Slot %d (%s): expected rotation %v, got %v", slot.ID, slot.Area, slot.Area.Heading(), p.Rotation)
		}
	}
}

func TestLeftSlotParksFacingRight(t *testing.T) {
	sim, err := NewSimulationFromConfig(NewYardConfig(layout.Perimeter()))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sim.Spawn(shipment("L1"), WithAreas(layout.Left)); err != nil {
		t.Fatal(err)
	}
	runUntil(t, sim, 5000, func() bool { return len(sim.Parked()) == 1 })

	p := sim.Parked()[0]
	if p.Area != layout.Left {
		t.Fatalf("Expected left area, got %s", p.Area)
	}
	c := sim.Layout().MustSlot(p.SlotID).Center()
	if p.X != c.X || p.Y != c.Y {
		t.Errorf("Expected (%v,%v), got (%v,%v)", c.X, c.Y, p.X, p.Y)
	}
	if p.Rotation != math.Pi/2 {
		t.Errorf("Expected rotation π/2, got %v", p.Rotation)
	}
}

func TestExclusivityUnderChurn(t *testing.T) {
	sim := createTestSimulation(t, 5)

	next := 0
	for tick := 0; tick < 3000; tick++ {
		if tick%7 == 0 {
			if _, err := sim.Spawn(shipment(fmt.Sprintf("K%d", next))); err == nil {
				next++
			} else if !errors.Is(err, ErrNoSlotAvailable) {
				t.Fatalf("Unexpected spawn error: %v", err)
			}
		}
		if tick%23 == 0 && next > 0 {
			sim.CheckOut(fmt.Sprintf("K%d", (tick/23)%next))
		}
		sim.Tick()

		holders := map[int]string{}
		for _, tr := range sim.InFlight() {
			if other, taken := holders[tr.TargetSlotID]; taken {
				t.Fatalf("Slot %d held by %s and %s", tr.TargetSlotID, other, tr.ContainerNumber)
			}
			holders[tr.TargetSlotID] = tr.ContainerNumber
		}
		for _, p := range sim.Parked() {
			if other, taken := holders[p.SlotID]; taken {
				t.Fatalf("Slot %d held by %s and parked %s", p.SlotID, other, p.ContainerNumber)
			}
			holders[p.SlotID] = p.ContainerNumber
		}
	}
}

func TestStallDetection(t *testing.T) {
	lay, err := layout.NewLayout(createTestZone(1))
	if err != nil {
		t.Fatal(err)
	}
	motion := testMotion()
	motion.Speed = 0.001
	motion.GateWaitTicks = 0
	motion.MaxPhaseTicks = 5

	sim, err := NewSimulation(lay, motion)
	if err != nil {
		t.Fatal(err)
	}
	id, _ := sim.Spawn(shipment("SLOW"))
	sim.Advance(10)

	v, _ := sim.Truck(id)
	if !v.Stalled {
		t.Fatalf("Expected truck to be flagged stalled in %s after %d ticks", v.Phase, v.PhaseTicks)
	}

	stalls := 0
	for _, e := range sim.DrainEvents() {
		if e.Type == EventStalled {
			stalls++
		}
	}
	if stalls != 1 {
		t.Errorf("Expected exactly one stalled event, got %d", stalls)
	}
	if sim.Statistics().StalledTrucks != 1 {
		t.Error("Expected statistics to count the stalled truck")
	}
}

func TestFrameAndStatistics(t *testing.T) {
	sim := createTestSimulation(t, 3)

	full := shipment("F1")
	empty := shipment("E1")
	empty.Status = asn.StatusEmpty

	sim.Spawn(full)
	runUntil(t, sim, 1000, func() bool { return len(sim.Parked()) == 1 })
	sim.Spawn(empty)

	frame := sim.Frame()
	if frame.Zone != "test" {
		t.Errorf("Expected zone test, got %s", frame.Zone)
	}
	if len(frame.Slots) != 3 {
		t.Fatalf("Expected 3 slots, got %d", len(frame.Slots))
	}
	if !frame.Slots[0].Occupied || frame.Slots[0].ContainerNumber != "F1" {
		t.Errorf("Expected slot 1 occupied by F1, got %+v", frame.Slots[0])
	}
	if !frame.Slots[1].Reserved || frame.Slots[1].Occupied {
		t.Errorf("Expected slot 2 reserved, got %+v", frame.Slots[1])
	}
	if frame.Slots[2].Reserved || frame.Slots[2].Occupied {
		t.Errorf("Expected slot 3 free, got %+v", frame.Slots[2])
	}
	if len(frame.Trucks) != 1 || len(frame.Parked) != 1 {
		t.Errorf("Expected 1 truck and 1 parked, got %d and %d", len(frame.Trucks), len(frame.Parked))
	}

	stats := sim.Statistics()
	if stats.TotalSlots != 3 || stats.OccupiedSlots != 1 || stats.ReservedSlots != 1 || stats.EmptySlots != 1 {
		t.Errorf("Unexpected slot counts %+v", stats)
	}
	if stats.FullContainers != 1 || stats.EmptyContainers != 1 {
		t.Errorf("Expected 1 full and 1 empty container, got %d and %d", stats.FullContainers, stats.EmptyContainers)
	}
	if stats.ByArea[layout.Top].Total != 3 {
		t.Errorf("Expected 3 top slots, got %d", stats.ByArea[layout.Top].Total)
	}
	if stats.ByPhase["parked"] != 1 || stats.ByPhase["at_gate"] != 1 {
		t.Errorf("Unexpected phase counts %v", stats.ByPhase)
	}
}

func TestEvents(t *testing.T) {
	sim := createTestSimulation(t, 1)
	sim.Spawn(shipment("A"))
	runUntil(t, sim, 1000, func() bool { return len(sim.Parked()) == 1 })
	sim.CheckOut("A")

	counts := map[EventType]int{}
	for _, e := range sim.DrainEvents() {
		counts[e.Type]++
	}

	if counts[EventSpawned] != 1 || counts[EventParked] != 1 || counts[EventCheckedOut] != 1 {
		t.Errorf("Unexpected event counts %v", counts)
	}
	if counts[EventPhaseChanged] != int(PhaseParked) {
		t.Errorf("Expected %d phase changes, got %d", int(PhaseParked), counts[EventPhaseChanged])
	}
	if len(sim.DrainEvents()) != 0 {
		t.Error("Expected drain to clear events")
	}
}

func TestConcurrentAccess(t *testing.T) {
	sim := createTestSimulation(t, 10)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				container := fmt.Sprintf("G%d-%d", g, i)
				if _, err := sim.Spawn(shipment(container)); err == nil && i%3 == 0 {
					sim.CheckOut(container)
				}
				sim.Tick()
				sim.Frame()
			}
		}(g)
	}
	wg.Wait()

	stats := sim.Statistics()
	if stats.OccupiedSlots+stats.ReservedSlots > stats.TotalSlots {
		t.Errorf("More holders than slots: %+v", stats)
	}
}
