// Package engine runs the truck parking simulation of a container yard.
//
// The engine package implements:
//   - Slot reservation at check-in (lowest free slot id wins)
//   - The parking maneuver as a forward-only phase machine
//   - Check-out at any phase, freeing the slot immediately
//   - Per-tick render frames and occupancy statistics
//
// Core Types:
//
// Simulation owns a layout, the trucks still maneuvering and the parked
// trucks. Every truck holds exactly one reserved slot from spawn until it is
// checked out, so two trucks never share a slot. A truck moves through
//
//	at_gate -> entering -> moving_to_lane -> moving -> approaching -> backing -> parked
//
// and each phase carries only the data it computed when it was entered
// (route waypoints, lane position, turn progress).
//
// Usage:
//
//	sim, err := engine.NewSimulationFromConfig(engine.NewYardConfig(layout.FactoryA()))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	id, err := sim.Spawn(shipment)
//	if errors.Is(err, engine.ErrNoSlotAvailable) {
//		// yard is full
//	}
//
//	for range ticker.C {
//		sim.Tick()
//		render(sim.Frame())
//	}
//
// Geometry:
//
// Trucks leave the gate for a horizontal safe line below the central
// obstacle, run along it and turn toward the lane in front of their slot,
// climbing along the side of the obstacle when the direct leg would cut
// through it. At the lane they turn in place to the area's docked heading
// and reverse into the slot.
package engine
