// Package layout describes the static geometry of a container yard.
//
// A yard is split into areas (top, bottom, left, right, topYard, bottomYard).
// Each area is a row or column of equally sized bays described by an
// AreaSpec. Generate turns the specs into slots with sequential ids, and
// NewLayout wraps them in an immutable registry with an id index.
//
// Every area maps to exactly one docked heading and one approach direction,
// so a truck's final pose depends only on the slot it parks in:
//
//	left        +π/2  (lane to the right of the bay)
//	right       -π/2  (lane to the left of the bay)
//	top/topYard  π    (lane below the bay)
//	bottom/bottomYard 0 (lane above the bay)
//
// Usage:
//
//	lay, err := layout.NewLayout(layout.FactoryA())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	slot, ok := lay.Slot(415)
//	lane := slot.Lane(60)
package layout
