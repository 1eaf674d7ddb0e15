package engine

import "github.com/wricardo/mcp-training/yardsim/game/layout"

// phaseState is the per-phase payload of a truck. Each phase computes what it
// needs when it is entered and advance returns either itself or the next phase.
type phaseState interface {
	Phase() Phase
	advance(t *Truck, s *Simulation) phaseState
}

// atGate holds the truck at the gate while the driver checks in
type atGate struct {
	waited int
}

func (g *atGate) Phase() Phase { return PhaseAtGate }

func (g *atGate) advance(t *Truck, s *Simulation) phaseState {
	g.waited++
	if g.waited < s.motion.GateWait() {
		return g
	}
	return &entering{target: layout.Point{X: s.layout.Gate.X, Y: s.layout.SafeZoneY}}
}

// entering drives straight from the gate onto the safe line
type entering struct {
	target layout.Point
}

func (e *entering) Phase() Phase { return PhaseEntering }

func (e *entering) advance(t *Truck, s *Simulation) phaseState {
	if !stepToward(&t.Pose, e.target, s.motion.Speed, true) {
		return e
	}
	return s.enterMovingToLane(t)
}

// movingToLane follows the route planned toward the target lane
type movingToLane struct {
	route []layout.Point
	next  int
}

func (m *movingToLane) Phase() Phase { return PhaseMovingToLane }

func (m *movingToLane) advance(t *Truck, s *Simulation) phaseState {
	if !stepToward(&t.Pose, m.route[m.next], s.motion.Speed, true) {
		return m
	}
	m.next++
	if m.next < len(m.route) {
		return m
	}
	slot := s.layout.MustSlot(t.TargetSlotID)
	return &moving{lane: slot.Lane(s.motion.LaneOffset)}
}

// moving drives from the last waypoint onto the lane in front of the slot.
// A reassignment while moving leaves a detour route to follow first.
type moving struct {
	detour []layout.Point
	next   int
	lane   layout.Point
}

func (m *moving) Phase() Phase { return PhaseMoving }

func (m *moving) advance(t *Truck, s *Simulation) phaseState {
	if m.next < len(m.detour) {
		if stepToward(&t.Pose, m.detour[m.next], s.motion.Speed, true) {
			m.next++
		}
		return m
	}
	if !stepToward(&t.Pose, m.lane, s.motion.Speed, true) {
		return m
	}
	slot := s.layout.MustSlot(t.TargetSlotID)
	return &approaching{
		from:  t.Pose.Rotation,
		to:    slot.Heading(),
		total: s.motion.TurnTicks,
	}
}

// approaching turns the truck in place to its docked heading
type approaching struct {
	from, to float64
	elapsed  int
	total    int
}

func (a *approaching) Phase() Phase { return PhaseApproaching }

func (a *approaching) advance(t *Truck, s *Simulation) phaseState {
	a.elapsed++
	if a.elapsed < a.total {
		t.Pose.Rotation = lerpAngle(a.from, a.to, float64(a.elapsed)/float64(a.total))
		return a
	}
	t.Pose.Rotation = a.to
	slot := s.layout.MustSlot(t.TargetSlotID)
	return &backing{dest: slot.Center(), heading: a.to}
}

// backing reverses into the slot with the heading locked
type backing struct {
	dest    layout.Point
	heading float64
}

func (b *backing) Phase() Phase { return PhaseBacking }

func (b *backing) advance(t *Truck, s *Simulation) phaseState {
	t.Pose.Rotation = b.heading
	if !stepToward(&t.Pose, b.dest, s.motion.Speed, false) {
		return b
	}
	t.Pose = Pose{X: b.dest.X, Y: b.dest.Y, Rotation: b.heading}
	return parked{}
}

// parked is terminal
type parked struct{}

func (parked) Phase() Phase { return PhaseParked }

func (p parked) advance(*Truck, *Simulation) phaseState { return p }

// enterMovingToLane plans a fresh route from the truck's current position
func (s *Simulation) enterMovingToLane(t *Truck) phaseState {
	slot := s.layout.MustSlot(t.TargetSlotID)
	return &movingToLane{route: s.planRoute(t.Pose.Point(), slot)}
}

// replanMoving points a truck that is already moving at its new lane. The
// route back over the safe line keeps the obstacle detour and the phase.
func (s *Simulation) replanMoving(t *Truck) phaseState {
	slot := s.layout.MustSlot(t.TargetSlotID)
	return &moving{
		detour: s.planRoute(t.Pose.Point(), slot),
		lane:   slot.Lane(s.motion.LaneOffset),
	}
}
