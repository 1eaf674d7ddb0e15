package engine

import (
	"math"

	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

const routeEpsilon = 1e-6

// stepToward moves pose toward target by at most speed pixels. When the
// remaining distance is below speed the pose snaps onto the target and the
// call reports arrival. With face set the rotation follows the direction of
// travel.
func stepToward(pose *Pose, target layout.Point, speed float64, face bool) bool {
	dx := target.X - pose.X
	dy := target.Y - pose.Y
	dist := math.Hypot(dx, dy)

	if face && dist > routeEpsilon {
		pose.Rotation = headingOf(dx, dy)
	}

	if dist < speed {
		pose.X, pose.Y = target.X, target.Y
		return true
	}

	pose.X += dx / dist * speed
	pose.Y += dy / dist * speed
	return false
}

// obstacleZone returns the obstacle grown by the configured clearance
func (s *Simulation) obstacleZone() (layout.Rect, bool) {
	if s.layout.Obstacle == nil {
		return layout.Rect{}, false
	}
	return s.layout.Obstacle.Expand(s.motion.ObstacleClearance), true
}

// planRoute computes the waypoints that take a truck from its position to
// the entry point of slot's lane. Trucks first return to the safe line, run
// along it and then turn toward the lane. When that last leg would cut
// through the obstacle the truck climbs along the nearer obstacle side
// instead and the lane is reached with a final sideways leg.
func (s *Simulation) planRoute(from layout.Point, slot layout.Slot) []layout.Point {
	safeY := s.layout.SafeZoneY
	lane := slot.Lane(s.motion.LaneOffset)

	var route []layout.Point
	if math.Abs(from.Y-safeY) > routeEpsilon {
		route = append(route, layout.Point{X: from.X, Y: safeY})
	}

	entry := layout.Point{X: lane.X, Y: safeY}
	zone, ok := s.obstacleZone()
	if !ok || !zone.SegmentCrosses(entry, lane) {
		return append(route, entry)
	}

	left := zone.X
	right := zone.X + zone.Width
	sideX := left
	if math.Abs(lane.X-right) < math.Abs(lane.X-left) {
		sideX = right
	}

	return append(route,
		layout.Point{X: sideX, Y: safeY},
		layout.Point{X: sideX, Y: lane.Y},
	)
}
