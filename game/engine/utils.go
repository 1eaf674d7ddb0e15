package engine

import "math"

// headingOf returns the rotation of a truck travelling along (dx, dy).
// Rotation 0 faces canvas-up (negative y) and angles grow clockwise.
func headingOf(dx, dy float64) float64 {
	return math.Atan2(dx, -dy)
}

// normalizeAngle maps a onto (-π, π]
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// lerpAngle interpolates from one heading to another along the shorter arc.
// t is clamped to [0, 1].
func lerpAngle(from, to, t float64) float64 {
	if t <= 0 {
		return from
	}
	if t >= 1 {
		return to
	}
	delta := normalizeAngle(to - from)
	return normalizeAngle(from + delta*t)
}
