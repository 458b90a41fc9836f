package world

import "math"

// Vec2i is a cell coordinate on the survey plane.
type Vec2i struct {
	X int `json:"x"`
	Z int `json:"z"`
}

func (v Vec2i) Dist(o Vec2i) float64 {
	dx := float64(v.X - o.X)
	dz := float64(v.Z - o.Z)
	return math.Sqrt(dx*dx + dz*dz)
}

// Rect is an inclusive cell bound.
type Rect struct {
	Min Vec2i
	Max Vec2i
}

func (r Rect) Contains(c Vec2i) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X && c.Z >= r.Min.Z && c.Z <= r.Max.Z
}

func (r Rect) Area() int {
	return (r.Max.X - r.Min.X + 1) * (r.Max.Z - r.Min.Z + 1)
}
