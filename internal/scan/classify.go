package scan

import (
	"github.com/philipparndt/goroom/pkg/geometry"
)

// Class is the architectural bucket of a detected plane
type Class int

const (
	ClassFloor Class = iota
	ClassWall
	ClassCeiling
)

// String returns "floor", "wall" or "ceiling"
func (c Class) String() string {
	switch c {
	case ClassFloor:
		return "floor"
	case ClassCeiling:
		return "ceiling"
	default:
		return "wall"
	}
}

// Classify buckets a world normal by its up component: steeper than the
// threshold is floor (pointing up) or ceiling (pointing down), anything else a wall
func Classify(normal geometry.Vector3, threshold float64) Class {
	up := normal.Normalize().Y
	switch {
	case up > threshold:
		return ClassFloor
	case up < -threshold:
		return ClassCeiling
	default:
		return ClassWall
	}
}

// PlaneNormal returns the world normal of a plane pose (its local +Y)
func PlaneNormal(pose geometry.Pose) geometry.Vector3 {
	return pose.Up().Normalize()
}
