package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// Body is a vessel's rigid-body state.
type Body struct {
	ID           VesselID
	Name         string
	Team         string
	Position     r3.Vec
	Velocity     r3.Vec
	Acceleration r3.Vec
	Radius       float64 // bounding sphere around all parts
}

// ShapeKind selects a part collider's geometry.
type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
)

// Part is one collider on a vessel.
type Part struct {
	ID             PartID
	Name           string
	Shape          ShapeKind
	Offset         mgl64.Vec3 // body frame
	Radius         float64
	HalfExtents    mgl64.Vec3
	Rotation       mgl64.Quat
	EVA            bool
	Ignored        bool
	CrashTolerance float64
	HP             float64
	MaxHP          float64
	Burning        bool
	Destroyed      bool
	Armor          Armor
}

// Hull holds a vessel's parts.
type Hull struct {
	Parts []Part
}
