package scene

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/ordnance/components"
)

type cellKey struct{ x, y, z int32 }

// Grid is a sparse spatial hash over vessel bounding spheres.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]components.VesselID
	seen     map[components.VesselID]struct{}
}

// NewGrid creates an empty grid with the given cell edge length.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 100
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]components.VesselID),
		seen:     make(map[components.VesselID]struct{}),
	}
}

// Clear removes all vessels while keeping cell allocations.
func (g *Grid) Clear() {
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
}

// Insert adds a vessel to every cell its bounding sphere touches.
func (g *Grid) Insert(id components.VesselID, center r3.Vec, radius float64) {
	lo := g.key(r3.Sub(center, r3.Vec{X: radius, Y: radius, Z: radius}))
	hi := g.key(r3.Add(center, r3.Vec{X: radius, Y: radius, Z: radius}))
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for z := lo.z; z <= hi.z; z++ {
				k := cellKey{x, y, z}
				g.cells[k] = append(g.cells[k], id)
			}
		}
	}
}

// QuerySphere appends the vessels in cells overlapping the sphere to dst, each
// once, in ascending ID order. Callers refine with exact distance checks.
func (g *Grid) QuerySphere(dst []components.VesselID, center r3.Vec, radius float64) []components.VesselID {
	clear(g.seen)
	start := len(dst)
	lo := g.key(r3.Sub(center, r3.Vec{X: radius, Y: radius, Z: radius}))
	hi := g.key(r3.Add(center, r3.Vec{X: radius, Y: radius, Z: radius}))

	// Large queries walk the occupied cells instead of the whole box
	span := int64(hi.x-lo.x+1) * int64(hi.y-lo.y+1) * int64(hi.z-lo.z+1)
	if span > int64(len(g.cells)) {
		for k, ids := range g.cells {
			if k.x < lo.x || k.x > hi.x || k.y < lo.y || k.y > hi.y || k.z < lo.z || k.z > hi.z {
				continue
			}
			dst = g.collect(dst, ids)
		}
	} else {
		for x := lo.x; x <= hi.x; x++ {
			for y := lo.y; y <= hi.y; y++ {
				for z := lo.z; z <= hi.z; z++ {
					dst = g.collect(dst, g.cells[cellKey{x, y, z}])
				}
			}
		}
	}
	slices.Sort(dst[start:])
	return dst
}

func (g *Grid) collect(dst, ids []components.VesselID) []components.VesselID {
	for _, id := range ids {
		if _, ok := g.seen[id]; ok {
			continue
		}
		g.seen[id] = struct{}{}
		dst = append(dst, id)
	}
	return dst
}

func (g *Grid) key(p r3.Vec) cellKey {
	return cellKey{
		x: int32(math.Floor(p.X / g.cellSize)),
		y: int32(math.Floor(p.Y / g.cellSize)),
		z: int32(math.Floor(p.Z / g.cellSize)),
	}
}
