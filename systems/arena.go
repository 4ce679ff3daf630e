package systems

import "github.com/pthm-cable/ordnance/components"

// Arena holds scratch buffers reused for every projectile in a tick so the hot
// path does not allocate. Not safe for concurrent use.
type Arena struct {
	forward []components.HitRecord
	reverse []components.HitRecord
	hits    []components.HitRecord
	vessels []components.VesselID
	loaded  []components.VesselID

	// Parts already penetrated this pass; their reverse hits are the exit side.
	consumed map[components.PartID]struct{}

	// Overflows counts buffer fallbacks to the allocating query variants.
	Overflows int
}

// NewArena sizes the fixed raycast and overlap buffers.
func NewArena(hitBuffer, vesselBuffer int) *Arena {
	if hitBuffer < 1 {
		hitBuffer = 1
	}
	if vesselBuffer < 1 {
		vesselBuffer = 1
	}
	return &Arena{
		forward:  make([]components.HitRecord, hitBuffer),
		reverse:  make([]components.HitRecord, hitBuffer),
		hits:     make([]components.HitRecord, 0, 4*hitBuffer),
		vessels:  make([]components.VesselID, vesselBuffer),
		loaded:   make([]components.VesselID, 0, vesselBuffer),
		consumed: make(map[components.PartID]struct{}),
	}
}

// BeginProjectile clears per-projectile scratch state.
func (a *Arena) BeginProjectile() {
	a.hits = a.hits[:0]
	clear(a.consumed)
}

// Consume marks a part as penetrated this pass.
func (a *Arena) Consume(id components.PartID) {
	a.consumed[id] = struct{}{}
}

// Consumed reports whether the part was penetrated this pass.
func (a *Arena) Consumed(id components.PartID) bool {
	_, ok := a.consumed[id]
	return ok
}

// Loaded refreshes and returns the loaded-vessel list.
func (a *Arena) Loaded(k KinematicsProvider) []components.VesselID {
	if k == nil {
		a.loaded = a.loaded[:0]
		return a.loaded
	}
	a.loaded = k.LoadedVessels(a.loaded[:0])
	return a.loaded
}
