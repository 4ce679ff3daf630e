// Package pool provides a fixed-capacity projectile pool.
//
// Projectiles are preallocated once and recycled, so firing never allocates.
// The active set is iterated through a snapshot so projectiles can be released
// while a tick is walking it.
package pool

import (
	"github.com/pthm-cable/ordnance/components"
)

// Hooks are called when a projectile enters or leaves the active set.
type Hooks struct {
	OnEnable  func(p *components.Projectile)
	OnDisable func(p *components.Projectile)
}

// Pool is a fixed set of reusable projectiles. Not safe for concurrent use.
type Pool struct {
	items  []components.Projectile
	free   []int32 // stack of free indices
	active []int32 // indices in activation order
	pos    []int32 // index into active, -1 when free
	hooks  Hooks

	// Exhausted counts Acquire calls that found no free slot.
	Exhausted int
}

// New preallocates size projectiles.
func New(size int, hooks Hooks) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		items:  make([]components.Projectile, size),
		free:   make([]int32, size),
		active: make([]int32, 0, size),
		pos:    make([]int32, size),
		hooks:  hooks,
	}
	for i := range p.items {
		p.items[i].ID = uint32(i + 1)
		// Pop order runs from index 0 upward
		p.free[i] = int32(size - 1 - i)
		p.pos[i] = -1
	}
	return p
}

// Cap returns the pool capacity.
func (p *Pool) Cap() int { return len(p.items) }

// Len returns the number of active projectiles.
func (p *Pool) Len() int { return len(p.active) }

// Acquire takes a cleared projectile out of the pool and marks it active.
// Returns nil when the pool is exhausted.
func (p *Pool) Acquire() *components.Projectile {
	if len(p.free) == 0 {
		p.Exhausted++
		return nil
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	proj := &p.items[idx]
	proj.Reset()
	proj.Active = true
	p.pos[idx] = int32(len(p.active))
	p.active = append(p.active, idx)

	if p.hooks.OnEnable != nil {
		p.hooks.OnEnable(proj)
	}
	return proj
}

// Release returns a projectile to the pool. Releasing a free or foreign
// projectile is a no-op.
func (p *Pool) Release(proj *components.Projectile) {
	idx := p.index(proj)
	if idx < 0 || p.pos[idx] < 0 {
		return
	}
	if p.hooks.OnDisable != nil {
		p.hooks.OnDisable(proj)
	}
	proj.Active = false

	// Swap-remove from the active list
	at := p.pos[idx]
	last := p.active[len(p.active)-1]
	p.active[at] = last
	p.pos[last] = at
	p.active = p.active[:len(p.active)-1]
	p.pos[idx] = -1

	p.free = append(p.free, int32(idx))
}

// Snapshot appends the active projectiles to dst and returns it. The snapshot
// stays valid while projectiles are released or acquired.
func (p *Pool) Snapshot(dst []*components.Projectile) []*components.Projectile {
	for _, idx := range p.active {
		dst = append(dst, &p.items[idx])
	}
	return dst
}

// ReleaseInactive returns every projectile whose Active flag was cleared.
// Returns the number released.
func (p *Pool) ReleaseInactive() int {
	n := 0
	for i := len(p.active) - 1; i >= 0; i-- {
		proj := &p.items[p.active[i]]
		if !proj.Active {
			p.Release(proj)
			n++
		}
	}
	return n
}

// Get returns the projectile with the given ID, or nil.
func (p *Pool) Get(id uint32) *components.Projectile {
	if id == 0 || int(id) > len(p.items) {
		return nil
	}
	return &p.items[id-1]
}

func (p *Pool) index(proj *components.Projectile) int {
	if proj == nil || proj.ID == 0 || int(proj.ID) > len(p.items) {
		return -1
	}
	idx := int(proj.ID - 1)
	if &p.items[idx] != proj {
		return -1
	}
	return idx
}
