package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/ordnance/components"
)

func TestPool_AcquireRelease(t *testing.T) {
	var enabled, disabled int
	p := New(3, Hooks{
		OnEnable:  func(*components.Projectile) { enabled++ },
		OnDisable: func(*components.Projectile) { disabled++ },
	})

	a := p.Acquire()
	b := p.Acquire()
	c := p.Acquire()
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, c)
	assert.Nil(t, p.Acquire())
	assert.Equal(t, 1, p.Exhausted)
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 3, enabled)
	assert.True(t, a.Active)

	p.Release(b)
	p.Release(b)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 1, disabled)
	assert.False(t, b.Active)

	// Recycled slot comes back cleared with the same ID
	b.Mass = 99
	again := p.Acquire()
	assert.Same(t, b, again)
	assert.Zero(t, again.Mass)
	assert.Equal(t, b.ID, again.ID)
}

func TestPool_SnapshotSurvivesRelease(t *testing.T) {
	p := New(4, Hooks{})
	for i := 0; i < 4; i++ {
		p.Acquire().Mass = float64(i)
	}

	snap := p.Snapshot(nil)
	require.Len(t, snap, 4)
	for _, proj := range snap {
		if proj.Mass < 2 {
			p.Release(proj)
		}
	}
	assert.Equal(t, 2, p.Len())
	for _, proj := range p.Snapshot(nil) {
		assert.GreaterOrEqual(t, proj.Mass, 2.0)
	}
}

func TestPool_ReleaseInactive(t *testing.T) {
	p := New(5, Hooks{})
	var all []*components.Projectile
	for i := 0; i < 5; i++ {
		all = append(all, p.Acquire())
	}
	all[1].Active = false
	all[4].Active = false

	assert.Equal(t, 2, p.ReleaseInactive())
	assert.Equal(t, 3, p.Len())
	assert.Zero(t, p.ReleaseInactive())
}

func TestPool_ForeignProjectileIgnored(t *testing.T) {
	p := New(2, Hooks{})
	p.Acquire()
	stray := &components.Projectile{ID: 1, Active: true}
	p.Release(stray)
	assert.Equal(t, 1, p.Len())
	assert.Nil(t, p.Get(0))
	assert.Nil(t, p.Get(3))
	assert.NotNil(t, p.Get(1))
}
