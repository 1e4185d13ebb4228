package output

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"labwc.dev/core/internal/geom"
)

func TestUsable_NoExclusiveZonesEqualsFull(t *testing.T) {
	o := New("eDP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	assert.Equal(t, o.Full, o.Usable())
}

func TestReserveExclusiveZone_ShrinksUsable(t *testing.T) {
	o := New("eDP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	o.ReserveExclusiveZone("top", 30)
	o.ReserveExclusiveZone("bottom", 20)

	usable := o.Usable()
	assert.Equal(t, 0, usable.X)
	assert.Equal(t, 30, usable.Y)
	assert.Equal(t, 1920, usable.W)
	assert.Equal(t, 1080-30-20, usable.H)
}

func TestRegistry_AddGetRemove(t *testing.T) {
	r := NewRegistry()
	a := New("A", geom.Rect{W: 100, H: 100})
	b := New("B", geom.Rect{W: 200, H: 200})
	r.Add(a)
	r.Add(b)

	assert.Same(t, a, r.Get("A"))
	assert.Equal(t, []*Output{a, b}, r.All())

	r.Remove("A")
	assert.Nil(t, r.Get("A"))
	assert.Equal(t, []*Output{b}, r.All())
}

func TestRegistry_AddReplacingExisting_PreservesConnectionOrder(t *testing.T) {
	r := NewRegistry()
	a := New("A", geom.Rect{W: 100, H: 100})
	b := New("B", geom.Rect{W: 200, H: 200})
	r.Add(a)
	r.Add(b)

	replacement := New("A", geom.Rect{W: 300, H: 300})
	r.Add(replacement)

	assert.Equal(t, []*Output{replacement, b}, r.All())
}
