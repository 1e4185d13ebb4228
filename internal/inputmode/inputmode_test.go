package inputmode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_StartsInPassthrough(t *testing.T) {
	m := New()
	assert.Equal(t, Passthrough, m.Current())
}

func TestTransition_ToSelfIsAlwaysNoOp(t *testing.T) {
	m := New()
	assert.NoError(t, m.Transition(Move))
	assert.NoError(t, m.Transition(Move))
	assert.Equal(t, Move, m.Current())
}

func TestTransition_PassthroughToAnyModeAllowed(t *testing.T) {
	for _, next := range []Mode{Menu, Cycle, Move, Resize, Dnd} {
		m := New()
		assert.NoError(t, m.Transition(next))
		assert.Equal(t, next, m.Current())
	}
}

func TestTransition_MenuOnlyReturnsToPassthrough(t *testing.T) {
	m := New()
	assert.NoError(t, m.Transition(Menu))
	assert.Error(t, m.Transition(Cycle))
	assert.Equal(t, Menu, m.Current(), "rejected transition leaves mode unchanged")
	assert.NoError(t, m.Transition(Passthrough))
}

func TestTransition_MoveAndResizeInterconvert(t *testing.T) {
	m := New()
	assert.NoError(t, m.Transition(Move))
	assert.NoError(t, m.Transition(Resize))
	assert.NoError(t, m.Transition(Move))
}

func TestString(t *testing.T) {
	assert.Equal(t, "passthrough", Passthrough.String())
	assert.Equal(t, "cycle", Cycle.String())
	assert.Equal(t, "unknown", Mode(99).String())
}
