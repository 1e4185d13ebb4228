package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"labwc.dev/core/internal/geom"
	"labwc.dev/core/internal/inputmode"
	"labwc.dev/core/internal/output"
	"labwc.dev/core/internal/view"
	"labwc.dev/core/internal/workspace"
)

func newController() (*Controller, *view.Registry, *workspace.Manager) {
	views := view.New()
	workspaces := workspace.New([]string{"a", "b"})
	outputs := output.NewRegistry()
	mode := inputmode.New()
	return New(views, workspaces, outputs, mode, Hooks{}), views, workspaces
}

func TestFocusView_AlwaysPolicySetsKeyboardFocus(t *testing.T) {
	views := view.New()
	workspaces := workspace.New([]string{"a"})
	outputs := output.NewRegistry()
	mode := inputmode.New()

	var focused view.Handle
	c := New(views, workspaces, outputs, mode, Hooks{
		SetKeyboardFocus: func(h view.Handle) { focused = h },
	})

	v := &view.View{Current: geom.Rect{W: 100, H: 100}, Mapped: true, FocusPolicy: view.FocusAlways}
	h := views.Register(v)
	workspaces.Add(h, 0, view.BandNone)

	assert.NoError(t, c.FocusView(h, false))
	assert.Equal(t, h, focused)
}

func TestFocusView_NeverPolicyDoesNotSetFocus(t *testing.T) {
	views := view.New()
	workspaces := workspace.New([]string{"a"})
	outputs := output.NewRegistry()
	mode := inputmode.New()

	called := false
	c := New(views, workspaces, outputs, mode, Hooks{
		SetKeyboardFocus: func(h view.Handle) { called = true },
	})

	v := &view.View{Current: geom.Rect{W: 100, H: 100}, Mapped: true, FocusPolicy: view.FocusNever}
	h := views.Register(v)
	workspaces.Add(h, 0, view.BandNone)

	assert.NoError(t, c.FocusView(h, false))
	assert.False(t, called)
}

func TestFocusView_UnmappedViewIsNoOp(t *testing.T) {
	c, views, workspaces := newController()
	v := &view.View{Mapped: false}
	h := views.Register(v)
	workspaces.Add(h, 0, view.BandNone)
	assert.NoError(t, c.FocusView(h, false))
}

func TestFocusView_GoneHandleIsNoOp(t *testing.T) {
	c, _, _ := newController()
	assert.NoError(t, c.FocusView(view.NewHandle(), false))
}

func TestFocusView_MinimizedViewUnminimizesInsteadOfFocusing(t *testing.T) {
	views := view.New()
	workspaces := workspace.New([]string{"a"})
	outputs := output.NewRegistry()
	mode := inputmode.New()
	called := false
	c := New(views, workspaces, outputs, mode, Hooks{
		SetKeyboardFocus: func(h view.Handle) { called = true },
	})

	v := &view.View{Current: geom.Rect{W: 100, H: 100}, Mapped: true, Minimized: true, FocusPolicy: view.FocusAlways}
	h := views.Register(v)
	workspaces.Add(h, 0, view.BandNone)

	assert.NoError(t, c.FocusView(h, false))
	assert.False(t, v.Minimized)
	assert.False(t, called, "unminimize does not itself request keyboard focus")
}

func TestFocusView_DuringCycleModeIsNoOp(t *testing.T) {
	views := view.New()
	workspaces := workspace.New([]string{"a"})
	outputs := output.NewRegistry()
	mode := inputmode.New()
	assert.NoError(t, mode.Transition(inputmode.Cycle))
	called := false
	c := New(views, workspaces, outputs, mode, Hooks{
		SetKeyboardFocus: func(h view.Handle) { called = true },
	})

	v := &view.View{Current: geom.Rect{W: 100, H: 100}, Mapped: true, FocusPolicy: view.FocusAlways}
	h := views.Register(v)
	workspaces.Add(h, 0, view.BandNone)

	assert.NoError(t, c.FocusView(h, false))
	assert.False(t, called)
}

func TestFocusTopmostView_ClearsFocusWhenNoneFocusable(t *testing.T) {
	c, _, _ := newController()
	cleared := false
	c.Hooks.ClearKeyboardFocus = func() { cleared = true }
	c.FocusTopmostView()
	assert.True(t, cleared)
}

func TestFocusTopmostView_PicksTopmostOnCurrentWorkspace(t *testing.T) {
	views := view.New()
	workspaces := workspace.New([]string{"a"})
	outputs := output.NewRegistry()
	mode := inputmode.New()

	var focused view.Handle
	c := New(views, workspaces, outputs, mode, Hooks{
		SetKeyboardFocus: func(h view.Handle) { focused = h },
	})

	v1 := &view.View{Mapped: true, FocusPolicy: view.FocusAlways}
	v2 := &view.View{Mapped: true, FocusPolicy: view.FocusAlways}
	h1 := views.Register(v1)
	h2 := views.Register(v2)
	workspaces.Add(h1, 0, view.BandNone)
	workspaces.Add(h2, 0, view.BandNone)

	c.FocusTopmostView()
	assert.Equal(t, h2, focused)
}

func TestFocusOutput_WarpsToOutputCenterWhenNoViewIntersects(t *testing.T) {
	c, _, _ := newController()
	var warped geom.Point
	c.Hooks.WarpCursor = func(p geom.Point) { warped = p }

	out := output.New("A", geom.Rect{X: 0, Y: 0, W: 100, H: 100})
	c.FocusOutput(out)
	assert.Equal(t, out.Usable().Center(), warped)
}
