// Package focus implements the Focus Controller (C3): keyboard focus
// selection according to policy and view state, plus cursor-driven output
// focus. Grounded on the teacher's niri_state.go focus-tracking fields
// (CurrentWindowId, the "unset focus on everyone, then set the new one"
// idiom), generalized from mirroring an external compositor's focus state
// to actually deciding it.
package focus

import (
	"labwc.dev/core/internal/geom"
	"labwc.dev/core/internal/inputmode"
	"labwc.dev/core/internal/output"
	"labwc.dev/core/internal/view"
	"labwc.dev/core/internal/workspace"
	"labwc.dev/core/log"
)

var logger = log.New("focus")

// Hooks are the side effects the controller needs from the rest of the
// server: setting keyboard/pointer focus on the Wayland side, warping the
// cursor, and offering (vs. forcing) focus to a client window. All are
// external collaborators per spec.md §1.
type Hooks struct {
	SetKeyboardFocus func(h view.Handle)
	ClearKeyboardFocus func()
	OfferFocus       func(h view.Handle)
	SetPointerFocus  func(h view.Handle)
	WarpCursor       func(p geom.Point)
}

// Controller selects keyboard focus according to policy and view state.
type Controller struct {
	Views      *view.Registry
	Workspaces *workspace.Manager
	Outputs    *output.Registry
	Mode       *inputmode.Machine
	Hooks      Hooks
}

// New creates a focus controller wired to the given collaborators.
func New(views *view.Registry, workspaces *workspace.Manager, outputs *output.Registry, mode *inputmode.Machine, hooks Hooks) *Controller {
	return &Controller{Views: views, Workspaces: workspaces, Outputs: outputs, Mode: mode, Hooks: hooks}
}

// FocusView implements the §4.3 focus_view(view, raise) operation.
func (c *Controller) FocusView(h view.Handle, raise bool) error {
	v := c.Views.Lookup(h)
	if v == nil {
		return nil // view already gone; nothing to focus
	}
	if !v.Mapped {
		return nil
	}
	if c.Mode != nil && c.Mode.Current() == inputmode.Cycle {
		return nil
	}

	if v.Minimized {
		return view.Unminimize(v)
	}

	if v.Band == view.BandNone && v.WorkspaceIndex != c.Workspaces.Current() {
		if err := c.Workspaces.SwitchTo(v.WorkspaceIndex, false, c.hideHook(), c.showHook(), nil); err != nil {
			return err
		}
	}

	if raise {
		c.Workspaces.MoveToFront(h, c.raiseSiblings)
	}

	target := h
	if dialog := c.Views.FindModalDialogOf(h); dialog != nil {
		target = dialog.Handle
		v = dialog
	}

	switch v.FocusPolicy {
	case view.FocusAlways:
		logger.Debugf("focusing view %s", target)
		if c.Hooks.SetKeyboardFocus != nil {
			c.Hooks.SetKeyboardFocus(target)
		}
	case view.FocusLikely, view.FocusUnlikely:
		logger.Debugf("offering focus to view %s", target)
		if c.Hooks.OfferFocus != nil {
			c.Hooks.OfferFocus(target)
		}
	case view.FocusNever:
		logger.Debugf("view %s declines focus (policy never)", target)
	}
	return nil
}

func (c *Controller) raiseSiblings(h view.Handle) []view.Handle {
	if dialog := c.Views.FindModalDialogOf(h); dialog != nil {
		return []view.Handle{dialog.Handle}
	}
	return nil
}

func (c *Controller) hideHook() func(view.Handle) {
	return func(view.Handle) {}
}

func (c *Controller) showHook() func(view.Handle) {
	return func(view.Handle) {}
}

// FocusTopmostView picks the back-to-front-last focusable, non-minimized
// view on the current workspace. If none exists, keyboard focus is
// cleared.
func (c *Controller) FocusTopmostView() {
	order := c.Workspaces.StackOrder(c.Workspaces.Current())
	top := c.Views.TopmostFocusable(order, c.Workspaces.Current())
	if top == nil {
		if c.Hooks.ClearKeyboardFocus != nil {
			c.Hooks.ClearKeyboardFocus()
		}
		return
	}
	if c.Hooks.SetKeyboardFocus != nil {
		c.Hooks.SetKeyboardFocus(top.Handle)
	}
}

// FocusOutput picks the topmost focusable view intersecting out's usable
// rectangle (no raise), warps the cursor to the view's center, and updates
// pointer focus. If none exists, it warps the cursor to the output's
// usable-area center instead.
func (c *Controller) FocusOutput(out *output.Output) {
	order := c.Workspaces.StackOrder(c.Workspaces.Current())
	var best *view.View
	c.Views.ForEach(order, view.FilterMappedAndFocusable, c.Workspaces.Current(), func(v *view.View) bool {
		if v.Current.Intersects(out.Usable()) {
			best = v
		}
		return true
	})
	if best == nil {
		if c.Hooks.WarpCursor != nil {
			c.Hooks.WarpCursor(out.Usable().Center())
		}
		return
	}
	if c.Hooks.SetPointerFocus != nil {
		c.Hooks.SetPointerFocus(best.Handle)
	}
	if c.Hooks.WarpCursor != nil {
		c.Hooks.WarpCursor(best.Current.Center())
	}
}
