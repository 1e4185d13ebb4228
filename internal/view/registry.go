package view

import (
	"labwc.dev/core/internal/core"
	"labwc.dev/core/internal/geom"
	"labwc.dev/core/log"
)

var logger = log.New("view")

// Filter selects a subset of views during iteration.
type Filter int

const (
	// FilterAny matches every registered view.
	FilterAny Filter = iota
	// FilterCurrentWorkspace matches views on the caller-supplied current
	// workspace (the caller passes the workspace index via ForEach's
	// currentWorkspace argument).
	FilterCurrentWorkspace
	// FilterMappedAndFocusable matches mapped, non-minimized views.
	FilterMappedAndFocusable
	// FilterTileable matches views eligible for the tiling engine by
	// lifecycle-flag criteria alone (rule-based exclusions are layered on
	// by internal/server).
	FilterTileable
)

func (v *View) matches(f Filter, currentWorkspace int) bool {
	switch f {
	case FilterAny:
		return true
	case FilterCurrentWorkspace:
		return v.Band == BandNone && v.WorkspaceIndex == currentWorkspace
	case FilterMappedAndFocusable:
		return v.IsFocusable()
	case FilterTileable:
		return v.IsTileable()
	default:
		return false
	}
}

// Registry owns the set of managed views, keyed by stable handle.
type Registry struct {
	views map[Handle]*View
}

// New creates an empty view registry.
func New() *Registry {
	return &Registry{views: make(map[Handle]*View)}
}

// Register adds a newly mapped client as a managed view and returns its
// handle.
func (r *Registry) Register(v *View) Handle {
	if v.Handle == (Handle{}) {
		v.Handle = NewHandle()
	}
	r.views[v.Handle] = v
	logger.Debugf("registered view %s (app-id=%q title=%q)", v.Handle, v.Identity.AppID, v.Identity.Title)
	return v.Handle
}

// Unregister marks the view destroyed and removes it from the registry.
// Further mutation attempts against the returned (or any other cached)
// pointer fail with core.ErrViewGone.
func (r *Registry) Unregister(h Handle) {
	if v, ok := r.views[h]; ok {
		v.destroyed = true
		delete(r.views, h)
		logger.Debugf("unregistered view %s", h)
	}
}

// Lookup returns the view for h, or nil if it is not registered.
func (r *Registry) Lookup(h Handle) *View {
	return r.views[h]
}

// ForEach iterates the views named by order (typically the stacking order
// supplied by the workspace manager), back-to-front, invoking fn for each
// that matches filter. Iteration stops early if fn returns false.
// currentWorkspace is only consulted for FilterCurrentWorkspace.
func (r *Registry) ForEach(order []Handle, filter Filter, currentWorkspace int, fn func(*View) bool) {
	for _, h := range order {
		v := r.views[h]
		if v == nil || v.destroyed {
			continue
		}
		if !v.matches(filter, currentWorkspace) {
			continue
		}
		if !fn(v) {
			return
		}
	}
}

// FindModalDialogOf returns the first registered view whose ModalParent is
// parent's handle, or nil if none exists.
func (r *Registry) FindModalDialogOf(parent Handle) *View {
	for _, v := range r.views {
		if v.destroyed {
			continue
		}
		if v.HasModalParent && v.ModalParent == parent {
			return v
		}
	}
	return nil
}

// TopmostFocusable returns the back-to-front-last focusable, non-minimized
// view among order that belongs to workspace, or nil if none exists.
func (r *Registry) TopmostFocusable(order []Handle, workspace int) *View {
	var top *View
	r.ForEach(order, FilterCurrentWorkspace, workspace, func(v *View) bool {
		if v.IsFocusable() && v.FocusPolicy != FocusNever {
			top = v
		}
		return true
	})
	return top
}

// MoveResize commits a new pending geometry to v and notifies the client
// (via commit, the caller-supplied side-effect hook). If v is maximized it
// is first unmaximized without storing natural geometry (store=false
// semantics). If v is tiled and fromTiling is false, the tiled flag is
// cleared, since user-driven geometry changes end tiled placement.
func MoveResize(v *View, rect geom.Rect, fromTiling bool, commit func(*View)) error {
	if v.destroyed {
		logger.Warnf("move-resize on destroyed view %s", v.Handle)
		return core.ErrViewGone
	}
	if !v.Mapped {
		logger.Debugf("move-resize on unmapped view %s", v.Handle)
		return core.ErrNotMapped
	}
	if v.Maximized != MaximizeNone {
		v.Maximized = MaximizeNone
	}
	if v.Tiled && !fromTiling {
		v.Tiled = false
	}
	v.Pending = rect
	v.Current = rect
	if commit != nil {
		commit(v)
	}
	return nil
}

// Maximize maximizes v to rect. When store is true, the view's current
// geometry is first saved into Natural so a later Restore returns to it.
func Maximize(v *View, rect geom.Rect, axes MaximizeState, store bool, commit func(*View)) error {
	if v.destroyed {
		return core.ErrViewGone
	}
	if !v.Mapped {
		return core.ErrNotMapped
	}
	if store {
		v.Natural = v.Current
	}
	v.Maximized = axes
	v.Tiled = false
	v.Pending = rect
	v.Current = rect
	if commit != nil {
		commit(v)
	}
	return nil
}

// Restore reverses Maximize, committing v.Natural as the new current
// geometry and clearing the maximized state.
func Restore(v *View, commit func(*View)) error {
	if v.destroyed {
		return core.ErrViewGone
	}
	if !v.Mapped {
		return core.ErrNotMapped
	}
	v.Maximized = MaximizeNone
	v.Pending = v.Natural
	v.Current = v.Natural
	if commit != nil {
		commit(v)
	}
	return nil
}

// SetTiled marks v as placed by the tiling engine and commits rect.
func SetTiled(v *View, rect geom.Rect, commit func(*View)) error {
	if v.destroyed {
		return core.ErrViewGone
	}
	if !v.Mapped {
		return core.ErrNotMapped
	}
	v.Tiled = true
	v.Pending = rect
	v.Current = rect
	if commit != nil {
		commit(v)
	}
	return nil
}

// Minimize minimizes v. Minimizing an unmapped view is a no-op (not an
// error), per spec.
func Minimize(v *View) error {
	if v.destroyed {
		return core.ErrViewGone
	}
	if !v.Mapped {
		return nil
	}
	v.Minimized = true
	return nil
}

// Unminimize remaps v, re-entering focus through the map path (the caller
// is responsible for invoking the focus controller afterward).
func Unminimize(v *View) error {
	if v.destroyed {
		return core.ErrViewGone
	}
	v.Minimized = false
	return nil
}

// SetFullscreen sets or clears fullscreen on v. A view cannot be
// simultaneously fullscreen and minimized; setting fullscreen clears
// minimized, and minimizing a fullscreen view is left to the caller to
// avoid (Minimize does not itself clear fullscreen, since a minimized
// fullscreen view would violate the invariant either way round).
func SetFullscreen(v *View, fullscreen bool, rect geom.Rect, commit func(*View)) error {
	if v.destroyed {
		return core.ErrViewGone
	}
	if !v.Mapped {
		return core.ErrNotMapped
	}
	v.Fullscreen = fullscreen
	if fullscreen {
		v.Minimized = false
		v.Pending = rect
		v.Current = rect
		if commit != nil {
			commit(v)
		}
	}
	return nil
}
