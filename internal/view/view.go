// Package view owns the set of managed client windows ("views") and their
// per-view state (C1, the View Registry). The intrusive circular list of
// views in the upstream C source is replaced with an owned map keyed by
// stable uuid handles, per the design note on "arena + index, or owning
// container + weak handles".
package view

import (
	"github.com/google/uuid"

	"labwc.dev/core/internal/geom"
)

// Handle is a stable identifier for a view, independent of its position in
// any stacking order or workspace list.
type Handle uuid.UUID

// NewHandle mints a fresh view handle.
func NewHandle() Handle { return Handle(uuid.New()) }

func (h Handle) String() string { return uuid.UUID(h).String() }

// Band identifies the global top/bottom stacking bands that dominate or
// are dominated by every ordinary workspace view.
type Band int

const (
	// BandNone means the view lives on an ordinary workspace.
	BandNone Band = iota
	BandAlwaysOnTop
	BandAlwaysOnBottom
)

// MaximizeState tracks which axes are maximized.
type MaximizeState int

const (
	MaximizeNone MaximizeState = iota
	MaximizeHorizontal
	MaximizeVertical
	MaximizeBoth
)

// FocusPolicy is the view's declared appetite for keyboard focus.
type FocusPolicy int

const (
	FocusAlways FocusPolicy = iota
	FocusLikely
	FocusUnlikely
	FocusNever
)

// Decoration describes a server-side-decoration, when present.
type Decoration struct {
	Present              bool
	Top, Right, Bottom, Left int
}

// Identity is the stable, mostly-immutable identity of a client window.
type Identity struct {
	Title string
	AppID string
}

// View is a managed client window.
type View struct {
	Handle Handle

	Identity Identity

	// Geometry in layout coordinates.
	Current geom.Rect // committed to the client
	Pending geom.Rect // requested, not yet committed
	Natural geom.Rect // pre-maximize geometry, for restore

	// OutputID is the output this view primarily belongs to.
	OutputID string
	// Outputs is a bitmask of outputs the view currently intersects, keyed
	// by the caller's own output index assignment.
	Outputs uint64

	// WorkspaceIndex is meaningful only when Band == BandNone.
	WorkspaceIndex int
	Band           Band

	Mapped     bool
	BeenMapped bool
	Minimized  bool
	Fullscreen bool
	Maximized  MaximizeState
	Tiled      bool

	FocusPolicy FocusPolicy
	Decoration  Decoration

	// KeyboardLayoutIndex remembers the last active XKB layout index for
	// this window specifically.
	KeyboardLayoutIndex int

	// ModalParent, when HasModalParent is set, names the view this one is
	// a modal dialog of; see the modal-dialog rule in the workspace manager.
	ModalParent Handle
	HasModalParent bool

	// destroyed is set once by Registry.Unregister; every subsequent
	// mutation attempt fails with core.ErrViewGone.
	destroyed bool
}

// Destroyed reports whether the view has been unregistered.
func (v *View) Destroyed() bool { return v.destroyed }

// IsTileable reports whether this view is a candidate for the tiling
// engine, independent of rule-based exclusions (tile=false, fixedPosition),
// which the caller (internal/server) applies via internal/rules.
func (v *View) IsTileable() bool {
	if v.Minimized || v.Fullscreen {
		return false
	}
	if v.Band != BandNone {
		return false
	}
	return true
}

// IsFocusable reports whether the view could conceivably receive keyboard
// focus: mapped and not minimized. Policy (NEVER) is handled separately by
// the focus controller, since "focusable" for iteration purposes and
// "will accept focus" for the NEVER policy are distinct questions.
func (v *View) IsFocusable() bool {
	return v.Mapped && !v.Minimized
}
