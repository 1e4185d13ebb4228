// Package server wires the six components into the aggregate the rest of
// the process drives: view registry, workspace manager, output registry,
// focus controller, tiling engine, keybinding engine, and action registry.
// Grounded on the design note calling for a single owned Server aggregate
// to replace the upstream globals (struct rcxml rc, cur_keybind, and
// friends), and on the teacher's niri/niri_state.go State struct as the
// shape of "one struct everything hangs off of".
package server

import (
	"fmt"

	"labwc.dev/core/internal/action"
	"labwc.dev/core/internal/control"
	"labwc.dev/core/internal/focus"
	"labwc.dev/core/internal/inputmode"
	"labwc.dev/core/internal/keybind"
	"labwc.dev/core/internal/output"
	"labwc.dev/core/internal/rules"
	"labwc.dev/core/internal/tiling"
	"labwc.dev/core/internal/view"
	"labwc.dev/core/internal/workspace"
)

// TilingMode is the server's tiling master switch plus grid-mode flag, the
// two modes named in spec.md §4.4.
type TilingMode struct {
	Enabled  bool
	GridMode bool
}

// Status returns the three-valued tiling status string the control
// channel's --tiling-status query reports: "stacking" (disabled), "grid"
// (enabled, grid-mode), or "smart" (enabled, anchor-preserving).
func (t TilingMode) Status() string {
	switch {
	case !t.Enabled:
		return "stacking"
	case t.GridMode:
		return "grid"
	default:
		return "smart"
	}
}

// Commit is the side effect the server needs to push a newly-computed
// rectangle out to the client, standing in for the excluded scene-graph
// surface configure call.
type Commit func(v *view.View)

// Server is the aggregate tying C1-C6 together.
type Server struct {
	Views      *view.Registry
	Workspaces *workspace.Manager
	Outputs    *output.Registry
	Focus      *focus.Controller
	Mode       *inputmode.Machine
	Keybinds   *keybind.Engine
	Actions    *action.Registry
	Rules      []rules.Rule

	Tiling   TilingMode
	Gap      int
	Margins  tiling.Margins

	Commit Commit

	// anchor remembers the single most-recently user-resized view per
	// output name, per spec.md §4.4's "manually resized anchor" concept.
	anchor map[string]view.Handle

	// focused is the currently keyboard-focused view, kept in sync via
	// the focus controller's SetKeyboardFocus/ClearKeyboardFocus hooks so
	// Keybinds.Inhibit can track its matched rule.
	focused view.Handle
}

// New creates a server with the given number of named workspaces.
func New(workspaceNames []string, gap int) *Server {
	views := view.New()
	workspaces := workspace.New(workspaceNames)
	outputs := output.NewRegistry()
	mode := inputmode.New()
	keybinds := keybind.New(mode, keybind.Hooks{})
	actions := action.New()

	s := &Server{
		Views:      views,
		Workspaces: workspaces,
		Outputs:    outputs,
		Mode:       mode,
		Keybinds:   keybinds,
		Actions:    actions,
		Gap:        gap,
		anchor:     make(map[string]view.Handle),
	}
	s.Focus = focus.New(views, workspaces, outputs, mode, focus.Hooks{
		SetKeyboardFocus:   s.setFocused,
		ClearKeyboardFocus: s.clearFocused,
	})
	keybinds.Hooks.RunActions = func(b *keybind.Bind) error {
		return actions.RunInhibited(b.Actions, s.Keybinds.Inhibit)
	}
	s.registerActions()
	return s
}

// setFocused records h as the currently keyboard-focused view and
// refreshes the keybinding engine's inhibited-actions set from its
// matched rule, per spec.md §4.5's "active view may declare inhibited
// actions".
func (s *Server) setFocused(h view.Handle) {
	s.focused = h
	s.refreshInhibit()
}

// clearFocused drops keyboard focus tracking (e.g. no focusable view
// remains) and clears the inhibited-actions set along with it.
func (s *Server) clearFocused() {
	s.focused = view.Handle{}
	s.refreshInhibit()
}

// refreshInhibit recomputes Keybinds.Inhibit from the currently focused
// view's matched rule.
func (s *Server) refreshInhibit() {
	v := s.Views.Lookup(s.focused)
	if v == nil {
		s.Keybinds.Inhibit = make(map[string]bool)
		return
	}
	matched := rules.Match(s.Rules, rules.Identity{AppID: v.Identity.AppID, Title: v.Identity.Title})
	s.Keybinds.Inhibit = matched.Inhibit
}

// SetAnchor records h as the manually-resized anchor for its output,
// clearing any previous anchor on that output (at most one anchor per
// output, per spec.md §4.4).
func (s *Server) SetAnchor(outputName string, h view.Handle) {
	s.anchor[outputName] = h
}

// ClearAnchor drops the anchor, if any, for outputName.
func (s *Server) ClearAnchor(outputName string) {
	delete(s.anchor, outputName)
}

// RecalculateTiling recomputes layout for every output, per spec.md
// §4.4's per-output algorithm. It is idempotent: calling it twice in a row
// with no intervening view changes produces the same committed rectangles
// (the round-trip property in spec.md §8).
func (s *Server) RecalculateTiling() {
	if !s.Tiling.Enabled {
		return
	}
	for _, out := range s.Outputs.All() {
		s.recalculateOutput(out)
	}
}

func (s *Server) recalculateOutput(out *output.Output) {
	var candidates []tiling.Candidate
	order := s.Workspaces.StackOrder(s.Workspaces.Current())
	s.Views.ForEach(order, view.FilterCurrentWorkspace, s.Workspaces.Current(), func(v *view.View) bool {
		if v.OutputID != out.Name {
			return true
		}
		if !v.IsTileable() {
			return true
		}
		matched := rules.Match(s.Rules, rules.Identity{AppID: v.Identity.AppID, Title: v.Identity.Title})
		if matched.FixedPosition || matched.TileDisabled {
			return true
		}
		c := tiling.Candidate{
			Handle:           v.Handle,
			Rect:             v.Current,
			PreferVertical:   matched.TileDirection == rules.TileDirectionVertical,
			PreferHorizontal: matched.TileDirection == rules.TileDirectionHorizontal,
		}
		if anchorHandle, ok := s.anchor[out.Name]; ok && anchorHandle == v.Handle {
			c.IsAnchor = true
		}
		candidates = append(candidates, c)
		return true
	})

	if len(candidates) == 0 {
		return
	}

	result := tiling.Compute(candidates, tiling.Options{
		Usable:   out.Usable(),
		Gap:      s.Gap,
		GridMode: s.Tiling.GridMode,
		Margins:  s.Margins,
	})

	for h, rect := range result {
		v := s.Views.Lookup(h)
		if v == nil {
			continue
		}
		view.SetTiled(v, rect, func(v *view.View) {
			if s.Commit != nil {
				s.Commit(v)
			}
		})
	}

	for _, c := range candidates {
		if !c.IsAnchor {
			continue
		}
		if adjusted, ok := result[c.Handle]; ok {
			v := s.Views.Lookup(c.Handle)
			if v != nil {
				v.Current = adjusted
			}
		}
	}
}

// registerActions wires the action names a keybind may invoke to handlers
// closing over this server. The control channel does not go through this
// registry; it calls the Dispatch methods below.
func (s *Server) registerActions() {
	s.Actions.Register("tiling-enable", func(action.Record) error {
		s.Tiling.Enabled = true
		s.RecalculateTiling()
		return nil
	})
	s.Actions.Register("tiling-disable", func(action.Record) error {
		s.Tiling.Enabled = false
		return nil
	})
	s.Actions.Register("tiling-toggle", func(action.Record) error {
		s.Tiling.Enabled = !s.Tiling.Enabled
		if s.Tiling.Enabled {
			s.RecalculateTiling()
		}
		return nil
	})
	s.Actions.Register("tiling-recalculate", func(action.Record) error {
		s.RecalculateTiling()
		return nil
	})
	s.Actions.Register("workspace-next", func(action.Record) error {
		return s.Workspaces.SwitchTo(s.Workspaces.Next(), true, s.hideHook(), s.showHook(), s.Focus.FocusTopmostView)
	})
	s.Actions.Register("workspace-prev", func(action.Record) error {
		return s.Workspaces.SwitchTo(s.Workspaces.Prev(), true, s.hideHook(), s.showHook(), s.Focus.FocusTopmostView)
	})
	s.Actions.Register("workspace-switch", func(r action.Record) error {
		idx := s.Workspaces.NameOrIndexLookup(r.Params["name"])
		if idx < 0 {
			return fmt.Errorf("server: unknown workspace %q", r.Params["name"])
		}
		return s.Workspaces.SwitchTo(idx, true, s.hideHook(), s.showHook(), s.Focus.FocusTopmostView)
	})
}

func (s *Server) hideHook() func(view.Handle) {
	return func(h view.Handle) {
		if v := s.Views.Lookup(h); v != nil {
			v.Mapped = false
		}
	}
}

func (s *Server) showHook() func(view.Handle) {
	return func(h view.Handle) {
		if v := s.Views.Lookup(h); v != nil {
			v.Mapped = true
		}
	}
}

// ---- control.Dispatch implementation ----

var _ control.Dispatch = (*Server)(nil)

func (s *Server) KeybindEnable(id string) error {
	if !keybind.ToggleEnabled(s.Keybinds.Binds, id, boolPtr(true)) {
		return fmt.Errorf("server: no toggleable keybind %q", id)
	}
	return nil
}

func (s *Server) KeybindDisable(id string) error {
	if !keybind.ToggleEnabled(s.Keybinds.Binds, id, boolPtr(false)) {
		return fmt.Errorf("server: no toggleable keybind %q", id)
	}
	return nil
}

func (s *Server) KeybindToggle(id string) error {
	if !keybind.ToggleEnabled(s.Keybinds.Binds, id, nil) {
		return fmt.Errorf("server: no toggleable keybind %q", id)
	}
	return nil
}

func (s *Server) WorkspaceSwitch(nameOrIndex string) error {
	idx := s.Workspaces.NameOrIndexLookup(nameOrIndex)
	if idx < 0 {
		return fmt.Errorf("server: unknown workspace %q", nameOrIndex)
	}
	return s.Workspaces.SwitchTo(idx, true, s.hideHook(), s.showHook(), s.Focus.FocusTopmostView)
}

func (s *Server) WorkspaceNext() error {
	return s.Workspaces.SwitchTo(s.Workspaces.Next(), true, s.hideHook(), s.showHook(), s.Focus.FocusTopmostView)
}

func (s *Server) WorkspacePrev() error {
	return s.Workspaces.SwitchTo(s.Workspaces.Prev(), true, s.hideHook(), s.showHook(), s.Focus.FocusTopmostView)
}

func (s *Server) TilingEnable() error {
	s.Tiling.Enabled = true
	s.RecalculateTiling()
	return nil
}

func (s *Server) TilingDisable() error {
	s.Tiling.Enabled = false
	return nil
}

func (s *Server) TilingToggle() error {
	s.Tiling.Enabled = !s.Tiling.Enabled
	if s.Tiling.Enabled {
		s.RecalculateTiling()
	}
	return nil
}

func (s *Server) TilingGridMode(mode string) error {
	switch mode {
	case "on":
		s.Tiling.GridMode = true
	case "off":
		s.Tiling.GridMode = false
	case "toggle":
		s.Tiling.GridMode = !s.Tiling.GridMode
	default:
		return fmt.Errorf("server: unknown grid-mode value %q", mode)
	}
	s.RecalculateTiling()
	return nil
}

func (s *Server) TilingRecalculate() error {
	s.RecalculateTiling()
	return nil
}

func (s *Server) CurrentWorkspaceName() string {
	return s.Workspaces.Name(s.Workspaces.Current())
}

func (s *Server) TilingStatus() string {
	return s.Tiling.Status()
}

func boolPtr(b bool) *bool { return &b }
