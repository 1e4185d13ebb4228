// Package workspace implements the Workspace & Stacking Manager (C2): it
// orders views within workspaces in a total back-to-front stacking order,
// enforces the always-on-top/always-on-bottom bands, and drives workspace
// switches. Grounded on the teacher's niri/niri_state.go Update-driven
// mutation style, generalized from "mirror an external compositor's state"
// to "own the stacking order directly".
package workspace

import (
	"fmt"

	"labwc.dev/core/internal/view"
	"labwc.dev/core/log"
)

var logger = log.New("workspace")

// Manager owns, per workspace, an ordered list of view handles plus the
// two global stacking bands.
type Manager struct {
	names   []string
	views   [][]view.Handle // per-workspace back-to-front order
	top     []view.Handle   // always-on-top band, dominates every workspace
	bottom  []view.Handle   // always-on-bottom band, dominated by every workspace
	current int
}

// New creates a Manager with n workspaces (n must be >= 1), optionally
// named; unnamed workspaces are referred to by their 1-based index.
func New(names []string) *Manager {
	if len(names) == 0 {
		names = []string{"1"}
	}
	return &Manager{
		names: append([]string(nil), names...),
		views: make([][]view.Handle, len(names)),
	}
}

// Count returns the number of configured workspaces.
func (m *Manager) Count() int { return len(m.names) }

// Current returns the index of the current workspace.
func (m *Manager) Current() int { return m.current }

// NameOrIndexLookup resolves a workspace name or 1-based index string to a
// 0-based index. Returns -1 if it cannot be resolved.
func (m *Manager) NameOrIndexLookup(nameOrIndex string) int {
	for i, n := range m.names {
		if n == nameOrIndex {
			return i
		}
	}
	var idx int
	if _, err := fmt.Sscanf(nameOrIndex, "%d", &idx); err == nil {
		if idx >= 1 && idx <= len(m.names) {
			return idx - 1
		}
	}
	return -1
}

// Name returns the configured name of workspace i.
func (m *Manager) Name(i int) string {
	if i < 0 || i >= len(m.names) {
		return ""
	}
	return m.names[i]
}

// StackOrder returns the full back-to-front iteration order that C1's
// ForEach expects: bottom band, then the named workspace's views, then the
// top band — because "the always-on-top band dominates all workspace
// views; always-on-bottom is dominated" (spec.md invariant).
func (m *Manager) StackOrder(workspaceIdx int) []view.Handle {
	var out []view.Handle
	out = append(out, m.bottom...)
	if workspaceIdx >= 0 && workspaceIdx < len(m.views) {
		out = append(out, m.views[workspaceIdx]...)
	}
	out = append(out, m.top...)
	return out
}

// AllViews returns every managed handle across every workspace and both
// bands, in no particular cross-workspace order (used by operations that
// must touch all views regardless of current workspace, e.g. output
// hot-unplug cleanup).
func (m *Manager) AllViews() []view.Handle {
	var out []view.Handle
	out = append(out, m.bottom...)
	for _, ws := range m.views {
		out = append(out, ws...)
	}
	out = append(out, m.top...)
	return out
}

func (m *Manager) bandSlice(b view.Band) *[]view.Handle {
	switch b {
	case view.BandAlwaysOnTop:
		return &m.top
	case view.BandAlwaysOnBottom:
		return &m.bottom
	default:
		return nil
	}
}

func removeHandle(s []view.Handle, h view.Handle) []view.Handle {
	for i, v := range s {
		if v == h {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// Add places h at the front (topmost) of workspace ws, or of band when
// band is not BandNone (ws is then ignored).
func (m *Manager) Add(h view.Handle, ws int, band view.Band) {
	m.Remove(h)
	if band != view.BandNone {
		bs := m.bandSlice(band)
		*bs = append(*bs, h)
		return
	}
	if ws < 0 || ws >= len(m.views) {
		ws = m.current
	}
	m.views[ws] = append(m.views[ws], h)
}

// Remove deletes h from whichever workspace or band currently holds it.
func (m *Manager) Remove(h view.Handle) {
	m.top = removeHandle(m.top, h)
	m.bottom = removeHandle(m.bottom, h)
	for i := range m.views {
		m.views[i] = removeHandle(m.views[i], h)
	}
}

// WorkspaceOf returns the workspace index holding h, or -1 if h is in a
// band or not found.
func (m *Manager) WorkspaceOf(h view.Handle) int {
	for i, ws := range m.views {
		for _, v := range ws {
			if v == h {
				return i
			}
		}
	}
	return -1
}

// MoveToFront raises h to the topmost position within its own list,
// raising any registered siblings (modal-dialog children) together with
// it by calling raiseSiblings for h if non-nil.
func (m *Manager) MoveToFront(h view.Handle, raiseSiblings func(view.Handle) []view.Handle) {
	if i := m.WorkspaceOf(h); i >= 0 {
		m.views[i] = removeHandle(m.views[i], h)
		m.views[i] = append(m.views[i], h)
	} else if contains(m.top, h) {
		m.top = removeHandle(m.top, h)
		m.top = append(m.top, h)
	} else if contains(m.bottom, h) {
		m.bottom = removeHandle(m.bottom, h)
		m.bottom = append(m.bottom, h)
	} else {
		return
	}
	if raiseSiblings == nil {
		return
	}
	for _, sib := range raiseSiblings(h) {
		if i := m.WorkspaceOf(sib); i >= 0 {
			m.views[i] = removeHandle(m.views[i], sib)
			m.views[i] = append(m.views[i], sib)
		}
	}
}

// MoveToBack lowers h to the bottommost position within its own list.
func (m *Manager) MoveToBack(h view.Handle) {
	if i := m.WorkspaceOf(h); i >= 0 {
		m.views[i] = removeHandle(m.views[i], h)
		m.views[i] = append([]view.Handle{h}, m.views[i]...)
		return
	}
	if contains(m.top, h) {
		m.top = removeHandle(m.top, h)
		m.top = append([]view.Handle{h}, m.top...)
		return
	}
	if contains(m.bottom, h) {
		m.bottom = removeHandle(m.bottom, h)
		m.bottom = append([]view.Handle{h}, m.bottom...)
	}
}

func contains(s []view.Handle, h view.Handle) bool {
	for _, v := range s {
		if v == h {
			return true
		}
	}
	return false
}

// SwitchTo makes ws the current workspace. It hides every view whose
// workspace != ws (except band views, which are always shown), shows ws's
// views, and — if updateFocus is true — invokes onFocus to let the focus
// controller pick a new keyboard focus. hide/show are caller-supplied
// side-effect hooks (e.g. toggling scene-node enablement).
func (m *Manager) SwitchTo(ws int, updateFocus bool, hide, show func(view.Handle), onFocus func()) error {
	if ws < 0 || ws >= len(m.views) {
		return fmt.Errorf("workspace index %d out of range", ws)
	}
	if ws == m.current {
		return nil
	}
	logger.Infof("switching workspace %s -> %s", m.Name(m.current), m.Name(ws))
	for i, wsViews := range m.views {
		if i == ws {
			continue
		}
		for _, h := range wsViews {
			if hide != nil {
				hide(h)
			}
		}
	}
	m.current = ws
	if show != nil {
		for _, h := range m.views[ws] {
			show(h)
		}
	}
	if updateFocus && onFocus != nil {
		onFocus()
	}
	return nil
}

// Next returns the next workspace index, wrapping around.
func (m *Manager) Next() int { return (m.current + 1) % len(m.views) }

// Prev returns the previous workspace index, wrapping around.
func (m *Manager) Prev() int { return (m.current - 1 + len(m.views)) % len(m.views) }
