// Package action implements the action registry: an ordered list of named,
// parameterized records attached to a keybind, dispatched against a Server
// aggregate. Grounded on the teacher's DoAction (module/module.go), which
// maps an action name to a JSON request sent over the niri socket — here
// the same "name plus params, looked up in a table" idiom drives real
// window-management operations instead of a single outbound IPC call.
package action

import "fmt"

// Record is one action as declared in configuration: a name plus optional
// string parameters (e.g. "workspace-switch" / {"name": "2"}).
type Record struct {
	Name   string
	Params map[string]string
}

// Handler performs one action against whatever aggregate registers it. It
// is passed the triggering record so parameterized actions (move-to-edge,
// workspace-switch) can read their arguments.
type Handler func(r Record) error

// Registry maps action names to handlers. Unlike rules.Rule matching,
// action dispatch is an exact-name lookup: the keybind engine never
// pattern-matches action names.
type Registry struct {
	handlers map[string]Handler
}

// New creates an empty action registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds name to handler. A later call for the same name replaces
// the earlier one, matching reconfigure's "rebuild the list" semantics.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

// Known reports whether name has a registered handler, without running
// anything.
func (r *Registry) Known(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Run executes every record in order, stopping at the first error (actions
// are an ordered list, not an independent fan-out: a later action may
// depend on an earlier one's side effect, e.g. focus-then-maximize).
func (r *Registry) Run(records []Record) error {
	for _, rec := range records {
		h, ok := r.handlers[rec.Name]
		if !ok {
			return fmt.Errorf("action: no handler registered for %q", rec.Name)
		}
		if err := h(rec); err != nil {
			return fmt.Errorf("action %q: %w", rec.Name, err)
		}
	}
	return nil
}

// RunInhibited is Run, but silently drops any record named in inhibit
// instead of running or erroring on it (spec.md §4.5 "active view may
// declare inhibited actions").
func (r *Registry) RunInhibited(records []Record, inhibit map[string]bool) error {
	if len(inhibit) == 0 {
		return r.Run(records)
	}
	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if inhibit[rec.Name] {
			continue
		}
		filtered = append(filtered, rec)
	}
	return r.Run(filtered)
}
