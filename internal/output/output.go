// Package output tracks the set of connected displays, standing in for the
// excluded Wayland/wlroots output objects. Each output exposes a usable
// rectangle (after layer-shell exclusive-zone reservation) that the tiling
// engine and focus controller lay out against.
package output

import "labwc.dev/core/internal/geom"

// Output is a physical or virtual display.
type Output struct {
	Name string
	// Full is the output's full layout rectangle.
	Full geom.Rect
	// exclusive zones reserved by layer-shell surfaces, one per edge.
	exclusiveTop, exclusiveRight, exclusiveBottom, exclusiveLeft int
	// TopLayerEnabled is set true by New. Nothing in this module changes
	// it afterwards; no fullscreen-coverage check updates it.
	TopLayerEnabled bool
}

// New creates an output with no exclusive zones reserved, top layer
// enabled by default (per the visibility rule in spec.md §4.2).
func New(name string, full geom.Rect) *Output {
	return &Output{Name: name, Full: full, TopLayerEnabled: true}
}

// ReserveExclusiveZone records a layer-shell exclusive zone on the given
// edge ("top", "right", "bottom", "left"), in layout pixels.
func (o *Output) ReserveExclusiveZone(edge string, amount int) {
	switch edge {
	case "top":
		o.exclusiveTop = amount
	case "right":
		o.exclusiveRight = amount
	case "bottom":
		o.exclusiveBottom = amount
	case "left":
		o.exclusiveLeft = amount
	}
}

// Usable returns the output's rectangle after subtracting all reserved
// exclusive zones.
func (o *Output) Usable() geom.Rect {
	return o.Full.Inset(o.exclusiveLeft, o.exclusiveTop, o.exclusiveRight, o.exclusiveBottom)
}

// Registry tracks the currently connected outputs by name.
type Registry struct {
	outputs map[string]*Output
	order   []string
}

// NewRegistry creates an empty output registry.
func NewRegistry() *Registry {
	return &Registry{outputs: make(map[string]*Output)}
}

// Add registers a newly connected output.
func (r *Registry) Add(o *Output) {
	if _, exists := r.outputs[o.Name]; !exists {
		r.order = append(r.order, o.Name)
	}
	r.outputs[o.Name] = o
}

// Remove unregisters an output that has been unplugged.
func (r *Registry) Remove(name string) {
	delete(r.outputs, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the named output, or nil if it is not connected.
func (r *Registry) Get(name string) *Output { return r.outputs[name] }

// All returns every connected output in connection order.
func (r *Registry) All() []*Output {
	out := make([]*Output, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.outputs[n])
	}
	return out
}
