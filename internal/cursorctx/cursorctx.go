// Package cursorctx resolves what lies under the cursor by walking the
// scene graph upward from the hit node until a descriptor tag is found.
// The real scene graph is an excluded external collaborator (see spec.md
// §1); Node stands in for it so the walk and its SSD refinement are
// independently testable.
package cursorctx

// Kind classifies a cursor hit.
type Kind int

const (
	KindNone Kind = iota
	KindRoot
	KindClientSurface
	KindLayerSurface
	KindMenuItem
	KindCycleOSDItem
	KindSSD
	KindUnmanagedX
)

// SSDPart refines a KindSSD hit to a specific decoration element.
type SSDPart int

const (
	SSDPartNone SSDPart = iota
	SSDPartTitlebar
	SSDPartTitle
	SSDPartButton
	SSDPartBorderTop
	SSDPartBorderRight
	SSDPartBorderBottom
	SSDPartBorderLeft
	SSDPartCornerTopLeft
	SSDPartCornerTopRight
	SSDPartCornerBottomLeft
	SSDPartCornerBottomRight
)

// Descriptor is the opaque tag a scene node carries, standing in for the
// small tagged handle the design notes describe replacing a raw
// scene-node "data" back-pointer with.
type Descriptor struct {
	Kind Kind
	// SSDPart is only meaningful when Kind == KindSSD.
	SSDPart SSDPart
	// ViewHandle, as a string, identifies the owning view for
	// KindClientSurface/KindSSD hits. Left empty otherwise.
	ViewHandle string
}

// Node is a single scene-graph node: it may carry a descriptor and has a
// parent, exactly the shape the walk-to-root loop needs.
type Node interface {
	Descriptor() (Descriptor, bool)
	Parent() Node
}

// Resolve walks from hit upward until a node carrying a descriptor is
// found, returning KindNone if the walk reaches the root without one.
func Resolve(hit Node) Descriptor {
	for n := hit; n != nil; n = n.Parent() {
		if d, ok := n.Descriptor(); ok {
			return d
		}
	}
	return Descriptor{Kind: KindNone}
}

// SurfaceLocalRound implements the per-surface rounding workaround: a
// fractional surface-local cursor coordinate is clamped at (w-1, h-1) so
// hit-testing against integer-sized client buffers never reads one pixel
// past the edge.
func SurfaceLocalRound(x, y float64, w, h int) (int, int) {
	ix, iy := int(x), int(y)
	if ix > w-1 {
		ix = w - 1
	}
	if iy > h-1 {
		iy = h - 1
	}
	if ix < 0 {
		ix = 0
	}
	if iy < 0 {
		iy = 0
	}
	return ix, iy
}

// ResizeEdge is the refined hit-test result for an SSD border/corner hit.
type ResizeEdge struct {
	Top, Right, Bottom, Left bool
}

// None reports whether no edge or corner was hit.
func (e ResizeEdge) None() bool { return !e.Top && !e.Right && !e.Bottom && !e.Left }

// ResizeHitTest refines an SSD hit at surface-local (x, y) within a
// decoration border of the given thickness around a w×h client area into
// the specific edge/corner context, for SSDPartBorder*/SSDPartCorner*
// descriptors. cornerSize controls how large the diagonal corner regions
// are, carved out of the border thickness near each end.
func ResizeHitTest(x, y, w, h, thickness, cornerSize int) ResizeEdge {
	var e ResizeEdge
	if x < thickness {
		e.Left = true
	}
	if x >= w-thickness {
		e.Right = true
	}
	if y < thickness {
		e.Top = true
	}
	if y >= h-thickness {
		e.Bottom = true
	}
	// Outside the corner region, only one of the two adjoining edges
	// should remain set, so a hit along a long straight edge away from
	// the corner resolves to a pure edge, not an edge+corner ambiguity.
	if e.Left && e.Top && (x > cornerSize || y > cornerSize) {
		if x > cornerSize {
			e.Left = false
		} else {
			e.Top = false
		}
	}
	if e.Right && e.Top && (w-x > cornerSize || y > cornerSize) {
		if w-x > cornerSize {
			e.Right = false
		} else {
			e.Top = false
		}
	}
	if e.Left && e.Bottom && (x > cornerSize || h-y > cornerSize) {
		if x > cornerSize {
			e.Left = false
		} else {
			e.Bottom = false
		}
	}
	if e.Right && e.Bottom && (w-x > cornerSize || h-y > cornerSize) {
		if w-x > cornerSize {
			e.Right = false
		} else {
			e.Bottom = false
		}
	}
	return e
}
