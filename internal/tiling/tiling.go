// Package tiling implements the Tiling Engine (C4): it arranges all
// tileable views on the current workspace into a grid per output, honoring
// a single manually-resized "anchor" view and proactively filling leftover
// space, per spec.md §4.4. Tiling never fails the compositor — a geometry
// step that would produce a negative dimension is simply skipped for that
// view.
//
// Open questions resolved here, per spec.md §9 and SPEC_FULL.md §5:
//   - the anchor's "adjacent views" are decided per call by a geometric
//     check of each candidate's current rectangle against the anchor's
//     (a shared edge within gap+5 pixels, or overlap); no adjacency graph
//     is built or kept between calls.
//   - proactive fill iterates candidates in stacking order (back-to-front),
//     fixed, not insertion/map order.
package tiling

import (
	"sort"

	"labwc.dev/core/internal/geom"
	"labwc.dev/core/internal/view"
	"labwc.dev/core/log"
)

var logger = log.New("tiling")

// Candidate is a tileable view as seen by the engine: just enough to
// compute and commit a new rectangle, decoupled from the full view.View
// type so the algorithm is testable without a registry.
type Candidate struct {
	Handle           view.Handle
	Rect             geom.Rect
	PreferVertical   bool
	PreferHorizontal bool
	// IsAnchor marks the single most-recently user-resized view among the
	// candidates, if any. At most one candidate may set this.
	IsAnchor bool
}

// Margins is the SSD thickness subtracted from internal boxes to produce
// committed client geometry (spec.md §4.4 "Geometry with SSD margins").
type Margins struct {
	Top, Right, Bottom, Left int
}

func (m Margins) apply(r geom.Rect) geom.Rect {
	return geom.Rect{
		X: r.X + m.Left,
		Y: r.Y + m.Top,
		W: r.W - m.Left - m.Right,
		H: r.H - m.Top - m.Bottom,
	}
}

// Options configures one Compute call.
type Options struct {
	Usable   geom.Rect
	Gap      int
	GridMode bool // tiling_grid_mode: disables anchor preservation and fill
	Margins  Margins
}

// Compute lays candidates out within opts.Usable and returns the committed
// geometry for every candidate whose geometry math did not go negative.
// Candidates not present in the returned map should not be re-committed
// (their existing geometry is left alone, per the no-commit-on-failure and
// anchor-non-adjacent rules).
func Compute(candidates []Candidate, opts Options) map[view.Handle]geom.Rect {
	result := make(map[view.Handle]geom.Rect)
	n := len(candidates)
	if n == 0 {
		return result
	}
	logger.Debugf("computing layout for %d candidates (grid-mode=%t gap=%d)", n, opts.GridMode, opts.Gap)

	var anchor *Candidate
	var rest []Candidate
	if !opts.GridMode {
		for i := range candidates {
			if candidates[i].IsAnchor {
				a := candidates[i]
				anchor = &a
				continue
			}
			rest = append(rest, candidates[i])
		}
	} else {
		rest = candidates
	}

	if anchor == nil {
		placeGrid(rest, opts.Usable, opts.Gap, opts.Margins, result)
		if !opts.GridMode {
			proactiveFill(candidates, result, opts)
		}
		return result
	}

	anchorRect := anchor.Rect.Clamp(opts.Usable)
	adjacent, nonAdjacent := splitAdjacent(anchorRect, rest, opts.Gap)

	remaining := remainingSpaceRect(opts.Usable, anchorRect, adjacent)
	placeGrid(adjacent, remaining, opts.Gap, opts.Margins, result)

	for _, v := range nonAdjacent {
		result[v.Handle] = opts.Margins.apply(v.Rect)
	}

	anchorRect = adjustAnchor(anchorRect, nonAdjacent, adjacent, opts.Usable, opts.Gap)
	result[anchor.Handle] = opts.Margins.apply(anchorRect)

	if !opts.GridMode {
		all := append(append([]Candidate{}, adjacent...), *anchor)
		proactiveFillBounded(all, result, opts, nonAdjacent)
	}

	return result
}

// gridDims picks (cols, rows) for n candidates, using the lookup table in
// spec.md §4.4 step 3, tie-broken by screen aspect ratio and declared
// preference.
func gridDims(n int, aspect float64, preferVertical, preferHorizontal bool) (cols, rows int, splitLeft2Right bool, lastRowOne bool) {
	switch n {
	case 1:
		return 1, 1, false, false
	case 2:
		return 2, 1, false, false
	case 3:
		vertical := preferVertical || (!preferHorizontal && aspect <= 1.5)
		if vertical {
			return 2, 2, true, false
		}
		return 2, 2, false, true
	case 4:
		return 2, 2, false, false
	case 5:
		vertical := preferVertical || (!preferHorizontal && aspect <= 1.3)
		if vertical {
			return 2, 3, false, false
		}
		return 3, 2, false, false
	case 6:
		return 3, 2, false, false
	default:
		cols = 3
		rows = (n + 2) / 3
		return cols, rows, false, false
	}
}

func aspectAndPreference(candidates []Candidate, area geom.Rect) (aspect float64, preferVertical, preferHorizontal bool) {
	if area.H > 0 {
		aspect = float64(area.W) / float64(area.H)
	}
	for _, c := range candidates {
		if c.PreferVertical {
			preferVertical = true
		}
		if c.PreferHorizontal {
			preferHorizontal = true
		}
	}
	return
}

// placeGrid lays out candidates within area per the cell-math rules in
// spec.md §4.4 step 5, including the "1 left + 2 right" special layout
// (step 6) and the last-row/last-column rounding-remainder absorption.
func placeGrid(candidates []Candidate, area geom.Rect, gap int, margins Margins, result map[view.Handle]geom.Rect) {
	n := len(candidates)
	if n == 0 {
		return
	}
	aspect, pv, ph := aspectAndPreference(candidates, area)
	cols, rows, splitLeft2Right, _ := gridDims(n, aspect, pv, ph)

	if n == 3 && splitLeft2Right {
		placeLeft2Right(candidates, area, gap, margins, result)
		return
	}

	cellW := (area.W - (cols+1)*gap) / cols
	cellH := (area.H - (rows+1)*gap) / rows

	idx := 0
	for row := 0; row < rows && idx < n; row++ {
		remainingInRow := n - idx
		rowCount := cols
		if row == rows-1 {
			lastRowCount := n % cols
			if lastRowCount == 0 {
				lastRowCount = cols
			}
			rowCount = lastRowCount
		}
		if rowCount > remainingInRow {
			rowCount = remainingInRow
		}

		w := cellW
		if rowCount != cols {
			w = (area.W - (rowCount+1)*gap) / rowCount
		}
		h := cellH
		isLastRow := row == rows-1

		for col := 0; col < rowCount && idx < n; col++ {
			x := area.X + gap + col*(w+gap)
			y := area.Y + gap + row*(cellH+gap)
			cw, ch := w, h
			if col == rowCount-1 {
				cw = area.X + area.W - gap - x
			}
			if isLastRow {
				ch = area.Y + area.H - gap - y
			}
			r := geom.Rect{X: x, Y: y, W: cw, H: ch}
			commit(candidates[idx].Handle, r, margins, result)
			idx++
		}
	}
}

// placeLeft2Right implements the special n=3 vertical-split layout: a
// full-height left cell, and a right column split into two equal
// half-height cells.
func placeLeft2Right(candidates []Candidate, area geom.Rect, gap int, margins Margins, result map[view.Handle]geom.Rect) {
	leftW := (area.W - 3*gap) / 2
	rightW := area.X + area.W - gap - (area.X + gap + leftW + gap)
	leftRect := geom.Rect{X: area.X + gap, Y: area.Y + gap, W: leftW, H: area.H - 2*gap}
	rightX := area.X + gap + leftW + gap
	rightCellH := (area.H - 3*gap) / 2
	topRight := geom.Rect{X: rightX, Y: area.Y + gap, W: rightW, H: rightCellH}
	bottomRight := geom.Rect{X: rightX, Y: area.Y + gap + rightCellH + gap, W: rightW, H: area.Y + area.H - gap - (area.Y + gap + rightCellH + gap)}

	commit(candidates[0].Handle, leftRect, margins, result)
	if len(candidates) > 1 {
		commit(candidates[1].Handle, topRight, margins, result)
	}
	if len(candidates) > 2 {
		commit(candidates[2].Handle, bottomRight, margins, result)
	}
}

func commit(h view.Handle, r geom.Rect, margins Margins, result map[view.Handle]geom.Rect) {
	committed := margins.apply(r)
	if committed.Empty() {
		return
	}
	result[h] = committed
}

// splitAdjacent partitions rest into the views adjacent to anchorRect
// (sharing an edge within gap+5 tolerance, or overlapping on one axis) and
// the rest, per spec.md §4.4 step 4.
func splitAdjacent(anchorRect geom.Rect, rest []Candidate, gap int) (adjacent, nonAdjacent []Candidate) {
	tolerance := gap + 5
	for _, c := range rest {
		if isAdjacent(anchorRect, c.Rect, tolerance) {
			adjacent = append(adjacent, c)
		} else {
			nonAdjacent = append(nonAdjacent, c)
		}
	}
	return
}

func isAdjacent(a, b geom.Rect, tolerance int) bool {
	// An anchor that grew into a neighbor's former space now literally
	// overlaps it; treat that as adjacency too, since the neighbor needs
	// to be retiled out of the way.
	if a.Intersects(b) {
		return true
	}
	// Shares a vertical edge (left/right) within tolerance, while
	// overlapping on the Y axis.
	if geom.Overlaps1D(a.Y, a.Bottom(), b.Y, b.Bottom()) {
		if absDiff(a.Right(), b.X) <= tolerance || absDiff(b.Right(), a.X) <= tolerance {
			return true
		}
	}
	// Shares a horizontal edge (top/bottom) within tolerance, while
	// overlapping on the X axis.
	if geom.Overlaps1D(a.X, a.Right(), b.X, b.Right()) {
		if absDiff(a.Bottom(), b.Y) <= tolerance || absDiff(b.Bottom(), a.Y) <= tolerance {
			return true
		}
	}
	return false
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// remainingSpaceRect chooses the rectangle the adjacent group is retiled
// into: the side of the anchor where the adjacent group lies if it's
// exclusively one side, otherwise the largest free strip by area.
func remainingSpaceRect(usable, anchorRect geom.Rect, adjacent []Candidate) geom.Rect {
	onlyRight, onlyLeft, onlyTop, onlyBottom := true, true, true, true
	any := false
	for _, c := range adjacent {
		any = true
		if c.Rect.X < anchorRect.X {
			onlyRight = false
		} else {
			onlyLeft = false
		}
		if c.Rect.Y < anchorRect.Y {
			onlyBottom = false
		} else {
			onlyTop = false
		}
	}
	strips := freeStrips(usable, anchorRect)
	if any {
		if onlyRight && !onlyLeft {
			return strips["right"]
		}
		if onlyLeft && !onlyRight {
			return strips["left"]
		}
		if onlyBottom && !onlyTop {
			return strips["bottom"]
		}
		if onlyTop && !onlyBottom {
			return strips["top"]
		}
	}
	// Largest free strip by area.
	best := strips["right"]
	for _, name := range []string{"left", "top", "bottom"} {
		s := strips[name]
		if s.W*s.H > best.W*best.H {
			best = s
		}
	}
	return best
}

func freeStrips(usable, anchorRect geom.Rect) map[string]geom.Rect {
	return map[string]geom.Rect{
		"right":  {X: anchorRect.Right(), Y: usable.Y, W: usable.Right() - anchorRect.Right(), H: usable.H},
		"left":   {X: usable.X, Y: usable.Y, W: anchorRect.X - usable.X, H: usable.H},
		"top":    {X: usable.X, Y: usable.Y, W: usable.W, H: anchorRect.Y - usable.Y},
		"bottom": {X: usable.X, Y: anchorRect.Bottom(), W: usable.W, H: usable.Bottom() - anchorRect.Bottom()},
	}
}

// adjustAnchor implements spec.md §4.4 step 7: shrink the anchor to avoid
// overlapping non-adjacent fixed views (on whichever side it penetrates,
// falling back to the other side), clamp to usable, and — if there are no
// overlaps, empty space exists, and no adjacent view blocks that
// direction — expand into the largest free direction, preferring
// horizontal.
func adjustAnchor(anchorRect geom.Rect, nonAdjacent, adjacent []Candidate, usable geom.Rect, gap int) geom.Rect {
	r := anchorRect
	for _, fixed := range nonAdjacent {
		if !r.Intersects(fixed.Rect) {
			continue
		}
		// Try shrinking from whichever side penetrates the fixed view;
		// fall back to the other side if that doesn't resolve it.
		if r.Right() > fixed.Rect.X && r.X < fixed.Rect.X {
			shrunk := r
			shrunk.W = fixed.Rect.X - r.X
			if !shrunk.Empty() {
				r = shrunk
				continue
			}
		}
		if r.X < fixed.Rect.Right() && r.Right() > fixed.Rect.Right() {
			shrunk := r
			shrunk.X = fixed.Rect.Right()
			shrunk.W = r.Right() - shrunk.X
			if !shrunk.Empty() {
				r = shrunk
			}
		}
	}
	r = r.Clamp(usable)

	hasOverlap := false
	for _, fixed := range nonAdjacent {
		if r.Intersects(fixed.Rect) {
			hasOverlap = true
			break
		}
	}
	if !hasOverlap {
		strips := freeStrips(usable, r)
		blocked := map[string]bool{}
		for name, strip := range strips {
			for _, a := range adjacent {
				if strip.Intersects(a.Rect) {
					blocked[name] = true
					break
				}
			}
		}
		type dir struct {
			name  string
			horiz bool
		}
		dirs := []dir{
			{"right", true},
			{"left", true},
			{"bottom", false},
			{"top", false},
		}
		sort.SliceStable(dirs, func(i, j int) bool {
			if dirs[i].horiz != dirs[j].horiz {
				return dirs[i].horiz
			}
			return false
		})
		best, bestSpan, bestHoriz := "", 0, false
		for _, d := range dirs {
			if blocked[d.name] {
				continue
			}
			strip := strips[d.name]
			// Only treat a strip as real empty space, not the routine
			// gap margin always left at a usable edge.
			var span int
			if d.horiz {
				span = strip.W
			} else {
				span = strip.H
			}
			if span <= gap {
				continue
			}
			// dirs lists horizontal directions first, so a vertical strip
			// is only chosen when no horizontal one qualifies.
			if best == "" || (d.horiz == bestHoriz && span > bestSpan) {
				best, bestSpan, bestHoriz = d.name, span, d.horiz
			}
		}
		if best != "" {
			strip := strips[best]
			switch best {
			case "right":
				r.W += strip.W
			case "left":
				r.X -= strip.W
				r.W += strip.W
			case "bottom":
				r.H += strip.H
			case "top":
				r.Y -= strip.H
				r.H += strip.H
			}
		}
	}
	return r
}

// proactiveFill implements spec.md §4.4 step 8 for the no-anchor case:
// up to 10 passes expanding views whose outer edge aligns with empty space
// on any side of the output's bounding rectangle.
func proactiveFill(candidates []Candidate, result map[view.Handle]geom.Rect, opts Options) {
	proactiveFillBounded(candidates, result, opts, nil)
}

// proactiveFillBounded runs proactiveFill but stops each direction's
// expansion short of any view in fixed (the anchor's non-adjacent fixed
// views, which are not themselves part of candidates and so never appear
// in bound, but still occupy space the fill pass must not grow into).
func proactiveFillBounded(candidates []Candidate, result map[view.Handle]geom.Rect, opts Options, fixed []Candidate) {
	tolerance := opts.Gap + 5
	for pass := 0; pass < 10; pass++ {
		expanded := false

		bound := boundingRect(candidates, result)
		if bound.Empty() {
			return
		}

		sides := map[string]int{
			"left":   bound.X - opts.Usable.X,
			"top":    bound.Y - opts.Usable.Y,
			"right":  opts.Usable.Right() - bound.Right(),
			"bottom": opts.Usable.Bottom() - bound.Bottom(),
		}
		for side, empty := range sides {
			sides[side] = clipAgainstFixed(side, empty, bound, fixed)
		}

		for side, empty := range sides {
			if empty <= opts.Gap {
				continue
			}
			for _, c := range candidates {
				if c.IsAnchor {
					continue
				}
				r, ok := result[c.Handle]
				if !ok {
					continue
				}
				aligned := false
				switch side {
				case "left":
					aligned = absDiff(r.X, bound.X) <= tolerance
				case "top":
					aligned = absDiff(r.Y, bound.Y) <= tolerance
				case "right":
					aligned = absDiff(r.Right(), bound.Right()) <= tolerance
				case "bottom":
					aligned = absDiff(r.Bottom(), bound.Bottom()) <= tolerance
				}
				if !aligned {
					continue
				}
				switch side {
				case "left":
					r.X -= empty
					r.W += empty
				case "top":
					r.Y -= empty
					r.H += empty
				case "right":
					r.W += empty
				case "bottom":
					r.H += empty
				}
				if r.Empty() {
					continue
				}
				result[c.Handle] = r
				expanded = true
			}
		}

		if !expanded {
			return
		}
	}
}

// clipAgainstFixed reduces an empty-space measurement on the given side of
// bound to stop short of the nearest fixed view that overlaps bound's
// perpendicular span on that side.
func clipAgainstFixed(side string, empty int, bound geom.Rect, fixed []Candidate) int {
	for _, f := range fixed {
		switch side {
		case "left":
			if f.Rect.Bottom() <= bound.Y || f.Rect.Y >= bound.Bottom() {
				continue
			}
			if f.Rect.Right() <= bound.X {
				if avail := bound.X - f.Rect.Right(); avail < empty {
					empty = avail
				}
			}
		case "right":
			if f.Rect.Bottom() <= bound.Y || f.Rect.Y >= bound.Bottom() {
				continue
			}
			if f.Rect.X >= bound.Right() {
				if avail := f.Rect.X - bound.Right(); avail < empty {
					empty = avail
				}
			}
		case "top":
			if f.Rect.Right() <= bound.X || f.Rect.X >= bound.Right() {
				continue
			}
			if f.Rect.Bottom() <= bound.Y {
				if avail := bound.Y - f.Rect.Bottom(); avail < empty {
					empty = avail
				}
			}
		case "bottom":
			if f.Rect.Right() <= bound.X || f.Rect.X >= bound.Right() {
				continue
			}
			if f.Rect.Y >= bound.Bottom() {
				if avail := f.Rect.Y - bound.Bottom(); avail < empty {
					empty = avail
				}
			}
		}
	}
	return empty
}

func boundingRect(candidates []Candidate, result map[view.Handle]geom.Rect) geom.Rect {
	first := true
	var b geom.Rect
	for _, c := range candidates {
		r, ok := result[c.Handle]
		if !ok {
			continue
		}
		if first {
			b = r
			first = false
			continue
		}
		if r.X < b.X {
			b.W += b.X - r.X
			b.X = r.X
		}
		if r.Y < b.Y {
			b.H += b.Y - r.Y
			b.Y = r.Y
		}
		if r.Right() > b.Right() {
			b.W = r.Right() - b.X
		}
		if r.Bottom() > b.Bottom() {
			b.H = r.Bottom() - b.Y
		}
	}
	return b
}
