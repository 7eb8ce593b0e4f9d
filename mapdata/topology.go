package mapdata

import (
	"github.com/paulmach/orb"
	"golang.org/x/exp/slices"
)

// maxMergePasses bounds the intersection splitting loop in MergeArch.
const maxMergePasses = 10000

// SplitLine splits l at v. l keeps its start and now ends at v, the returned new line runs
// from v to the old end. Sides are duplicated and their x offsets adjusted so textures stay
// in place.
func (m *Map) SplitLine(l *Line, v *Vertex) *Line {
	end := l.v2
	l.SetV2(v)
	nl := m.CreateLine(v, end, true)
	nl.CopyProps(l)

	if l.front != nil {
		s := m.DuplicateSide(l.front)
		s.SetIntProp(PropOffsetX, s.IntProp(PropOffsetX)+int(l.Length()))
		nl.SetFront(s)
	}
	if l.back != nil {
		s := m.DuplicateSide(l.back)
		nl.SetBack(s)
		l.back.SetIntProp(PropOffsetX, l.back.IntProp(PropOffsetX)+int(nl.Length()))
	}
	return nl
}

// SplitLineAt splits l at v if v lies on it and is not already one of its ends. It returns
// the new line, or nil if nothing was split.
func (m *Map) SplitLineAt(l *Line, v *Vertex) *Line {
	if !l.inMap || l.HasVertex(v) || l.DistanceTo(v.pos) > Epsilon {
		return nil
	}
	return m.SplitLine(l, v)
}

// MergeVerticesPoint merges every vertex at p into one, relinking their lines. It returns the
// remaining vertex, or nil if there is no vertex at p.
func (m *Map) MergeVerticesPoint(p orb.Point) *Vertex {
	var keep *Vertex
	var merge []*Vertex
	for _, v := range m.vertices {
		if !PointsEqual(v.pos, p) {
			continue
		}
		if keep == nil {
			keep = v
		} else {
			merge = append(merge, v)
		}
	}
	for _, v := range merge {
		m.relinkVertex(v, keep)
		m.RemoveVertex(v)
	}
	return keep
}

// MergeVertices merges vertex from into vertex into.
func (m *Map) MergeVertices(into, from *Vertex) {
	if into == from {
		return
	}
	m.relinkVertex(from, into)
	m.RemoveVertex(from)
}

func (m *Map) relinkVertex(from, to *Vertex) {
	for _, l := range slices.Clone(from.lines) {
		if l.v1 == from {
			l.SetV1(to)
		}
		if l.v2 == from {
			l.SetV2(to)
		}
	}
}

// MergeLines removes line dup, which must connect the same two vertices as keep. When keep
// is one-sided it inherits the side of dup facing away from it.
func (m *Map) MergeLines(keep, dup *Line) {
	if keep.back == nil {
		var side *Side
		if dup.v1 == keep.v1 {
			side = dup.back
		} else {
			side = dup.front
		}
		if side != nil && side.sector != keep.FrontSector() {
			if dup.front == side {
				dup.SetFront(nil)
			} else {
				dup.SetBack(nil)
			}
			keep.SetBack(side)
		}
	}
	m.RemoveLine(dup)
}

// MergeArch reconciles the map topology after the given vertices were moved. Vertices that
// now coincide are merged, lines are split at vertices lying on them and where they cross
// other lines, overlapping lines are merged and zero length lines removed.
//
// It returns the lines now connected to the moved vertices and whether anything changed.
func (m *Map) MergeArch(moved []*Vertex, splitDist float64) ([]*Line, bool) {
	nVerts, nLines := len(m.vertices), len(m.lines)
	changed := false

	// Merge coincident vertices
	var verts []*Vertex
	for _, v := range moved {
		if !v.inMap {
			continue
		}
		if mv := m.MergeVerticesPoint(v.pos); mv != nil && !slices.Contains(verts, mv) {
			verts = append(verts, mv)
		}
	}

	var check []*Line
	addCheck := func(lines ...*Line) {
		for _, l := range lines {
			if !slices.Contains(check, l) {
				check = append(check, l)
			}
		}
	}
	for _, v := range verts {
		addCheck(v.lines...)
	}

	// Split lines passing through moved vertices
	for _, v := range verts {
		for i := 0; i < len(m.lines); i++ {
			l := m.lines[i]
			if l.HasVertex(v) || l.IsZeroLength() || l.DistanceTo(v.pos) > splitDist {
				continue
			}
			addCheck(l, m.SplitLine(l, v))
			changed = true
		}
	}

	// Split moved lines passing through other vertices
	for i := 0; i < len(check); i++ {
		l := check[i]
		if !l.inMap || l.IsZeroLength() {
			continue
		}
		for _, v := range m.vertices {
			if l.HasVertex(v) || l.DistanceTo(v.pos) > splitDist {
				continue
			}
			addCheck(m.SplitLine(l, v))
			changed = true
			i--
			break
		}
	}

	// Split at line crossings
	for i, passes := 0, 0; i < len(check) && passes < maxMergePasses; i, passes = i+1, passes+1 {
		l := check[i]
		if !l.inMap || l.IsZeroLength() {
			continue
		}
		for _, o := range m.lines {
			if o == l || l.SharesVertex(o) || o.IsZeroLength() {
				continue
			}
			ip, ok := SegmentIntersection(l.v1.pos, l.v2.pos, o.v1.pos, o.v2.pos)
			if !ok || PointsEqual(ip, l.v1.pos) || PointsEqual(ip, l.v2.pos) ||
				PointsEqual(ip, o.v1.pos) || PointsEqual(ip, o.v2.pos) {
				continue
			}
			// Both lines are split explicitly, the split distance may be too small to
			// reach them from a rounded intersection point
			v := m.CreateVertex(ip, splitDist)
			m.SplitLineAt(l, v)
			m.SplitLineAt(o, v)
			addCheck(v.lines...)
			changed = true
			i--
			break
		}
	}

	// Merge overlapping lines
	for _, l := range check {
		if !l.inMap {
			continue
		}
		for _, o := range slices.Clone(l.v1.lines) {
			if o == l || !o.inMap {
				continue
			}
			if (o.v1 == l.v1 && o.v2 == l.v2) || (o.v1 == l.v2 && o.v2 == l.v1) {
				m.MergeLines(l, o)
				changed = true
			}
		}
	}

	if m.RemoveZeroLengthLines() > 0 {
		changed = true
	}

	var result []*Line
	for _, l := range check {
		if l.inMap && !slices.Contains(result, l) {
			result = append(result, l)
		}
	}
	for _, v := range verts {
		if !v.inMap {
			continue
		}
		for _, l := range v.lines {
			if !slices.Contains(result, l) {
				result = append(result, l)
			}
		}
	}

	changed = changed || len(m.vertices) != nVerts || len(m.lines) != nLines
	return result, changed
}
