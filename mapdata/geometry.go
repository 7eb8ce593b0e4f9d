package mapdata

import (
	"cmp"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Epsilon is the distance under which two points are considered equal.
const Epsilon = 0.001

// SideOfSegment returns a value that is positive when p is on the right (front) of the
// directed segment a->b, negative on the left and zero when p is on the segment line.
func SideOfSegment(p, a, b orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	return dy*(p[0]-a[0]) - dx*(p[1]-a[1])
}

// PointsEqual reports whether two points are within Epsilon on both axes.
func PointsEqual(a, b orb.Point) bool {
	return Abs(a[0]-b[0]) < Epsilon && Abs(a[1]-b[1]) < Epsilon
}

func Abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// SegmentIntersection returns the point where segments a1-a2 and b1-b2 cross. Parallel
// segments never intersect.
func SegmentIntersection(a1, a2, b1, b2 orb.Point) (orb.Point, bool) {
	rx, ry := a2[0]-a1[0], a2[1]-a1[1]
	sx, sy := b2[0]-b1[0], b2[1]-b1[1]
	denom := rx*sy - ry*sx
	if denom == 0 {
		return orb.Point{}, false
	}
	qx, qy := b1[0]-a1[0], b1[1]-a1[1]
	t := (qx*sy - qy*sx) / denom
	u := (qx*ry - qy*rx) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return orb.Point{}, false
	}
	return orb.Point{a1[0] + t*rx, a1[1] + t*ry}, true
}

// Bounds returns the bounding box of every vertex in the map.
func (m *Map) Bounds() orb.Bound {
	if len(m.vertices) == 0 {
		return orb.Bound{}
	}
	b := m.vertices[0].pos.Bound()
	for _, v := range m.vertices[1:] {
		b = b.Extend(v.pos)
	}
	return b
}

// VertexAt returns the vertex exactly at p, or nil.
func (m *Map) VertexAt(p orb.Point) *Vertex {
	for _, v := range m.vertices {
		if PointsEqual(v.pos, p) {
			return v
		}
	}
	return nil
}

// LineBetween returns a line connecting v1 and v2 in either direction, or nil.
func (m *Map) LineBetween(v1, v2 *Vertex) *Line {
	for _, l := range v1.lines {
		if (l.v1 == v1 && l.v2 == v2) || (l.v1 == v2 && l.v2 == v1) {
			return l
		}
	}
	return nil
}

// NearestVertex returns the index of the vertex closest to p within maxDist, or -1.
// A negative maxDist means no limit. Filtered vertices are ignored.
func (m *Map) NearestVertex(p orb.Point, maxDist float64) int {
	best, bestDist := -1, math.MaxFloat64
	for i, v := range m.vertices {
		if v.filtered {
			continue
		}
		if d := planar.Distance(p, v.pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	if maxDist >= 0 && bestDist > maxDist {
		return -1
	}
	return best
}

// NearestLine returns the index of the line closest to p within maxDist, or -1.
// A negative maxDist means no limit. Filtered lines are ignored.
func (m *Map) NearestLine(p orb.Point, maxDist float64) int {
	best, bestDist := -1, math.MaxFloat64
	for i, l := range m.lines {
		if l.filtered {
			continue
		}
		if d := l.DistanceTo(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	if maxDist >= 0 && bestDist > maxDist {
		return -1
	}
	return best
}

// NearestThing returns the index of the thing closest to p within maxDist, or -1.
func (m *Map) NearestThing(p orb.Point, maxDist float64) int {
	best, bestDist := -1, math.MaxFloat64
	for i, t := range m.things {
		if t.filtered {
			continue
		}
		if d := planar.Distance(p, t.pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	if maxDist >= 0 && bestDist > maxDist {
		return -1
	}
	return best
}

// SectorAt returns the index of the sector containing p, or -1. If broken geometry leaves
// p inside more than one sector the one with the smallest bounds wins.
func (m *Map) SectorAt(p orb.Point) int {
	best, bestArea := -1, math.MaxFloat64
	for _, s := range m.sectors {
		if !s.Contains(p) {
			continue
		}
		if area := planar.Area(s.BoundingBox()); area < bestArea {
			best, bestArea = s.index, area
		}
	}
	return best
}

// Contains reports whether p is inside the sector. It counts the boundary lines crossed by a
// ray from p towards +x, so islands and holes need no special handling. Lines with the
// sector on both sides are not boundary.
func (s *Sector) Contains(p orb.Point) bool {
	if len(s.sides) == 0 || !s.BoundingBox().Contains(p) {
		return false
	}
	inside := false
	for _, l := range s.Lines() {
		if l.FrontSector() == s && l.BackSector() == s {
			continue
		}
		a, b := l.v1.pos, l.v2.pos
		if (a[1] > p[1]) == (b[1] > p[1]) {
			continue
		}
		if x := a[0] + (p[1]-a[1])*(b[0]-a[0])/(b[1]-a[1]); x > p[0] {
			inside = !inside
		}
	}
	return inside
}

// LineCrossVertex returns the vertex closest to p1 that lies on the segment p1-p2 without
// being at either end, or nil.
func (m *Map) LineCrossVertex(p1, p2 orb.Point) *Vertex {
	var (
		best     *Vertex
		bestDist = math.MaxFloat64
		seg      = orb.LineString{p1, p2}
		box      = seg.Bound().Pad(Epsilon)
	)
	for _, v := range m.vertices {
		if PointsEqual(v.pos, p1) || PointsEqual(v.pos, p2) || !box.Contains(v.pos) {
			continue
		}
		if planar.DistanceFromSegment(p1, p2, v.pos) > Epsilon {
			continue
		}
		if d := planar.Distance(p1, v.pos); d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}

// Cut is a point where a segment crosses existing lines.
type Cut struct {
	Point orb.Point
	Lines []*Line
}

// CutLines returns every point where the segment p1-p2 crosses an existing line, sorted by
// distance from p1. Crossings at the segment ends are not included.
func (m *Map) CutLines(p1, p2 orb.Point) []Cut {
	var cuts []Cut
	for _, l := range m.lines {
		ip, ok := SegmentIntersection(p1, p2, l.v1.pos, l.v2.pos)
		if !ok || PointsEqual(ip, p1) || PointsEqual(ip, p2) {
			continue
		}
		i := slices.IndexFunc(cuts, func(c Cut) bool { return PointsEqual(c.Point, ip) })
		if i < 0 {
			cuts = append(cuts, Cut{Point: ip})
			i = len(cuts) - 1
		}
		cuts[i].Lines = append(cuts[i].Lines, l)
	}
	slices.SortFunc(cuts, func(a, b Cut) int {
		return cmp.Compare(planar.DistanceSquared(p1, a.Point), planar.DistanceSquared(p1, b.Point))
	})
	return cuts
}
