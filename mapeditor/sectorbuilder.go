package mapeditor

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/stuarthighley/doomedit/gameconfig"
	"github.com/stuarthighley/doomedit/mapdata"
	"golang.org/x/exp/slices"
)

// Edge is one side of a line. Front edges run v1->v2, back edges v2->v1, so the side
// is always on the right.
type Edge struct {
	Line  *mapdata.Line
	Front bool
}

func (e Edge) start() *mapdata.Vertex {
	if e.Front {
		return e.Line.V1()
	}
	return e.Line.V2()
}

func (e Edge) end() *mapdata.Vertex {
	if e.Front {
		return e.Line.V2()
	}
	return e.Line.V1()
}

func (e Edge) side() *mapdata.Side {
	if e.Front {
		return e.Line.Front()
	}
	return e.Line.Back()
}

// SectorBuilder traces the closed loop of lines around a point to build a sector from it.
type SectorBuilder struct {
	m     *mapdata.Map
	edges []Edge
	err   string
}

func NewSectorBuilder(m *mapdata.Map) *SectorBuilder {
	return &SectorBuilder{m: m}
}

// Edges returns the edges found by the last trace.
func (b *SectorBuilder) Edges() []Edge { return b.edges }

// Error returns why the last trace failed.
func (b *SectorBuilder) Error() string { return b.err }

// TraceSector finds the sector boundary on one side of line. Islands inside the sector are
// included along with the outer boundary.
func (b *SectorBuilder) TraceSector(line *mapdata.Line, front bool) bool {
	b.edges = nil
	b.err = ""

	edge := Edge{Line: line, Front: front}
	for i := 0; i <= b.m.NLines(); i++ {
		outline, ok := b.traceOutline(edge)
		if !ok {
			b.err = "Sector is not closed"
			return false
		}
		b.edges = append(b.edges, outline...)
		if outlineOrientation(outline) == orb.CW {
			return true
		}

		// The outline goes around an island, look for the lines enclosing it
		next, found := b.findOuterEdge(outline)
		if !found {
			b.err = "Outside of map"
			return false
		}
		if slices.Contains(b.edges, next) {
			b.err = "Sector is not closed"
			return false
		}
		edge = next
	}
	b.err = "Sector is not closed"
	return false
}

// traceOutline follows edges from start, always taking the sharpest turn keeping the side
// on the right, until it gets back to start.
func (b *SectorBuilder) traceOutline(start Edge) ([]Edge, bool) {
	outline := []Edge{start}
	visited := map[Edge]bool{start: true}
	edge := start
	for n := 0; n <= 2*b.m.NLines(); n++ {
		next := nextEdge(edge)
		if next == start {
			return outline, true
		}
		if visited[next] {
			return nil, false
		}
		visited[next] = true
		outline = append(outline, next)
		edge = next
	}
	return nil, false
}

// nextEdge returns the edge leaving the end vertex of e with the smallest counter-clockwise
// angle from e's own line. A dead end turns back along the same line.
func nextEdge(e Edge) Edge {
	v := e.end()
	back := e.start().Pos()
	backAngle := math.Atan2(back[1]-v.Y(), back[0]-v.X())

	best := Edge{Line: e.Line, Front: !e.Front}
	bestAngle := math.MaxFloat64
	for _, l := range v.ConnectedLines() {
		if l == e.Line || l.IsZeroLength() {
			continue
		}
		cand := Edge{Line: l, Front: l.V1() == v}
		to := cand.end().Pos()
		angle := math.Atan2(to[1]-v.Y(), to[0]-v.X()) - backAngle
		for angle <= 0 {
			angle += 2 * math.Pi
		}
		if angle < bestAngle {
			best, bestAngle = cand, angle
		}
	}
	return best
}

func outlineOrientation(outline []Edge) orb.Orientation {
	ring := make(orb.Ring, 0, len(outline)+1)
	for _, e := range outline {
		ring = append(ring, e.start().Pos())
	}
	ring = append(ring, outline[0].start().Pos())
	return ring.Orientation()
}

// findOuterEdge casts a ray towards +x from the rightmost vertex of an island outline and
// returns the side of the first line it hits that faces the island.
func (b *SectorBuilder) findOuterEdge(outline []Edge) (Edge, bool) {
	var lines []*mapdata.Line
	origin := outline[0].start().Pos()
	for _, e := range outline {
		lines = append(lines, e.Line)
		if p := e.start().Pos(); p[0] > origin[0] {
			origin = p
		}
	}

	var hit *mapdata.Line
	hitX := math.MaxFloat64
	for _, l := range b.m.Lines() {
		if slices.Contains(lines, l) {
			continue
		}
		a, c := l.Start(), l.End()
		if a[1] == c[1] || (a[1] > origin[1]) == (c[1] > origin[1]) {
			continue
		}
		x := a[0] + (origin[1]-a[1])*(c[0]-a[0])/(c[1]-a[1])
		if x > origin[0] && x < hitX {
			hit, hitX = l, x
		}
	}
	if hit == nil {
		return Edge{}, false
	}
	return Edge{Line: hit, Front: hit.SideOf(origin) > 0}, true
}

// FindExistingSector returns the sector most of the traced sides already belong to, or nil.
func (b *SectorBuilder) FindExistingSector() *mapdata.Sector {
	counts := map[*mapdata.Sector]int{}
	var best *mapdata.Sector
	for _, e := range b.edges {
		side := e.side()
		if side == nil || side.Sector() == nil {
			continue
		}
		counts[side.Sector()]++
		if best == nil || counts[side.Sector()] > counts[best] {
			best = side.Sector()
		}
	}
	return best
}

// CreateSector assigns the traced sides to sector, creating the sides that are missing.
// With a nil sector a new one is created with the properties of copyFrom, or the
// configuration defaults when copyFrom is nil too.
func (b *SectorBuilder) CreateSector(sector, copyFrom *mapdata.Sector, cfg *gameconfig.Configuration) *mapdata.Sector {
	if len(b.edges) == 0 {
		return nil
	}
	if sector == nil {
		sector = b.m.CreateSector()
		if copyFrom != nil {
			sector.CopyProps(copyFrom)
		} else if cfg != nil {
			cfg.ApplyDefaults(sector)
		}
	}

	for _, e := range b.edges {
		if side := e.side(); side != nil {
			side.SetSector(sector)
			continue
		}

		side := b.m.CreateSide(sector)
		if cfg != nil {
			cfg.ApplyDefaults(side)
		}
		l := e.Line
		if e.Front {
			l.SetFront(side)
		} else if l.Front() == nil {
			l.Flip(false)
			l.SetFront(side)
		} else {
			l.SetBack(side)
		}
		setLineSidedness(l)
	}
	return sector
}

// setLineSidedness updates the two-sided and blocking flags and the wall textures of a line
// after sides were added to it.
func setLineSidedness(l *mapdata.Line) {
	front, back := l.Front(), l.Back()
	if front == nil {
		return
	}
	if back == nil {
		l.SetBoolProp(mapdata.PropTwoSided, false)
		l.SetBoolProp(mapdata.PropBlocking, true)
		if front.TextureMiddle() == mapdata.NoTexture && front.TextureTop() != mapdata.NoTexture {
			front.SetStringProp(mapdata.PropTextureMiddle, front.TextureTop())
		}
		return
	}

	l.SetBoolProp(mapdata.PropTwoSided, true)
	l.SetBoolProp(mapdata.PropBlocking, false)
	for _, side := range []*mapdata.Side{front, back} {
		if mid := side.TextureMiddle(); mid != mapdata.NoTexture {
			if side.TextureTop() == mapdata.NoTexture {
				side.SetStringProp(mapdata.PropTextureTop, mid)
			}
			if side.TextureBottom() == mapdata.NoTexture {
				side.SetStringProp(mapdata.PropTextureBottom, mid)
			}
			side.SetStringProp(mapdata.PropTextureMiddle, mapdata.NoTexture)
		}
	}
}

// CorrectSectors rebuilds the sectors on both sides of lines. With existingOnly set, only
// sides that already exist are reassigned and no sector is created. Otherwise an existing
// sector found by a trace is reused the first time and copied afterwards.
func (s *Session) CorrectSectors(lines []*mapdata.Line, existingOnly bool) int {
	var edges []Edge
	for _, l := range lines {
		if !l.IsInMap() {
			continue
		}
		if !existingOnly || l.Front() != nil {
			edges = append(edges, Edge{Line: l, Front: true})
		}
		if !existingOnly || l.Back() != nil {
			edges = append(edges, Edge{Line: l, Front: false})
		}
	}

	done := map[Edge]bool{}
	reused := map[*mapdata.Sector]bool{}
	var changed []*mapdata.Line
	built := 0
	builder := NewSectorBuilder(s.m)
	for _, e := range edges {
		if done[e] || !e.Line.IsInMap() {
			continue
		}
		if !builder.TraceSector(e.Line, e.Front) {
			continue
		}
		for _, te := range builder.Edges() {
			done[te] = true
			changed = append(changed, te.Line)
		}

		existing := builder.FindExistingSector()
		var sector, copyFrom *mapdata.Sector
		switch {
		case existingOnly && existing == nil:
			continue
		case existingOnly:
			sector = existing
		case existing != nil && !reused[existing]:
			sector = existing
			reused[existing] = true
		default:
			copyFrom = existing
		}
		builder.CreateSector(sector, copyFrom, s.cfg)
		built++
	}

	for _, l := range changed {
		if l.IsInMap() {
			l.ClearUnneededTextures()
		}
	}
	s.m.RemoveUnusedSectors()
	logger.Printf("Corrected %d sectors from %d lines", built, len(lines))
	return built
}

// CreateSector builds a sector around p. It only works in sectors mode.
func (s *Session) CreateSector(p orb.Point) bool {
	if s.mode != ModeSectors {
		return false
	}
	li := s.m.NearestLine(p, -1)
	if li < 0 {
		s.AddMessage("No lines to build a sector from")
		return false
	}
	line := s.m.Line(li)
	builder := NewSectorBuilder(s.m)

	ok := false
	s.record("Create Sector", func() bool {
		if !builder.TraceSector(line, line.PointOnFront(p)) {
			s.AddMessage(builder.Error())
			return true
		}
		sector := builder.CreateSector(nil, builder.FindExistingSector(), s.cfg)
		s.AddMessage(fmt.Sprintf("Created sector #%d", sector.Index()))
		ok = true
		return true
	})
	if ok {
		s.hilight = -1
		s.clearSelection()
	}
	return ok
}
