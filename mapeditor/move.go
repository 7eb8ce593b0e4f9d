package mapeditor

import (
	"github.com/paulmach/orb"
	"github.com/stuarthighley/doomedit/mapdata"
	"github.com/stuarthighley/doomedit/undo"
	"golang.org/x/exp/slices"
)

type moveState struct {
	active   bool
	items    []int
	vertices []*mapdata.Vertex
	filtered []mapdata.Object
	origin   orb.Point
	vector   orb.Point
}

// IsMoving reports whether a move gesture is in progress.
func (s *Session) IsMoving() bool { return s.move.active }

// MoveItems returns the indices of the objects being moved.
func (s *Session) MoveItems() []int { return s.move.items }

// MoveVector returns the current, grid snapped, move offset.
func (s *Session) MoveVector() orb.Point { return s.move.vector }

// BeginMove starts moving the selection, or the hilighted object, from p.
func (s *Session) BeginMove(p orb.Point) bool {
	if s.move.active || s.mode == Mode3D {
		return false
	}
	items := s.selectedIndices()
	if len(items) == 0 {
		s.AddMessage("Nothing selected to move")
		return false
	}

	s.move = moveState{active: true, items: items, origin: p}
	if s.mode == ModeThings {
		for _, i := range items {
			t := s.m.Thing(i)
			t.SetFiltered(true)
			s.move.filtered = append(s.move.filtered, t)
		}
	} else {
		s.move.vertices = s.movingVertices(items)
		for _, v := range s.move.vertices {
			for _, l := range v.ConnectedLines() {
				if !l.Filtered() {
					l.SetFiltered(true)
					s.move.filtered = append(s.move.filtered, l)
				}
			}
			v.SetFiltered(true)
			s.move.filtered = append(s.move.filtered, v)
		}
	}
	s.hilight = -1
	s.tags = TagSets{}
	logger.Printf("Begin move of %d %s", len(items), s.mode)
	return true
}

// movingVertices returns the vertices moved when moving the given objects of the
// current mode.
func (s *Session) movingVertices(items []int) []*mapdata.Vertex {
	var verts []*mapdata.Vertex
	add := func(vs ...*mapdata.Vertex) {
		for _, v := range vs {
			if !slices.Contains(verts, v) {
				verts = append(verts, v)
			}
		}
	}
	for _, i := range items {
		switch s.mode {
		case ModeVertices:
			add(s.m.Vertex(i))
		case ModeLines:
			l := s.m.Line(i)
			add(l.V1(), l.V2())
		case ModeSectors:
			add(s.m.Sector(i).Vertices()...)
		}
	}
	return verts
}

// DoMove updates the move offset for the cursor at p and returns it.
func (s *Session) DoMove(p orb.Point) orb.Point {
	if !s.move.active {
		return orb.Point{}
	}
	delta := orb.Point{p[0] - s.move.origin[0], p[1] - s.move.origin[1]}

	// A single vertex or thing snaps its own position rather than the offset
	if len(s.move.items) == 1 && (s.mode == ModeVertices || s.mode == ModeThings) {
		var pos orb.Point
		if s.mode == ModeVertices {
			pos = s.m.Vertex(s.move.items[0]).Pos()
		} else {
			pos = s.m.Thing(s.move.items[0]).Pos()
		}
		dest := s.SnapPoint(orb.Point{pos[0] + delta[0], pos[1] + delta[1]})
		s.move.vector = orb.Point{dest[0] - pos[0], dest[1] - pos[1]}
	} else {
		s.move.vector = s.SnapPoint(delta)
	}
	return s.move.vector
}

// EndMove finishes the move gesture, applying it if accept is set. Moved vertices are
// merged with the map geometry afterwards, recorded as a separate undo level unless
// MergeUndoLevels is set.
func (s *Session) EndMove(accept bool) {
	if !s.move.active {
		return
	}
	move := s.move
	s.move = moveState{}
	for _, o := range move.filtered {
		o.SetFiltered(false)
	}
	if !accept || move.vector == (orb.Point{}) {
		return
	}
	vec := move.vector

	if s.mode == ModeThings {
		s.record("Move Things", func() bool {
			for _, i := range move.items {
				t := s.m.Thing(i)
				s.UndoManager().RecordStep(undo.NewPropertyChange(t))
				t.SetPos(orb.Point{t.X() + vec[0], t.Y() + vec[1]})
			}
			return true
		})
		return
	}

	if err := s.BeginUndoRecord("Move"); err != nil {
		logger.Println(err)
		return
	}
	for _, v := range move.vertices {
		v.SetPos(orb.Point{v.X() + vec[0], v.Y() + vec[1]})
	}
	if !s.opts.MergeUndoLevels {
		s.EndUndoRecord(true)
		if err := s.BeginUndoRecord("Merge"); err != nil {
			logger.Println(err)
			return
		}
	}

	merged := false
	if s.opts.MergeOnMove {
		var lines []*mapdata.Line
		lines, merged = s.m.MergeArch(move.vertices, s.opts.SplitDistance)
		if merged {
			s.CorrectSectors(lines, true)
		}
	}
	s.EndUndoRecord(true)

	if merged {
		// Indices may have shifted
		s.clearSelection()
	}
	logger.Printf("Moved %d vertices by %v (merged %v)", len(move.vertices), vec, merged)
}
