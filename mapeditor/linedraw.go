package mapeditor

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/stuarthighley/doomedit/mapdata"
)

// IsDrawing reports whether the line draw tool is active.
func (s *Session) IsDrawing() bool { return s.drawing }

// LineDrawPoints returns the points drawn so far, for preview.
func (s *Session) LineDrawPoints() orb.LineString { return orb.LineString(s.lineDraw) }

// BeginLineDraw starts the line draw tool.
func (s *Session) BeginLineDraw() bool {
	if s.drawing || s.move.active || s.mode == Mode3D {
		return false
	}
	s.drawing = true
	s.lineDraw = nil
	s.hilight = -1
	return true
}

// AddLineDrawPoint adds a point to the line being drawn, snapped to the nearest vertex if
// nearest is set or to the grid otherwise. Clicking the first or last point again finishes
// the drawing, in which case true is returned.
func (s *Session) AddLineDrawPoint(p orb.Point, nearest bool) bool {
	if !s.drawing {
		return false
	}
	p = s.lineDrawSnap(p, nearest)

	if n := len(s.lineDraw); n > 0 {
		if mapdata.PointsEqual(p, s.lineDraw[n-1]) {
			s.EndLineDraw(true)
			return true
		}
		if n > 1 && mapdata.PointsEqual(p, s.lineDraw[0]) {
			s.lineDraw = append(s.lineDraw, s.lineDraw[0])
			s.EndLineDraw(true)
			return true
		}
	}
	s.lineDraw = append(s.lineDraw, p)
	return false
}

func (s *Session) lineDrawSnap(p orb.Point, nearest bool) orb.Point {
	if nearest {
		if i := s.m.NearestVertex(p, -1); i >= 0 {
			return s.m.Vertex(i).Pos()
		}
	}
	return s.SnapPoint(p)
}

// RemoveLineDrawPoint removes the last drawn point.
func (s *Session) RemoveLineDrawPoint() {
	if n := len(s.lineDraw); n > 0 {
		s.lineDraw = s.lineDraw[:n-1]
	}
}

// EndLineDraw finishes the line draw tool, creating the drawn lines if accept is set.
// Lines are split wherever they pass over an existing vertex or cross an existing line, and
// sectors are built for any areas the new lines close.
func (s *Session) EndLineDraw(accept bool) {
	if !s.drawing {
		return
	}
	points := s.lineDraw
	s.drawing = false
	s.lineDraw = nil
	if !accept || len(points) < 2 {
		return
	}

	// Closed shapes are drawn clockwise so the front sides face inwards
	if len(points) > 3 && mapdata.PointsEqual(points[0], points[len(points)-1]) {
		if orb.Ring(points).Orientation() == orb.CCW {
			orb.LineString(points).Reverse()
		}
	}

	var created []*mapdata.Line
	s.record("Line Draw", func() bool {
		for i := 0; i+1 < len(points); i++ {
			created = append(created, s.drawSegment(points[i], points[i+1])...)
		}
		if len(created) > 0 {
			s.CorrectSectors(created, false)
		}
		return true
	})
	s.AddMessage(fmt.Sprintf("Drew %d lines", len(created)))
	logger.Printf("Line draw: %d points, %d lines", len(points), len(created))
}

// drawSegment creates the lines for the segment p1-p2, broken at existing vertices on it and
// at existing lines crossing it.
func (s *Session) drawSegment(p1, p2 orb.Point) []*mapdata.Line {
	stops := []orb.Point{p1}
	for cur := p1; ; {
		v := s.m.LineCrossVertex(cur, p2)
		if v == nil {
			break
		}
		cur = v.Pos()
		stops = append(stops, cur)
	}
	stops = append(stops, p2)

	var lines []*mapdata.Line
	for i := 0; i+1 < len(stops); i++ {
		cuts := s.m.CutLines(stops[i], stops[i+1])
		chain := []*mapdata.Vertex{s.m.CreateVertex(stops[i], s.opts.SplitDistance)}
		for _, c := range cuts {
			v := s.m.CreateVertex(c.Point, s.opts.SplitDistance)
			for _, l := range c.Lines {
				s.m.SplitLineAt(l, v)
			}
			chain = append(chain, v)
		}
		chain = append(chain, s.m.CreateVertex(stops[i+1], s.opts.SplitDistance))
		for j := 0; j+1 < len(chain); j++ {
			if chain[j] == chain[j+1] {
				continue
			}
			lines = append(lines, s.m.CreateLine(chain[j], chain[j+1], false))
		}
	}
	return lines
}
