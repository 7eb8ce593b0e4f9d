package mapeditor

import (
	"math"

	"github.com/paulmach/orb"
	"golang.org/x/exp/constraints"
)

var gridSizes = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32, 64, 128, 256, 512,
	1024, 2048, 4096, 8192, 16384, 32768, 65536,
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Snap rounds v to the nearest multiple of gridSize, halves rounding up.
func Snap(v, gridSize float64) float64 {
	return math.Ceil(v/gridSize-0.5) * gridSize
}

func (s *Session) GridLevel() int { return s.gridLevel }
func (s *Session) GridSize() float64 { return gridSizes[s.gridLevel] }

// SetGridLevel sets the grid size index, clamped to the available sizes.
func (s *Session) SetGridLevel(level int) {
	s.gridLevel = clamp(level, 0, len(gridSizes)-1)
}

func (s *Session) IncrementGrid() { s.SetGridLevel(s.gridLevel + 1) }
func (s *Session) DecrementGrid() { s.SetGridLevel(s.gridLevel - 1) }

// SnapToGrid snaps a coordinate to the grid, unless grid snapping is off.
func (s *Session) SnapToGrid(v float64) float64 {
	if !s.opts.GridSnap {
		return v
	}
	return Snap(v, s.GridSize())
}

// SnapPoint snaps both coordinates of p to the grid.
func (s *Session) SnapPoint(p orb.Point) orb.Point {
	return orb.Point{s.SnapToGrid(p[0]), s.SnapToGrid(p[1])}
}
