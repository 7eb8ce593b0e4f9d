package mapeditor

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/stuarthighley/doomedit/mapdata"
	"golang.org/x/exp/slices"
)

// ItemType is the part of the map an item picked in 3D mode refers to.
type ItemType int

const (
	ItemNone ItemType = iota
	ItemWallTop
	ItemWallMiddle
	ItemWallBottom
	ItemFloor
	ItemCeiling
	ItemThing
)

func (t ItemType) IsWall() bool { return t == ItemWallTop || t == ItemWallMiddle || t == ItemWallBottom }
func (t ItemType) IsFlat() bool { return t == ItemFloor || t == ItemCeiling }

// Item3D is a 3D mode pick. Index is a side index for walls, a sector index for flats and
// a thing index for things.
type Item3D struct {
	Index int
	Type  ItemType
}

var noItem3D = Item3D{Index: -1, Type: ItemNone}

func (i Item3D) Valid() bool { return i.Index >= 0 && i.Type != ItemNone }

// Hilight returns the index of the hilighted object in the current 2D mode, or -1.
func (s *Session) Hilight() int { return s.hilight }

// Selection returns the selected object indices in selection order.
func (s *Session) Selection() []int { return s.selection }

func (s *Session) Hilight3D() Item3D { return s.hilight3D }
func (s *Session) Selection3D() []Item3D { return s.selection3D }

// LockHilight freezes the hilight until unlocked.
func (s *Session) LockHilight(lock bool) { s.hilightLocked = lock }
func (s *Session) HilightLocked() bool { return s.hilightLocked }

func (s *Session) modeObjType() (mapdata.ObjType, bool) {
	switch s.mode {
	case ModeVertices:
		return mapdata.TypeVertex, true
	case ModeLines:
		return mapdata.TypeLine, true
	case ModeSectors:
		return mapdata.TypeSector, true
	case ModeThings:
		return mapdata.TypeThing, true
	}
	return 0, false
}

// HilightObject returns the hilighted object, or nil.
func (s *Session) HilightObject() mapdata.Object {
	t, ok := s.modeObjType()
	if !ok || s.hilight < 0 {
		return nil
	}
	return s.m.Object(t, s.hilight)
}

// SelectedObjects returns the selected objects, or the hilighted object if nothing is
// selected.
func (s *Session) SelectedObjects() []mapdata.Object {
	t, ok := s.modeObjType()
	if !ok {
		return nil
	}
	if len(s.selection) == 0 {
		if o := s.HilightObject(); o != nil {
			return []mapdata.Object{o}
		}
		return nil
	}
	objs := make([]mapdata.Object, 0, len(s.selection))
	for _, i := range s.selection {
		if o := s.m.Object(t, i); o != nil {
			objs = append(objs, o)
		}
	}
	return objs
}

// selectedIndices returns the selection, or the hilight if nothing is selected.
func (s *Session) selectedIndices() []int {
	if len(s.selection) > 0 {
		return slices.Clone(s.selection)
	}
	if s.hilight >= 0 {
		return []int{s.hilight}
	}
	return nil
}

// UpdateHilight hilights the object under p. distScale scales the pick tolerance with the
// view zoom. It reports whether the hilight changed.
func (s *Session) UpdateHilight(p orb.Point, distScale float64) bool {
	if s.hilightLocked || s.mode == Mode3D {
		return false
	}
	tolerance := s.opts.HilightDistance * distScale

	current := -1
	switch s.mode {
	case ModeVertices:
		current = s.m.NearestVertex(p, tolerance)
	case ModeLines:
		current = s.m.NearestLine(p, tolerance)
	case ModeSectors:
		current = s.m.SectorAt(p)
	case ModeThings:
		current = s.nearestThing(p, tolerance)
	}
	return s.SetHilight(current)
}

// nearestThing picks the thing whose radius box contains p. When several do, the last one
// wins, otherwise the nearest thing within tolerance is picked.
func (s *Session) nearestThing(p orb.Point, tolerance float64) int {
	picked := -1
	for i, t := range s.m.Things() {
		if t.Filtered() {
			continue
		}
		r := float64(s.cfg.ThingType(t.ThingType()).Radius)
		if math.Abs(p[0]-t.X()) <= r && math.Abs(p[1]-t.Y()) <= r {
			picked = i
		}
	}
	if picked >= 0 {
		return picked
	}
	return s.m.NearestThing(p, tolerance)
}

// SetHilight sets the hilighted object index directly. It reports whether it changed.
func (s *Session) SetHilight(index int) bool {
	if s.hilightLocked || index == s.hilight {
		return false
	}
	s.hilight = index
	s.updateTags()
	if len(s.selection) == 0 {
		s.openProperties()
	}
	return true
}

// SetHilight3D sets the 3D mode hilight as picked by the renderer.
func (s *Session) SetHilight3D(item Item3D) bool {
	if s.hilightLocked || item == s.hilight3D {
		return false
	}
	s.hilight3D = item
	return true
}

func (s *Session) openProperties() {
	if s.panel != nil {
		s.panel.OpenObjects(s.SelectedObjects())
	}
}

func (s *Session) clearSelection() {
	s.selection = nil
	s.selection3D = nil
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.clearSelection()
	s.openProperties()
}

// Select adds or removes one object from the selection.
func (s *Session) Select(index int, selected bool) {
	i := slices.Index(s.selection, index)
	switch {
	case selected && i < 0:
		s.selection = append(s.selection, index)
	case !selected && i >= 0:
		s.selection = slices.Delete(s.selection, i, i+1)
	default:
		return
	}
	s.openProperties()
}

// IsSelected reports whether the object at index is selected.
func (s *Session) IsSelected(index int) bool {
	return slices.Contains(s.selection, index)
}

// SelectCurrent toggles the selection of the hilighted object.
func (s *Session) SelectCurrent() bool {
	if s.mode == Mode3D {
		return s.selectCurrent3D()
	}
	if s.hilight < 0 {
		return false
	}
	s.Select(s.hilight, !s.IsSelected(s.hilight))
	return true
}

func (s *Session) selectCurrent3D() bool {
	if !s.hilight3D.Valid() {
		return false
	}
	if i := slices.Index(s.selection3D, s.hilight3D); i >= 0 {
		s.selection3D = slices.Delete(s.selection3D, i, i+1)
	} else {
		s.selection3D = append(s.selection3D, s.hilight3D)
	}
	return true
}

// SelectWithin selects every object inside box. When add is false the current selection is
// replaced. It returns the number of objects selected by the box.
func (s *Session) SelectWithin(box orb.Bound, add bool) int {
	if !add {
		s.selection = nil
	}
	var found []int
	switch s.mode {
	case ModeVertices:
		for i, v := range s.m.Vertices() {
			if box.Contains(v.Pos()) {
				found = append(found, i)
			}
		}
	case ModeLines:
		for i, l := range s.m.Lines() {
			if box.Contains(l.Start()) && box.Contains(l.End()) {
				found = append(found, i)
			}
		}
	case ModeSectors:
		for i, sector := range s.m.Sectors() {
			bb := sector.BoundingBox()
			if len(sector.ConnectedSides()) > 0 && box.Contains(bb.Min) && box.Contains(bb.Max) {
				found = append(found, i)
			}
		}
	case ModeThings:
		for i, t := range s.m.Things() {
			if box.Contains(t.Pos()) {
				found = append(found, i)
			}
		}
	}
	for _, i := range found {
		if !slices.Contains(s.selection, i) {
			s.selection = append(s.selection, i)
		}
	}
	s.openProperties()
	return len(found)
}

// SelectAll selects every object of the current mode.
func (s *Session) SelectAll() int {
	var n int
	switch s.mode {
	case ModeVertices:
		n = s.m.NVertices()
	case ModeLines:
		n = s.m.NLines()
	case ModeSectors:
		n = s.m.NSectors()
	case ModeThings:
		n = s.m.NThings()
	default:
		return 0
	}
	s.selection = make([]int, n)
	for i := range s.selection {
		s.selection[i] = i
	}
	s.openProperties()
	return n
}
