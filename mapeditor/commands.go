package mapeditor

import (
	"fmt"

	"github.com/stuarthighley/doomedit/mapdata"
	"golang.org/x/exp/slices"
)

// /////////////////////////////////////
// Tag edit
// /////////////////////////////////////

type tagEditState struct {
	active  bool
	lines   []*mapdata.Line
	tag     int
	sectors []*mapdata.Sector
}

// IsTagEditing reports whether a tag edit is in progress.
func (s *Session) IsTagEditing() bool { return s.tagEdit.active }

// TagEditTag returns the tag being assigned by the current tag edit.
func (s *Session) TagEditTag() int { return s.tagEdit.tag }

// TagEditSectors returns the sectors currently tagged by the tag edit.
func (s *Session) TagEditSectors() []*mapdata.Sector { return s.tagEdit.sectors }

// BeginTagEdit starts assigning the tag of the selected (or hilighted) lines to sectors. The
// tag is taken from the first line, or a free sector tag is picked if it has none.
func (s *Session) BeginTagEdit() bool {
	if s.mode != ModeLines || s.tagEdit.active {
		return false
	}
	var lines []*mapdata.Line
	for _, o := range s.SelectedObjects() {
		lines = append(lines, o.(*mapdata.Line))
	}
	if len(lines) == 0 {
		s.AddMessage("No lines selected for tag edit")
		return false
	}

	tag := lines[0].Arg(0)
	if tag == 0 {
		tag = freeSectorTag(s.m)
	}
	var sectors []*mapdata.Sector
	for _, sector := range s.m.Sectors() {
		if sector.Tag() == tag {
			sectors = append(sectors, sector)
		}
	}
	s.tagEdit = tagEditState{active: true, lines: lines, tag: tag, sectors: sectors}
	s.AddMessage(fmt.Sprintf("Tag edit: tag %d", tag))
	return true
}

// freeSectorTag returns the lowest tag no sector uses.
func freeSectorTag(m *mapdata.Map) int {
	used := map[int]bool{}
	for _, sector := range m.Sectors() {
		used[sector.Tag()] = true
	}
	tag := 1
	for used[tag] {
		tag++
	}
	return tag
}

// ToggleTagSector adds the sector at index to the tag edit, or removes it if already there.
func (s *Session) ToggleTagSector(index int) bool {
	if !s.tagEdit.active {
		return false
	}
	sector := s.m.Sector(index)
	if sector == nil {
		return false
	}
	if i := slices.Index(s.tagEdit.sectors, sector); i >= 0 {
		s.tagEdit.sectors = slices.Delete(s.tagEdit.sectors, i, i+1)
	} else {
		s.tagEdit.sectors = append(s.tagEdit.sectors, sector)
	}
	return true
}

// EndTagEdit finishes the tag edit, applying it if accept is set. Sectors removed from the
// edit lose the tag. Nothing is changed if no sectors are tagged.
func (s *Session) EndTagEdit(accept bool) bool {
	if !s.tagEdit.active {
		return false
	}
	te := s.tagEdit
	s.tagEdit = tagEditState{}
	if !accept {
		return false
	}
	if len(te.sectors) == 0 {
		s.AddMessage("No sectors tagged, tag edit cancelled")
		return false
	}

	s.record("Tag Edit", func() bool {
		for _, sector := range s.m.Sectors() {
			tagged := slices.Contains(te.sectors, sector)
			switch {
			case tagged:
				sector.SetIntProp(mapdata.PropID, te.tag)
			case sector.Tag() == te.tag:
				sector.SetIntProp(mapdata.PropID, 0)
			}
		}
		for _, l := range te.lines {
			if l.IsInMap() {
				l.SetIntProp(mapdata.ArgProp(0), te.tag)
			}
		}
		return true
	})
	s.updateTags()
	s.AddMessage(fmt.Sprintf("Set tag %d on %d lines and %d sectors", te.tag, len(te.lines), len(te.sectors)))
	return true
}

// /////////////////////////////////////
// Commands
// /////////////////////////////////////

// DeleteSelection deletes the selected (or hilighted) objects of the current mode, then
// removes the vertices, sectors and sector lines the deletion left unused. It returns the
// number deleted.
func (s *Session) DeleteSelection() int {
	if s.mode == Mode3D || s.move.active {
		return 0
	}
	objs := s.SelectedObjects()
	if len(objs) == 0 {
		s.AddMessage("Nothing selected to delete")
		return 0
	}

	s.record("Delete "+s.mode.String(), func() bool {
		var bordering []*mapdata.Line
		for _, o := range objs {
			if sector, ok := o.(*mapdata.Sector); ok {
				bordering = append(bordering, sector.Lines()...)
			}
		}
		for _, o := range objs {
			s.m.RemoveObject(o)
		}
		for _, l := range bordering {
			if l.IsInMap() && l.Front() == nil && l.Back() == nil {
				s.m.RemoveLine(l)
			}
		}
		if s.mode != ModeThings {
			s.m.RemoveDetachedVertices()
			s.m.RemoveUnusedSectors()
		}
		return true
	})
	s.clearSelection()
	s.hilight = -1
	s.tags = TagSets{}
	s.AddMessage(fmt.Sprintf("Deleted %d %s", len(objs), s.mode))
	return len(objs)
}

// FlipLines reverses the selected lines, swapping their sides too if swapSides is set.
func (s *Session) FlipLines(swapSides bool) int {
	if s.mode != ModeLines {
		return 0
	}
	objs := s.SelectedObjects()
	if len(objs) == 0 {
		return 0
	}
	s.record("Flip Line", func() bool {
		for _, o := range objs {
			o.(*mapdata.Line).Flip(swapSides)
		}
		return true
	})
	return len(objs)
}

// ChangeSectorHeight raises (or lowers, for a negative amount) the selected sectors' floor,
// ceiling or both depending on the sector mode. Outside sectors mode it does nothing.
func (s *Session) ChangeSectorHeight(amount int) {
	if s.mode != ModeSectors {
		return
	}
	objs := s.SelectedObjects()
	if len(objs) == 0 {
		return
	}
	floor := s.sectorMode != SectorCeiling
	ceiling := s.sectorMode != SectorFloor
	s.recordLocked("Change Sector Height", func() bool {
		for _, o := range objs {
			sector := o.(*mapdata.Sector)
			if floor {
				sector.SetIntProp(mapdata.PropHeightFloor, sector.FloorHeight()+amount)
			}
			if ceiling {
				sector.SetIntProp(mapdata.PropHeightCeiling, sector.CeilingHeight()+amount)
			}
		}
		return true
	})

	what := "Floor and ceiling"
	switch {
	case !ceiling:
		what = "Floor"
	case !floor:
		what = "Ceiling"
	}
	s.AddMessage(fmt.Sprintf("%s height changed by %d", what, amount))
}

// ChangeSectorLight changes the light level of the selected sectors by one step, 16 units
// or 1 unit if fine is set. Light stays within 0-255.
func (s *Session) ChangeSectorLight(up, fine bool) {
	if s.mode != ModeSectors {
		return
	}
	objs := s.SelectedObjects()
	if len(objs) == 0 {
		return
	}
	step := 16
	if fine {
		step = 1
	}
	if !up {
		step = -step
	}
	s.recordLocked("Change Sector Light", func() bool {
		for _, o := range objs {
			sector := o.(*mapdata.Sector)
			sector.SetIntProp(mapdata.PropLightLevel, stepLight(sector.LightLevel(), step))
		}
		return true
	})
	if obj := objs[0].(*mapdata.Sector); len(objs) == 1 {
		s.AddMessage(fmt.Sprintf("Light level: %d", obj.LightLevel()))
	} else {
		s.AddMessage(fmt.Sprintf("Light level changed by %d", step))
	}
}

// stepLight adds step to a light level. Coarse steps treat 255 as 256 so that stepping
// down from full brightness lands on a multiple of 16.
func stepLight(light, step int) int {
	if light == 255 && mapdata.Abs(step) > 1 {
		light = 256
	}
	light = clamp(light+step, 0, 256)
	if light == 256 {
		light = 255
	}
	return light
}
