package mapeditor

import (
	"fmt"

	"github.com/stuarthighley/doomedit/mapdata"
	"github.com/stuarthighley/doomedit/undo"
)

// Link3D reports whether 3D edits apply to the shared side or sector property rather than
// per-part overrides.
func (s *Session) Link3D() bool { return s.link3D }

// ToggleLink3D toggles linked 3D editing. Unlinked editing needs the per-part properties of
// UDMF, so in other formats a message is added and nothing changes.
func (s *Session) ToggleLink3D() bool {
	if s.mode != Mode3D {
		return false
	}
	if s.m.Format != mapdata.FormatUDMF {
		s.AddMessage(fmt.Sprintf("Unlinked 3D editing is not available in %s format maps", s.m.Format))
		return false
	}
	s.record("Toggle 3D Link", func() bool {
		s.undo3D.RecordStep(undo.SetValue(&s.link3D, !s.link3D))
		return true
	})
	if s.link3D {
		s.AddMessage("3D editing linked")
	} else {
		s.AddMessage("3D editing unlinked")
	}
	return true
}

func (s *Session) linked() bool {
	return s.link3D || s.m.Format != mapdata.FormatUDMF
}

// items3D returns the selected 3D items, or the hilighted one if nothing is selected.
func (s *Session) items3D() []Item3D {
	if len(s.selection3D) > 0 {
		return s.selection3D
	}
	if s.hilight3D.Valid() {
		return []Item3D{s.hilight3D}
	}
	return nil
}

type propTarget struct {
	obj  mapdata.Object
	prop string
}

// edit3D runs fn on each 3D item inside an undo level. fn returns the properties to change;
// each object property is only changed once even if several items share it.
func (s *Session) edit3D(name string, locked bool, fn func(Item3D) []propTarget, apply func(propTarget)) int {
	if s.mode != Mode3D {
		return 0
	}
	items := s.items3D()
	if len(items) == 0 {
		return 0
	}
	changed := 0
	body := func() bool {
		done := map[propTarget]bool{}
		for _, item := range items {
			for _, t := range fn(item) {
				if t.obj == nil || done[t] {
					continue
				}
				done[t] = true
				apply(t)
				changed++
			}
		}
		return true
	}
	if locked {
		s.recordLocked(name, body)
	} else {
		s.record(name, body)
	}
	return changed
}

func (s *Session) itemSide(item Item3D) *mapdata.Side {
	if !item.Type.IsWall() {
		return nil
	}
	return s.m.Side(item.Index)
}

func (s *Session) itemSector(item Item3D) *mapdata.Sector {
	if !item.Type.IsFlat() {
		return nil
	}
	return s.m.Sector(item.Index)
}

// otherSector returns the sector on the opposite side of the line from side.
func otherSector(side *mapdata.Side) *mapdata.Sector {
	l := side.Line()
	if l == nil {
		return nil
	}
	if side.IsFront() {
		return l.BackSector()
	}
	return l.FrontSector()
}

func wallPartSuffix(t ItemType) string {
	switch t {
	case ItemWallTop:
		return "_top"
	case ItemWallBottom:
		return "_bottom"
	}
	return "_mid"
}

func wallTextureProp(t ItemType) string {
	switch t {
	case ItemWallTop:
		return mapdata.PropTextureTop
	case ItemWallBottom:
		return mapdata.PropTextureBottom
	}
	return mapdata.PropTextureMiddle
}

func flatSuffix(t ItemType) string {
	if t == ItemCeiling {
		return "ceiling"
	}
	return "floor"
}

// ChangeLight3D changes the light level of the 3D items by amount.
func (s *Session) ChangeLight3D(amount int) {
	linked := s.linked()
	n := s.edit3D("Change Light", true, func(item Item3D) []propTarget {
		if linked {
			if side := s.itemSide(item); side != nil && side.Sector() != nil {
				return []propTarget{{side.Sector(), mapdata.PropLightLevel}}
			}
			if sector := s.itemSector(item); sector != nil {
				return []propTarget{{sector, mapdata.PropLightLevel}}
			}
			return nil
		}
		if side := s.itemSide(item); side != nil {
			return []propTarget{{side, "light"}}
		}
		if sector := s.itemSector(item); sector != nil {
			return []propTarget{{sector, "light" + flatSuffix(item.Type)}}
		}
		return nil
	}, func(t propTarget) {
		v := t.obj.IntProp(t.prop) + amount
		if t.prop == mapdata.PropLightLevel {
			v = clamp(v, 0, 255)
		} else {
			v = clamp(v, -255, 255)
		}
		t.obj.SetIntProp(t.prop, v)
	})
	if n > 0 {
		s.AddMessage(fmt.Sprintf("Light changed by %d", amount))
	}
}

// ChangeOffset3D changes the X (or Y) texture offset of the 3D items by amount. Flat
// offsets need UDMF.
func (s *Session) ChangeOffset3D(amount int, x bool) {
	axis := "y"
	if x {
		axis = "x"
	}
	udmf := s.m.Format == mapdata.FormatUDMF
	for _, item := range s.items3D() {
		if item.Type.IsFlat() && !udmf {
			s.AddMessage(fmt.Sprintf("Flat offsets are not available in %s format maps", s.m.Format))
			return
		}
	}

	linked := s.linked()
	n := s.edit3D("Change Offset", true, func(item Item3D) []propTarget {
		if side := s.itemSide(item); side != nil {
			if linked {
				return []propTarget{{side, "offset" + axis}}
			}
			return []propTarget{{side, "offset" + axis + wallPartSuffix(item.Type)}}
		}
		if sector := s.itemSector(item); sector != nil {
			if linked {
				return []propTarget{{sector, axis + "panningfloor"}, {sector, axis + "panningceiling"}}
			}
			return []propTarget{{sector, axis + "panning" + flatSuffix(item.Type)}}
		}
		return nil
	}, func(t propTarget) {
		if t.prop == mapdata.PropOffsetX || t.prop == mapdata.PropOffsetY {
			t.obj.SetIntProp(t.prop, t.obj.IntProp(t.prop)+amount)
		} else {
			t.obj.SetFloatProp(t.prop, t.obj.FloatProp(t.prop)+float64(amount))
		}
	})
	if n > 0 {
		s.AddMessage(fmt.Sprintf("Offset %s changed by %d", axis, amount))
	}
}

// ChangeHeight3D changes the height of the 3D items by amount. Floors and ceilings move
// their own sector; upper and lower walls move the ceiling or floor of the sector opposite.
func (s *Session) ChangeHeight3D(amount int) {
	n := s.edit3D("Change Height", true, func(item Item3D) []propTarget {
		switch item.Type {
		case ItemFloor:
			return []propTarget{{s.itemSector(item), mapdata.PropHeightFloor}}
		case ItemCeiling:
			return []propTarget{{s.itemSector(item), mapdata.PropHeightCeiling}}
		case ItemWallTop:
			if o := otherSector(s.itemSide(item)); o != nil {
				return []propTarget{{o, mapdata.PropHeightCeiling}}
			}
		case ItemWallBottom:
			if o := otherSector(s.itemSide(item)); o != nil {
				return []propTarget{{o, mapdata.PropHeightFloor}}
			}
		}
		return nil
	}, func(t propTarget) {
		t.obj.SetIntProp(t.prop, t.obj.IntProp(t.prop)+amount)
	})
	if n > 0 {
		s.AddMessage(fmt.Sprintf("Height changed by %d", amount))
	}
}

// ChangeScale3D multiplies the texture scale of the 3D items by factor. UDMF only.
func (s *Session) ChangeScale3D(factor float64, x bool) {
	if s.m.Format != mapdata.FormatUDMF {
		s.AddMessage(fmt.Sprintf("Texture scaling is not available in %s format maps", s.m.Format))
		return
	}
	axis := "y"
	if x {
		axis = "x"
	}
	linked := s.linked()
	n := s.edit3D("Change Scale", false, func(item Item3D) []propTarget {
		if side := s.itemSide(item); side != nil {
			if linked {
				return []propTarget{
					{side, "scale" + axis + "_top"},
					{side, "scale" + axis + "_mid"},
					{side, "scale" + axis + "_bottom"},
				}
			}
			return []propTarget{{side, "scale" + axis + wallPartSuffix(item.Type)}}
		}
		if sector := s.itemSector(item); sector != nil {
			if linked {
				return []propTarget{{sector, axis + "scalefloor"}, {sector, axis + "scaleceiling"}}
			}
			return []propTarget{{sector, axis + "scale" + flatSuffix(item.Type)}}
		}
		return nil
	}, func(t propTarget) {
		scale := 1.0
		if t.obj.HasProp(t.prop) {
			scale = t.obj.FloatProp(t.prop)
		}
		t.obj.SetFloatProp(t.prop, scale*factor)
	})
	if n > 0 {
		s.AddMessage(fmt.Sprintf("Scale %s multiplied by %g", axis, factor))
	}
}

// SetTexture3D sets the texture of the 3D items.
func (s *Session) SetTexture3D(tex string) {
	s.edit3D("Change Texture", false, func(item Item3D) []propTarget {
		if side := s.itemSide(item); side != nil {
			return []propTarget{{side, wallTextureProp(item.Type)}}
		}
		if sector := s.itemSector(item); sector != nil {
			return []propTarget{{sector, "texture" + flatSuffix(item.Type)}}
		}
		return nil
	}, func(t propTarget) {
		t.obj.SetStringProp(t.prop, tex)
	})
}

// AutoAlignX3D aligns the X offsets of every wall connected to the hilighted wall that uses
// the same texture, so the texture runs on continuously. It returns the number of walls
// aligned, the hilighted one included.
func (s *Session) AutoAlignX3D() int {
	if s.mode != Mode3D || !s.hilight3D.Type.IsWall() {
		return 0
	}
	start := s.m.Side(s.hilight3D.Index)
	if start == nil || start.Line() == nil {
		return 0
	}
	tex := start.StringProp(wallTextureProp(s.hilight3D.Type))
	if tex == "" || tex == mapdata.NoTexture {
		s.AddMessage("No texture to align")
		return 0
	}
	width := 0
	if s.TextureWidth != nil {
		width = s.TextureWidth(tex)
	}

	aligned := 0
	s.record("Auto Align X", func() bool {
		visited := map[*mapdata.Side]bool{}
		aligned = alignSides(start, start.IntProp(mapdata.PropOffsetX), tex, width, visited)
		return true
	})
	s.AddMessage(fmt.Sprintf("Aligned %d walls", aligned))
	return aligned
}

func sideUsesTexture(side *mapdata.Side, tex string) bool {
	return side.TextureTop() == tex || side.TextureMiddle() == tex || side.TextureBottom() == tex
}

// sideEnd returns the vertex the texture of side runs towards.
func sideEnd(side *mapdata.Side) *mapdata.Vertex {
	if side.IsFront() {
		return side.Line().V2()
	}
	return side.Line().V1()
}

func sideStart(side *mapdata.Side) *mapdata.Vertex {
	if side.IsFront() {
		return side.Line().V1()
	}
	return side.Line().V2()
}

// alignSides sets the offset of side and continues along every wall starting where it ends.
// It returns the number of sides visited.
func alignSides(side *mapdata.Side, offset int, tex string, width int, visited map[*mapdata.Side]bool) int {
	if visited[side] {
		return 0
	}
	visited[side] = true

	if width > 0 {
		offset %= width
		if offset < 0 {
			offset += width
		}
	}
	side.SetIntProp(mapdata.PropOffsetX, offset)
	n := 1

	l := side.Line()
	next := offset + int(l.Length())
	end := sideEnd(side)
	for _, cl := range end.ConnectedLines() {
		if cl == l {
			continue
		}
		for _, cs := range []*mapdata.Side{cl.Front(), cl.Back()} {
			if cs == nil || visited[cs] || !sideUsesTexture(cs, tex) || sideStart(cs) != end {
				continue
			}
			n += alignSides(cs, next, tex, width, visited)
		}
	}
	return n
}
