package mapdata

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/exp/slices"
)

// Property names shared by the map formats.
const (
	PropX              = "x"
	PropY              = "y"
	PropV1             = "v1"
	PropV2             = "v2"
	PropSideFront      = "sidefront"
	PropSideBack       = "sideback"
	PropSector         = "sector"
	PropSpecial        = "special"
	PropID             = "id"
	PropType           = "type"
	PropAngle          = "angle"
	PropTextureTop     = "texturetop"
	PropTextureMiddle  = "texturemiddle"
	PropTextureBottom  = "texturebottom"
	PropOffsetX        = "offsetx"
	PropOffsetY        = "offsety"
	PropHeightFloor    = "heightfloor"
	PropHeightCeiling  = "heightceiling"
	PropTextureFloor   = "texturefloor"
	PropTextureCeiling = "textureceiling"
	PropLightLevel     = "lightlevel"
	PropBlocking       = "blocking"
	PropTwoSided       = "twosided"
)

// ArgProp returns the property name of special argument n (0-4).
func ArgProp(n int) string {
	return "arg" + string(rune('0'+n))
}

// NoTexture is the texture name of an empty wall part.
const NoTexture = "-"

// /////////////////////////////////////
// Vertex
// /////////////////////////////////////

type Vertex struct {
	objBase
	pos   orb.Point
	lines []*Line
}

func (v *Vertex) Type() ObjType { return TypeVertex }
func (v *Vertex) Pos() orb.Point { return v.pos }
func (v *Vertex) X() float64 { return v.pos[0] }
func (v *Vertex) Y() float64 { return v.pos[1] }

// ConnectedLines returns the lines using this vertex. The slice must not be modified.
func (v *Vertex) ConnectedLines() []*Line { return v.lines }

// SetPos moves the vertex.
func (v *Vertex) SetPos(p orb.Point) {
	if p == v.pos {
		return
	}
	v.setModified()
	v.pos = p
	if v.parent != nil {
		v.parent.geometryUpdated = v.modified
	}
}

func (v *Vertex) connectLine(l *Line) {
	if !slices.Contains(v.lines, l) {
		v.lines = append(v.lines, l)
	}
}

func (v *Vertex) disconnectLine(l *Line) {
	if i := slices.Index(v.lines, l); i >= 0 {
		v.lines = slices.Delete(v.lines, i, i+1)
	}
}

func (v *Vertex) builtinProp(name string) (Value, bool) {
	switch name {
	case PropX:
		return FloatValue(v.pos[0]), true
	case PropY:
		return FloatValue(v.pos[1]), true
	}
	return Value{}, false
}

func (v *Vertex) setBuiltinProp(name string, val Value) bool {
	switch name {
	case PropX:
		v.pos[0] = val.AsFloat()
	case PropY:
		v.pos[1] = val.AsFloat()
	default:
		return false
	}
	if v.parent != nil {
		v.parent.geometryUpdated = v.modified
	}
	return true
}

func (v *Vertex) writeBuiltins(p Properties) {
	p[PropX] = FloatValue(v.pos[0])
	p[PropY] = FloatValue(v.pos[1])
}

func (v *Vertex) readBuiltins(p Properties) {
	v.pos = orb.Point{p[PropX].AsFloat(), p[PropY].AsFloat()}
	delete(p, PropX)
	delete(p, PropY)
}

// /////////////////////////////////////
// Line
// /////////////////////////////////////

type Line struct {
	objBase
	v1, v2      *Vertex
	front, back *Side
}

func (l *Line) Type() ObjType { return TypeLine }
func (l *Line) V1() *Vertex { return l.v1 }
func (l *Line) V2() *Vertex { return l.v2 }
func (l *Line) Front() *Side { return l.front }
func (l *Line) Back() *Side { return l.back }
func (l *Line) Start() orb.Point { return l.v1.pos }
func (l *Line) End() orb.Point { return l.v2.pos }
func (l *Line) Special() int { return l.IntProp(PropSpecial) }
func (l *Line) Arg(n int) int { return l.IntProp(ArgProp(n)) }

// FrontSector returns the sector of the front side, or nil.
func (l *Line) FrontSector() *Sector {
	if l.front == nil {
		return nil
	}
	return l.front.sector
}

// BackSector returns the sector of the back side, or nil.
func (l *Line) BackSector() *Sector {
	if l.back == nil {
		return nil
	}
	return l.back.sector
}

// Vertex returns v1 or v2 for which = 0 or 1.
func (l *Line) Vertex(which int) *Vertex {
	if which == 0 {
		return l.v1
	}
	return l.v2
}

// HasVertex reports whether v is either end of the line.
func (l *Line) HasVertex(v *Vertex) bool {
	return l.v1 == v || l.v2 == v
}

// SharesVertex reports whether both lines have a vertex in common.
func (l *Line) SharesVertex(o *Line) bool {
	return l.v1 == o.v1 || l.v1 == o.v2 || l.v2 == o.v1 || l.v2 == o.v2
}

func (l *Line) Length() float64 {
	return planar.Distance(l.v1.pos, l.v2.pos)
}

func (l *Line) Midpoint() orb.Point {
	return orb.Point{(l.v1.pos[0] + l.v2.pos[0]) / 2, (l.v1.pos[1] + l.v2.pos[1]) / 2}
}

func (l *Line) Bound() orb.Bound {
	return l.v1.pos.Bound().Extend(l.v2.pos)
}

// DistanceTo returns the shortest distance from p to the line segment.
func (l *Line) DistanceTo(p orb.Point) float64 {
	return planar.DistanceFromSegment(l.v1.pos, l.v2.pos, p)
}

// SideOf returns a positive value when p is on the front (right) side of the line,
// negative when on the back side and zero when on the line.
func (l *Line) SideOf(p orb.Point) float64 {
	return SideOfSegment(p, l.v1.pos, l.v2.pos)
}

// PointOnFront reports whether p lies on the front side of the line (or on the line itself).
func (l *Line) PointOnFront(p orb.Point) bool {
	return l.SideOf(p) >= 0
}

// Angle returns the direction of the line in radians.
func (l *Line) Angle() float64 {
	return math.Atan2(l.v2.pos[1]-l.v1.pos[1], l.v2.pos[0]-l.v1.pos[0])
}

// IsZeroLength reports whether both ends of the line are at the same position.
func (l *Line) IsZeroLength() bool {
	return l.v1 == l.v2 || PointsEqual(l.v1.pos, l.v2.pos)
}

func (l *Line) SetV1(v *Vertex) {
	if v == l.v1 {
		return
	}
	l.setModified()
	l.setVertex(0, v)
}

func (l *Line) SetV2(v *Vertex) {
	if v == l.v2 {
		return
	}
	l.setModified()
	l.setVertex(1, v)
}

func (l *Line) setVertex(which int, v *Vertex) {
	old, other := l.v1, l.v2
	if which == 1 {
		old, other = l.v2, l.v1
	}
	if l.inMap && old != nil && old != other {
		old.disconnectLine(l)
	}
	if which == 0 {
		l.v1 = v
	} else {
		l.v2 = v
	}
	if l.inMap && v != nil {
		v.connectLine(l)
	}
	if l.parent != nil {
		l.parent.geometryUpdated = l.modified
	}
}

// SetFront attaches s as the front side of the line. Passing nil detaches the current front.
func (l *Line) SetFront(s *Side) {
	if s == l.front {
		return
	}
	l.setModified()
	l.front = s
	if s != nil {
		s.line = l
	}
}

// SetBack attaches s as the back side of the line. Passing nil detaches the current back.
func (l *Line) SetBack(s *Side) {
	if s == l.back {
		return
	}
	l.setModified()
	l.back = s
	if s != nil {
		s.line = l
	}
}

// Flip reverses the line direction, swapping the sides as well if swapSides is set.
func (l *Line) Flip(swapSides bool) {
	l.setModified()
	l.v1, l.v2 = l.v2, l.v1
	if swapSides {
		l.front, l.back = l.back, l.front
	}
	if l.parent != nil {
		l.parent.geometryUpdated = l.modified
	}
}

// ClearUnneededTextures removes textures from wall parts that can never be seen.
func (l *Line) ClearUnneededTextures() {
	if l.front == nil {
		return
	}
	if l.back == nil {
		l.front.SetStringProp(PropTextureTop, NoTexture)
		l.front.SetStringProp(PropTextureBottom, NoTexture)
		return
	}
	fs, bs := l.front.sector, l.back.sector
	if fs == nil || bs == nil {
		return
	}
	if fs.CeilingHeight() <= bs.CeilingHeight() {
		l.front.SetStringProp(PropTextureTop, NoTexture)
	}
	if bs.CeilingHeight() <= fs.CeilingHeight() {
		l.back.SetStringProp(PropTextureTop, NoTexture)
	}
	if fs.FloorHeight() >= bs.FloorHeight() {
		l.front.SetStringProp(PropTextureBottom, NoTexture)
	}
	if bs.FloorHeight() >= fs.FloorHeight() {
		l.back.SetStringProp(PropTextureBottom, NoTexture)
	}
}

func (l *Line) builtinProp(name string) (Value, bool) {
	switch name {
	case PropV1:
		return IntValue(vertexID(l.v1)), true
	case PropV2:
		return IntValue(vertexID(l.v2)), true
	case PropSideFront:
		return IntValue(sideID(l.front)), true
	case PropSideBack:
		return IntValue(sideID(l.back)), true
	}
	return Value{}, false
}

func (l *Line) setBuiltinProp(name string, val Value) bool {
	switch name {
	case PropV1, PropV2:
		v, _ := l.parent.ObjectByID(val.AsInt()).(*Vertex)
		if name == PropV1 {
			l.setVertex(0, v)
		} else {
			l.setVertex(1, v)
		}
	case PropSideFront:
		l.front, _ = l.parent.ObjectByID(val.AsInt()).(*Side)
		if l.front != nil {
			l.front.line = l
		}
	case PropSideBack:
		l.back, _ = l.parent.ObjectByID(val.AsInt()).(*Side)
		if l.back != nil {
			l.back.line = l
		}
	default:
		return false
	}
	return true
}

func (l *Line) writeBuiltins(p Properties) {
	p[PropV1] = IntValue(vertexID(l.v1))
	p[PropV2] = IntValue(vertexID(l.v2))
	p[PropSideFront] = IntValue(sideID(l.front))
	p[PropSideBack] = IntValue(sideID(l.back))
}

func (l *Line) readBuiltins(p Properties) {
	for _, name := range []string{PropV1, PropV2, PropSideFront, PropSideBack} {
		l.setBuiltinProp(name, p[name])
		delete(p, name)
	}
}

// /////////////////////////////////////
// Side
// /////////////////////////////////////

type Side struct {
	objBase
	line   *Line
	sector *Sector
}

func (s *Side) Type() ObjType { return TypeSide }
func (s *Side) Line() *Line { return s.line }
func (s *Side) Sector() *Sector { return s.sector }
func (s *Side) TextureTop() string { return s.StringProp(PropTextureTop) }
func (s *Side) TextureMiddle() string { return s.StringProp(PropTextureMiddle) }
func (s *Side) TextureBottom() string { return s.StringProp(PropTextureBottom) }

// IsFront reports whether the side is the front side of its line.
func (s *Side) IsFront() bool {
	return s.line != nil && s.line.front == s
}

// SetSector moves the side to another sector.
func (s *Side) SetSector(sector *Sector) {
	if sector == s.sector {
		return
	}
	s.setModified()
	s.setSector(sector)
}

func (s *Side) setSector(sector *Sector) {
	if s.inMap && s.sector != nil {
		s.sector.disconnectSide(s)
	}
	s.sector = sector
	if s.inMap && sector != nil {
		sector.connectSide(s)
	}
}

func (s *Side) builtinProp(name string) (Value, bool) {
	if name == PropSector {
		return IntValue(sectorID(s.sector)), true
	}
	return Value{}, false
}

func (s *Side) setBuiltinProp(name string, val Value) bool {
	if name != PropSector {
		return false
	}
	sector, _ := s.parent.ObjectByID(val.AsInt()).(*Sector)
	s.setSector(sector)
	return true
}

func (s *Side) writeBuiltins(p Properties) {
	p[PropSector] = IntValue(sectorID(s.sector))
}

func (s *Side) readBuiltins(p Properties) {
	s.setBuiltinProp(PropSector, p[PropSector])
	delete(p, PropSector)
}

// /////////////////////////////////////
// Sector
// /////////////////////////////////////

type Sector struct {
	objBase
	sides []*Side
}

func (s *Sector) Type() ObjType { return TypeSector }
func (s *Sector) Tag() int { return s.IntProp(PropID) }
func (s *Sector) FloorHeight() int { return s.IntProp(PropHeightFloor) }
func (s *Sector) CeilingHeight() int { return s.IntProp(PropHeightCeiling) }
func (s *Sector) LightLevel() int { return s.IntProp(PropLightLevel) }

// ConnectedSides returns the sides referencing this sector. The slice must not be modified.
func (s *Sector) ConnectedSides() []*Side { return s.sides }

// Lines returns every line with a side in this sector.
func (s *Sector) Lines() []*Line {
	lines := make([]*Line, 0, len(s.sides))
	for _, side := range s.sides {
		if side.line != nil && !slices.Contains(lines, side.line) {
			lines = append(lines, side.line)
		}
	}
	return lines
}

// Vertices returns every vertex of the lines bounding this sector.
func (s *Sector) Vertices() []*Vertex {
	var verts []*Vertex
	for _, l := range s.Lines() {
		if !slices.Contains(verts, l.v1) {
			verts = append(verts, l.v1)
		}
		if !slices.Contains(verts, l.v2) {
			verts = append(verts, l.v2)
		}
	}
	return verts
}

// BoundingBox returns the bounds of the sector lines. The bound is empty for a sector
// without sides.
func (s *Sector) BoundingBox() orb.Bound {
	var b orb.Bound
	first := true
	for _, side := range s.sides {
		if side.line == nil {
			continue
		}
		if first {
			b = side.line.Bound()
			first = false
			continue
		}
		b = b.Union(side.line.Bound())
	}
	return b
}

func (s *Sector) connectSide(side *Side) {
	if !slices.Contains(s.sides, side) {
		s.sides = append(s.sides, side)
	}
}

func (s *Sector) disconnectSide(side *Side) {
	if i := slices.Index(s.sides, side); i >= 0 {
		s.sides = slices.Delete(s.sides, i, i+1)
	}
}

func (s *Sector) builtinProp(string) (Value, bool) { return Value{}, false }
func (s *Sector) setBuiltinProp(string, Value) bool { return false }
func (s *Sector) writeBuiltins(Properties) {}
func (s *Sector) readBuiltins(Properties) {}

// /////////////////////////////////////
// Thing
// /////////////////////////////////////

type Thing struct {
	objBase
	pos orb.Point
}

func (t *Thing) Type() ObjType { return TypeThing }
func (t *Thing) Pos() orb.Point { return t.pos }
func (t *Thing) X() float64 { return t.pos[0] }
func (t *Thing) Y() float64 { return t.pos[1] }
func (t *Thing) ThingType() int { return t.IntProp(PropType) }
func (t *Thing) Angle() int { return t.IntProp(PropAngle) }
func (t *Thing) Special() int { return t.IntProp(PropSpecial) }
func (t *Thing) Arg(n int) int { return t.IntProp(ArgProp(n)) }
func (t *Thing) TID() int { return t.IntProp(PropID) }

func (t *Thing) SetPos(p orb.Point) {
	if p == t.pos {
		return
	}
	t.setModified()
	t.pos = p
	if t.parent != nil {
		t.parent.thingsUpdated = t.modified
	}
}

func (t *Thing) builtinProp(name string) (Value, bool) {
	switch name {
	case PropX:
		return FloatValue(t.pos[0]), true
	case PropY:
		return FloatValue(t.pos[1]), true
	}
	return Value{}, false
}

func (t *Thing) setBuiltinProp(name string, val Value) bool {
	switch name {
	case PropX:
		t.pos[0] = val.AsFloat()
	case PropY:
		t.pos[1] = val.AsFloat()
	default:
		return false
	}
	if t.parent != nil {
		t.parent.thingsUpdated = t.modified
	}
	return true
}

func (t *Thing) writeBuiltins(p Properties) {
	p[PropX] = FloatValue(t.pos[0])
	p[PropY] = FloatValue(t.pos[1])
}

func (t *Thing) readBuiltins(p Properties) {
	t.pos = orb.Point{p[PropX].AsFloat(), p[PropY].AsFloat()}
	delete(p, PropX)
	delete(p, PropY)
}

func vertexID(v *Vertex) int {
	if v == nil {
		return 0
	}
	return v.id
}

func sideID(s *Side) int {
	if s == nil {
		return 0
	}
	return s.id
}

func sectorID(s *Sector) int {
	if s == nil {
		return 0
	}
	return s.id
}
