// Package mapdata holds the in-memory model of a Doom-engine map being edited: vertices,
// lines, sides, sectors and things, their properties, and the primitives used to query and
// mutate the map topology.
package mapdata

import (
	"github.com/paulmach/orb"
	"golang.org/x/exp/slices"
)

// Format is the map format the map was loaded from.
type Format int

const (
	FormatDoom Format = iota
	FormatHexen
	FormatUDMF
)

func (f Format) String() string {
	switch f {
	case FormatDoom:
		return "doom"
	case FormatHexen:
		return "hexen"
	case FormatUDMF:
		return "udmf"
	}
	return "unknown"
}

// Map is an editable Doom-engine map.
//
// Every object ever created in the map keeps its id for the lifetime of the Map, removed
// objects included, so that undo steps can refer to them.
type Map struct {
	Format Format

	vertices []*Vertex
	lines    []*Line
	sides    []*Side
	sectors  []*Sector
	things   []*Thing
	objects  []Object // by id, objects[0] is unused

	clock           int64
	geometryUpdated int64
	thingsUpdated   int64

	// Property backup window
	backupOpen  bool
	backupStart int64
	backups     map[int]*Backup

	// Created/deleted object ledger
	createdIDs []int
	deletedIDs []int
}

// New creates an empty map.
func New(format Format) *Map {
	return &Map{
		Format:  format,
		objects: []Object{nil},
		backups: map[int]*Backup{},
	}
}

func (m *Map) tick() int64 {
	m.clock++
	return m.clock
}

// Clock returns the current modification clock of the map.
func (m *Map) Clock() int64 { return m.clock }

// GeometryUpdated returns the clock value of the last vertex/line geometry change.
func (m *Map) GeometryUpdated() int64 { return m.geometryUpdated }

// ThingsUpdated returns the clock value of the last thing position change.
func (m *Map) ThingsUpdated() int64 { return m.thingsUpdated }

func (m *Map) NVertices() int { return len(m.vertices) }
func (m *Map) NLines() int { return len(m.lines) }
func (m *Map) NSides() int { return len(m.sides) }
func (m *Map) NSectors() int { return len(m.sectors) }
func (m *Map) NThings() int { return len(m.things) }

// Vertices returns the vertices in the map. The slice must not be modified.
func (m *Map) Vertices() []*Vertex { return m.vertices }
func (m *Map) Lines() []*Line { return m.lines }
func (m *Map) Sides() []*Side { return m.sides }
func (m *Map) Sectors() []*Sector { return m.sectors }
func (m *Map) Things() []*Thing { return m.things }

func (m *Map) Vertex(index int) *Vertex { return at(m.vertices, index) }
func (m *Map) Line(index int) *Line { return at(m.lines, index) }
func (m *Map) Side(index int) *Side { return at(m.sides, index) }
func (m *Map) Sector(index int) *Sector { return at(m.sectors, index) }
func (m *Map) Thing(index int) *Thing { return at(m.things, index) }

func at[T any](list []*T, index int) *T {
	if index < 0 || index >= len(list) {
		return nil
	}
	return list[index]
}

// Object returns the object of the given type at index, or nil.
func (m *Map) Object(t ObjType, index int) Object {
	switch t {
	case TypeVertex:
		if v := m.Vertex(index); v != nil {
			return v
		}
	case TypeLine:
		if l := m.Line(index); l != nil {
			return l
		}
	case TypeSide:
		if s := m.Side(index); s != nil {
			return s
		}
	case TypeSector:
		if s := m.Sector(index); s != nil {
			return s
		}
	case TypeThing:
		if t := m.Thing(index); t != nil {
			return t
		}
	}
	return nil
}

// ObjectByID returns the object with the given id, whether or not it is currently in the map.
func (m *Map) ObjectByID(id int) Object {
	if id <= 0 || id >= len(m.objects) {
		return nil
	}
	return m.objects[id]
}

// NObjectIDs returns the number of ids allocated so far, plus one.
func (m *Map) NObjectIDs() int { return len(m.objects) }

// /////////////////////////////////////
// Undo support
// /////////////////////////////////////

// BeginPropBackup opens a property backup window. The first time any object is modified while
// the window is open, its state before the modification is saved.
func (m *Map) BeginPropBackup() {
	m.backupOpen = true
	m.backupStart = m.tick()
	m.backups = map[int]*Backup{}
}

// EndPropBackup closes the backup window and returns the saved backups ordered by id.
func (m *Map) EndPropBackup() []*Backup {
	m.backupOpen = false
	list := make([]*Backup, 0, len(m.backups))
	for _, b := range m.backups {
		list = append(list, b)
	}
	slices.SortFunc(list, func(a, b *Backup) int { return a.ID - b.ID })
	m.backups = map[int]*Backup{}
	return list
}

// PropBackupOpen reports whether a property backup window is open.
func (m *Map) PropBackupOpen() bool { return m.backupOpen }

// ClearCreatedDeleted empties the created/deleted object ledger.
func (m *Map) ClearCreatedDeleted() {
	m.createdIDs = m.createdIDs[:0]
	m.deletedIDs = m.deletedIDs[:0]
}

// CreatedIDs returns the ids of objects created since the ledger was cleared that are still
// in the map.
func (m *Map) CreatedIDs() []int {
	var ids []int
	for _, id := range m.createdIDs {
		if m.objects[id].IsInMap() && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// DeletedIDs returns the ids of objects deleted since the ledger was cleared, excluding objects
// that were also created in that time.
func (m *Map) DeletedIDs() []int {
	var ids []int
	for _, id := range m.deletedIDs {
		if slices.Contains(m.createdIDs, id) || m.objects[id].IsInMap() || slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// DetachObject takes an object out of the map without touching anything it references.
// Used when undoing object creation.
func (m *Map) DetachObject(id int) {
	o := m.ObjectByID(id)
	if o == nil || !o.IsInMap() {
		return
	}
	m.removeFromList(o)
}

// ReattachObject puts a detached object back into the map. Used when undoing object deletion.
func (m *Map) ReattachObject(id int) {
	o := m.ObjectByID(id)
	if o == nil || o.IsInMap() {
		return
	}
	m.addToList(o)
}

// RefreshConnections rebuilds the vertex->line, sector->side and side->line links from the
// objects currently in the map.
func (m *Map) RefreshConnections() {
	for _, v := range m.vertices {
		v.lines = v.lines[:0]
	}
	for _, s := range m.sectors {
		s.sides = s.sides[:0]
	}
	for _, l := range m.lines {
		if l.v1 != nil && l.v1.inMap {
			l.v1.connectLine(l)
		}
		if l.v2 != nil && l.v2.inMap {
			l.v2.connectLine(l)
		}
		if l.front != nil {
			l.front.line = l
		}
		if l.back != nil {
			l.back.line = l
		}
	}
	for _, s := range m.sides {
		if s.sector != nil && s.sector.inMap {
			s.sector.connectSide(s)
		}
	}
	m.geometryUpdated = m.tick()
}

// /////////////////////////////////////
// Object lists
// /////////////////////////////////////

func (m *Map) register(o Object) {
	b := o.base()
	b.self = o
	b.parent = m
	b.id = len(m.objects)
	b.modified = m.tick()
	m.objects = append(m.objects, o)
	m.createdIDs = append(m.createdIDs, b.id)
	m.addToList(o)
}

func (m *Map) addToList(o Object) {
	b := o.base()
	b.inMap = true
	switch t := o.(type) {
	case *Vertex:
		b.index = len(m.vertices)
		m.vertices = append(m.vertices, t)
	case *Line:
		b.index = len(m.lines)
		m.lines = append(m.lines, t)
		if t.v1 != nil {
			t.v1.connectLine(t)
		}
		if t.v2 != nil {
			t.v2.connectLine(t)
		}
	case *Side:
		b.index = len(m.sides)
		m.sides = append(m.sides, t)
		if t.sector != nil {
			t.sector.connectSide(t)
		}
	case *Sector:
		b.index = len(m.sectors)
		m.sectors = append(m.sectors, t)
	case *Thing:
		b.index = len(m.things)
		m.things = append(m.things, t)
	}
}

func (m *Map) removeFromList(o Object) {
	b := o.base()
	b.inMap = false
	switch t := o.(type) {
	case *Vertex:
		m.vertices = removeAt(m.vertices, b.index)
	case *Line:
		if t.v1 != nil {
			t.v1.disconnectLine(t)
		}
		if t.v2 != nil {
			t.v2.disconnectLine(t)
		}
		m.lines = removeAt(m.lines, b.index)
	case *Side:
		if t.sector != nil {
			t.sector.disconnectSide(t)
		}
		m.sides = removeAt(m.sides, b.index)
	case *Sector:
		m.sectors = removeAt(m.sectors, b.index)
	case *Thing:
		m.things = removeAt(m.things, b.index)
	}
	b.index = -1
}

// removeAt removes list[index] and renumbers the objects after it.
func removeAt[T Object](list []T, index int) []T {
	list = slices.Delete(list, index, index+1)
	for i := index; i < len(list); i++ {
		list[i].base().index = i
	}
	return list
}

func (m *Map) deleted(o Object) {
	m.deletedIDs = append(m.deletedIDs, o.ID())
}

// /////////////////////////////////////
// Creation
// /////////////////////////////////////

// AddVertex adds a vertex at p without checking for an existing vertex there.
func (m *Map) AddVertex(p orb.Point) *Vertex {
	v := &Vertex{pos: p}
	m.register(v)
	m.geometryUpdated = v.modified
	return v
}

// CreateVertex returns the vertex at p, creating it if needed. When a new vertex is created
// and splitDist is not negative, every line passing within splitDist of it is split there.
func (m *Map) CreateVertex(p orb.Point, splitDist float64) *Vertex {
	if v := m.VertexAt(p); v != nil {
		return v
	}
	v := m.AddVertex(p)
	if splitDist >= 0 {
		n := len(m.lines)
		for i := 0; i < n; i++ {
			l := m.lines[i]
			if l.HasVertex(v) {
				continue
			}
			if l.DistanceTo(p) <= splitDist {
				m.SplitLine(l, v)
			}
		}
	}
	return v
}

// CreateLine creates a line from v1 to v2. Unless force is set, an existing line between the
// same two vertices is returned instead.
func (m *Map) CreateLine(v1, v2 *Vertex, force bool) *Line {
	if !force {
		if l := m.LineBetween(v1, v2); l != nil {
			return l
		}
	}
	l := &Line{v1: v1, v2: v2}
	m.register(l)
	m.geometryUpdated = l.modified
	return l
}

// CreateLineAt creates a line between two points, creating (and splitting at) vertices as needed.
func (m *Map) CreateLineAt(p1, p2 orb.Point, splitDist float64) *Line {
	v1 := m.CreateVertex(p1, splitDist)
	v2 := m.CreateVertex(p2, splitDist)
	return m.CreateLine(v1, v2, false)
}

// CreateSide creates a side in the given sector. It is not attached to a line.
func (m *Map) CreateSide(sector *Sector) *Side {
	s := &Side{sector: sector}
	m.register(s)
	return s
}

func (m *Map) CreateSector() *Sector {
	s := &Sector{}
	m.register(s)
	return s
}

func (m *Map) CreateThing(p orb.Point) *Thing {
	t := &Thing{pos: p}
	m.register(t)
	m.thingsUpdated = t.modified
	return t
}

// DuplicateSide creates a copy of side s in the same sector.
func (m *Map) DuplicateSide(s *Side) *Side {
	ns := m.CreateSide(s.sector)
	ns.props = s.props.Clone()
	return ns
}

// /////////////////////////////////////
// Removal
// /////////////////////////////////////

// RemoveVertex removes a vertex and every line connected to it.
func (m *Map) RemoveVertex(v *Vertex) {
	if v == nil || !v.inMap {
		return
	}
	for len(v.lines) > 0 {
		m.RemoveLine(v.lines[0])
	}
	m.removeFromList(v)
	m.deleted(v)
	m.geometryUpdated = m.tick()
}

// RemoveLine removes a line and its sides.
func (m *Map) RemoveLine(l *Line) {
	if l == nil || !l.inMap {
		return
	}
	if l.front != nil {
		m.RemoveSide(l.front, false)
	}
	if l.back != nil {
		m.RemoveSide(l.back, false)
	}
	m.removeFromList(l)
	m.deleted(l)
	m.geometryUpdated = m.tick()
}

// RemoveSide removes a side. If fromLine is set the side is also detached from its line, which
// is flipped when it is left with only a back side. A sector left without sides is removed.
func (m *Map) RemoveSide(s *Side, fromLine bool) {
	if s == nil || !s.inMap {
		return
	}
	if fromLine && s.line != nil {
		l := s.line
		if l.front == s {
			l.SetFront(nil)
		} else if l.back == s {
			l.SetBack(nil)
		}
		if l.front == nil && l.back != nil {
			l.Flip(true)
		}
	}
	sector := s.sector
	m.removeFromList(s)
	m.deleted(s)
	if sector != nil && sector.inMap && len(sector.sides) == 0 {
		m.removeFromList(sector)
		m.deleted(sector)
	}
}

// RemoveSector removes a sector along with all of its sides.
func (m *Map) RemoveSector(s *Sector) {
	if s == nil || !s.inMap {
		return
	}
	for len(s.sides) > 0 {
		m.RemoveSide(s.sides[0], true)
	}
	if s.inMap {
		m.removeFromList(s)
		m.deleted(s)
	}
}

func (m *Map) RemoveThing(t *Thing) {
	if t == nil || !t.inMap {
		return
	}
	m.removeFromList(t)
	m.deleted(t)
	m.thingsUpdated = m.tick()
}

// RemoveObject removes any kind of map object.
func (m *Map) RemoveObject(o Object) {
	switch t := o.(type) {
	case *Vertex:
		m.RemoveVertex(t)
	case *Line:
		m.RemoveLine(t)
	case *Side:
		m.RemoveSide(t, true)
	case *Sector:
		m.RemoveSector(t)
	case *Thing:
		m.RemoveThing(t)
	}
}

// RemoveDetachedVertices removes vertices no line uses and returns how many were removed.
func (m *Map) RemoveDetachedVertices() int {
	count := 0
	for i := len(m.vertices) - 1; i >= 0; i-- {
		if v := m.vertices[i]; len(v.lines) == 0 {
			m.RemoveVertex(v)
			count++
		}
	}
	return count
}

// RemoveZeroLengthLines removes lines whose ends are at the same position.
func (m *Map) RemoveZeroLengthLines() int {
	count := 0
	for i := len(m.lines) - 1; i >= 0; i-- {
		if i >= len(m.lines) {
			continue
		}
		if l := m.lines[i]; l.IsZeroLength() {
			m.RemoveLine(l)
			count++
		}
	}
	return count
}

// RemoveUnusedSectors removes sectors no side references.
func (m *Map) RemoveUnusedSectors() int {
	count := 0
	for i := len(m.sectors) - 1; i >= 0; i-- {
		if s := m.sectors[i]; len(s.sides) == 0 {
			m.removeFromList(s)
			m.deleted(s)
			count++
		}
	}
	return count
}

// RemoveSidelessLines removes lines that have neither a front nor a back side.
func (m *Map) RemoveSidelessLines() int {
	count := 0
	for i := len(m.lines) - 1; i >= 0; i-- {
		if i >= len(m.lines) {
			continue
		}
		if l := m.lines[i]; l.front == nil && l.back == nil {
			m.RemoveLine(l)
			count++
		}
	}
	return count
}
