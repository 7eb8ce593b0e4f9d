package mapdata

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSquare adds a closed clockwise square with one sector on the inside.
func buildSquare(m *Map, x, y, size float64) (*Sector, []*Line) {
	pts := []orb.Point{{x, y}, {x, y + size}, {x + size, y + size}, {x + size, y}}
	var verts []*Vertex
	for _, p := range pts {
		verts = append(verts, m.CreateVertex(p, -1))
	}
	sector := m.CreateSector()
	var lines []*Line
	for i := range verts {
		l := m.CreateLine(verts[i], verts[(i+1)%len(verts)], true)
		l.SetFront(m.CreateSide(sector))
		lines = append(lines, l)
	}
	return sector, lines
}

func TestCreateVertexSplitsLine(t *testing.T) {
	m := New(FormatDoom)
	l := m.CreateLineAt(orb.Point{0, 0}, orb.Point{100, 0}, 0.1)

	v := m.CreateVertex(orb.Point{50, 0}, 0.1)

	assert.Equal(t, 3, m.NVertices())
	assert.Equal(t, 2, m.NLines())
	assert.Equal(t, v, l.V2())
	assert.Equal(t, v, m.Line(1).V1())
	assert.Equal(t, orb.Point{100, 0}, m.Line(1).End())

	// Existing vertex is reused
	assert.Equal(t, v, m.CreateVertex(orb.Point{50, 0}, 0.1))
	assert.Equal(t, 3, m.NVertices())
}

func TestSplitLineAdjustsOffsets(t *testing.T) {
	m := New(FormatDoom)
	s1, s2 := m.CreateSector(), m.CreateSector()
	l := m.CreateLineAt(orb.Point{0, 0}, orb.Point{100, 0}, -1)
	l.SetFront(m.CreateSide(s1))
	l.SetBack(m.CreateSide(s2))
	l.SetIntProp(PropSpecial, 7)

	nl := m.SplitLine(l, m.AddVertex(orb.Point{30, 0}))

	assert.Equal(t, 7, nl.Special())
	assert.Equal(t, 30, nl.Front().IntProp(PropOffsetX))
	assert.Equal(t, 0, l.Front().IntProp(PropOffsetX))
	assert.Equal(t, 70, l.Back().IntProp(PropOffsetX))
	assert.Equal(t, 0, nl.Back().IntProp(PropOffsetX))
	assert.Equal(t, s1, nl.FrontSector())
	assert.Equal(t, s2, nl.BackSector())
	assert.Len(t, s1.ConnectedSides(), 2)
}

func TestRemoveVertexCascades(t *testing.T) {
	m := New(FormatDoom)
	buildSquare(m, 0, 0, 64)
	v := m.Vertex(0)

	m.RemoveVertex(v)

	assert.False(t, v.IsInMap())
	assert.Equal(t, 3, m.NVertices())
	assert.Equal(t, 2, m.NLines())
	assert.Equal(t, 2, m.NSides())
	for i, vx := range m.Vertices() {
		assert.Equal(t, i, vx.Index())
	}
	for i, l := range m.Lines() {
		assert.Equal(t, i, l.Index())
		assert.False(t, l.HasVertex(v))
	}
	// Removed objects keep their id
	assert.Equal(t, v, m.ObjectByID(v.ID()))
}

func TestRemoveSide(t *testing.T) {
	t.Run("orphaned sector is removed", func(t *testing.T) {
		m := New(FormatDoom)
		s := m.CreateSector()
		l := m.CreateLineAt(orb.Point{0, 0}, orb.Point{64, 0}, -1)
		l.SetFront(m.CreateSide(s))

		m.RemoveSide(l.Front(), true)

		assert.Nil(t, l.Front())
		assert.Equal(t, 0, m.NSides())
		assert.Equal(t, 0, m.NSectors())
		assert.False(t, s.IsInMap())
	})

	t.Run("line with only a back side is flipped", func(t *testing.T) {
		m := New(FormatDoom)
		s1, s2 := m.CreateSector(), m.CreateSector()
		l := m.CreateLineAt(orb.Point{0, 0}, orb.Point{64, 0}, -1)
		l.SetFront(m.CreateSide(s1))
		back := m.CreateSide(s2)
		l.SetBack(back)

		m.RemoveSide(l.Front(), true)

		assert.Equal(t, back, l.Front())
		assert.Nil(t, l.Back())
		assert.Equal(t, orb.Point{64, 0}, l.Start())
		assert.Equal(t, 1, m.NSectors())
	})
}

func TestPropBackupWindow(t *testing.T) {
	m := New(FormatDoom)
	v := m.AddVertex(orb.Point{1, 2})

	m.BeginPropBackup()
	v.SetPos(orb.Point{3, 4})
	v.SetPos(orb.Point{5, 6})
	th := m.CreateThing(orb.Point{0, 0})
	th.SetIntProp(PropType, 1)
	backups := m.EndPropBackup()

	require.Len(t, backups, 1)
	assert.Equal(t, v.ID(), backups[0].ID)
	assert.Equal(t, 1.0, backups[0].Props[PropX].AsFloat())
	assert.Equal(t, 2.0, backups[0].Props[PropY].AsFloat())

	v.Restore(backups[0])
	assert.Equal(t, orb.Point{1, 2}, v.Pos())
}

func TestSetPropUnchangedIsNotAModification(t *testing.T) {
	m := New(FormatDoom)
	s := m.CreateSector()
	s.SetIntProp(PropLightLevel, 160)

	m.BeginPropBackup()
	s.SetIntProp(PropLightLevel, 160)
	assert.Empty(t, m.EndPropBackup())
}

func TestCreatedDeletedLedger(t *testing.T) {
	m := New(FormatDoom)
	old := m.AddVertex(orb.Point{0, 0})
	m.ClearCreatedDeleted()

	created := m.AddVertex(orb.Point{10, 0})
	m.RemoveVertex(old)
	temp := m.AddVertex(orb.Point{20, 0})
	m.RemoveVertex(temp)

	assert.Equal(t, []int{created.ID()}, m.CreatedIDs())
	assert.Equal(t, []int{old.ID()}, m.DeletedIDs())
}

func TestDetachReattach(t *testing.T) {
	m := New(FormatDoom)
	l := m.CreateLineAt(orb.Point{0, 0}, orb.Point{64, 0}, -1)

	m.DetachObject(l.ID())
	assert.Equal(t, 0, m.NLines())
	assert.Empty(t, m.Vertex(0).ConnectedLines())

	m.ReattachObject(l.ID())
	m.RefreshConnections()
	assert.Equal(t, 1, m.NLines())
	assert.Equal(t, []*Line{l}, m.Vertex(0).ConnectedLines())
}

func TestMergeArch(t *testing.T) {
	t.Run("coincident lines collapse", func(t *testing.T) {
		m := New(FormatDoom)
		m.CreateLineAt(orb.Point{0, 0}, orb.Point{64, 0}, -1)
		moving := m.CreateLineAt(orb.Point{100, 100}, orb.Point{164, 100}, -1)
		v1, v2 := moving.V1(), moving.V2()
		v1.SetPos(orb.Point{0, 0})
		v2.SetPos(orb.Point{64, 0})

		_, changed := m.MergeArch([]*Vertex{v1, v2}, 0.1)

		assert.True(t, changed)
		assert.Equal(t, 2, m.NVertices())
		assert.Equal(t, 1, m.NLines())
		for _, l := range m.Lines() {
			assert.False(t, l.IsZeroLength())
		}

		// Nothing left to do the second time
		_, changed = m.MergeArch(m.Vertices(), 0.1)
		assert.False(t, changed)
		assert.Equal(t, 2, m.NVertices())
	})

	t.Run("crossing lines are split", func(t *testing.T) {
		m := New(FormatDoom)
		m.CreateLineAt(orb.Point{0, 0}, orb.Point{100, 0}, -1)
		l := m.CreateLineAt(orb.Point{50, -50}, orb.Point{50, 50}, -1)

		lines, changed := m.MergeArch([]*Vertex{l.V1(), l.V2()}, 0.1)

		assert.True(t, changed)
		assert.NotEmpty(t, lines)
		assert.Equal(t, 5, m.NVertices())
		assert.Equal(t, 4, m.NLines())
		assert.NotNil(t, m.VertexAt(orb.Point{50, 0}))
	})

	t.Run("off grid crossing without split distance", func(t *testing.T) {
		m := New(FormatDoom)
		crossed := m.CreateLineAt(orb.Point{0, 3}, orb.Point{11, 0}, -1)
		l := m.CreateLineAt(orb.Point{0, 0}, orb.Point{7, 3}, -1)

		_, changed := m.MergeArch([]*Vertex{l.V1(), l.V2()}, 0)

		assert.True(t, changed)
		assert.Equal(t, 5, m.NVertices())
		assert.Equal(t, 4, m.NLines())
		assert.Same(t, crossed.V2(), l.V2())
		for i, a := range m.Lines() {
			for _, b := range m.Lines()[i+1:] {
				if a.SharesVertex(b) {
					continue
				}
				_, crossing := SegmentIntersection(a.Start(), a.End(), b.Start(), b.End())
				assert.False(t, crossing, "lines %d and %d cross", a.Index(), b.Index())
			}
		}
	})

	t.Run("collapsed line is removed", func(t *testing.T) {
		m := New(FormatDoom)
		l := m.CreateLineAt(orb.Point{0, 0}, orb.Point{64, 0}, -1)
		m.CreateLineAt(orb.Point{64, 0}, orb.Point{64, 64}, -1)
		l.V1().SetPos(orb.Point{64, 0})

		_, changed := m.MergeArch([]*Vertex{l.V1()}, 0.1)

		assert.True(t, changed)
		assert.Equal(t, 1, m.NLines())
		assert.Equal(t, 2, m.NVertices())
	})
}

func TestGeometryQueries(t *testing.T) {
	m := New(FormatDoom)
	sector, lines := buildSquare(m, 0, 0, 64)

	assert.Equal(t, sector.Index(), m.SectorAt(orb.Point{32, 32}))
	assert.Equal(t, -1, m.SectorAt(orb.Point{-32, 32}))
	assert.Equal(t, lines[0].Index(), m.NearestLine(orb.Point{2, 30}, 8))
	assert.Equal(t, -1, m.NearestLine(orb.Point{32, 32}, 8))
	assert.Equal(t, 2, m.NearestVertex(orb.Point{60, 60}, 8))
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{64, 64}}, m.Bounds())
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{64, 64}}, sector.BoundingBox())

	cuts := m.CutLines(orb.Point{-10, 32}, orb.Point{100, 32})
	require.Len(t, cuts, 2)
	assert.InDelta(t, 0, cuts[0].Point[0], 1e-9)
	assert.Equal(t, []*Line{lines[0]}, cuts[0].Lines)
	assert.InDelta(t, 64, cuts[1].Point[0], 1e-9)
	assert.InDelta(t, 32, cuts[1].Point[1], 1e-9)
	assert.Equal(t, []*Line{lines[2]}, cuts[1].Lines)

	assert.Nil(t, m.LineCrossVertex(orb.Point{0, 0}, orb.Point{0, 64}))
	assert.Equal(t, m.Vertex(0), m.LineCrossVertex(orb.Point{0, -64}, orb.Point{0, 128}))
}

func TestSectorAtIsland(t *testing.T) {
	m := New(FormatDoom)
	outer, _ := buildSquare(m, 0, 0, 128)
	inner, innerLines := buildSquare(m, 32, 32, 64)
	for _, l := range innerLines {
		l.SetBack(m.CreateSide(outer))
	}

	tests := []struct {
		p    orb.Point
		want int
	}{
		{orb.Point{64, 64}, inner.Index()},
		{orb.Point{16, 16}, outer.Index()},
		{orb.Point{16, 64}, outer.Index()},
		{orb.Point{112, 64}, outer.Index()},
		{orb.Point{200, 64}, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.SectorAt(tt.p), "%v", tt.p)
	}
	assert.True(t, inner.Contains(orb.Point{40, 90}))
	assert.False(t, outer.Contains(orb.Point{40, 90}))
}

func TestCommonValues(t *testing.T) {
	m := New(FormatDoom)
	a, b := m.CreateSector(), m.CreateSector()
	a.SetIntProp(PropLightLevel, 160)
	b.SetIntProp(PropLightLevel, 160)
	a.SetStringProp(PropTextureFloor, "FLOOR4_8")
	b.SetStringProp(PropTextureFloor, "NUKAGE1")
	objs := []Object{a, b}

	light, ok := CommonInt(objs, PropLightLevel).Get()
	assert.True(t, ok)
	assert.Equal(t, 160, light)

	tex := CommonString(objs, PropTextureFloor)
	assert.True(t, tex.Mixed)
	_, ok = tex.Get()
	assert.False(t, ok)

	assert.False(t, CommonInt(nil, PropLightLevel).Set)
}
