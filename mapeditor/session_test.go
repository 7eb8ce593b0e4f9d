package mapeditor

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stuarthighley/doomedit/gameconfig"
	"github.com/stuarthighley/doomedit/mapdata"
	"github.com/stuarthighley/doomedit/undo"
)

func newSession(t *testing.T, format mapdata.Format) *Session {
	t.Helper()
	return newSessionWith(t, format, DefaultOptions())
}

func newSessionWith(t *testing.T, format mapdata.Format, opts Options) *Session {
	t.Helper()
	cfg, err := gameconfig.ForFormat(format)
	require.NoError(t, err)
	return NewSession(mapdata.New(format), cfg, opts)
}

// addSquare adds a clockwise square of one-sided lines with a sector inside.
func addSquare(m *mapdata.Map, x, y, size float64) (*mapdata.Sector, []*mapdata.Line) {
	pts := []orb.Point{{x, y}, {x, y + size}, {x + size, y + size}, {x + size, y}}
	var verts []*mapdata.Vertex
	for _, p := range pts {
		verts = append(verts, m.CreateVertex(p, -1))
	}
	sector := m.CreateSector()
	sector.SetIntProp(mapdata.PropHeightCeiling, 128)
	sector.SetIntProp(mapdata.PropLightLevel, 160)
	var lines []*mapdata.Line
	for i := range verts {
		l := m.CreateLine(verts[i], verts[(i+1)%len(verts)], true)
		side := m.CreateSide(sector)
		side.SetStringProp(mapdata.PropTextureMiddle, "STARTAN2")
		l.SetFront(side)
		lines = append(lines, l)
	}
	return sector, lines
}

type recordingPanel struct {
	opened [][]mapdata.Object
}

func (p *recordingPanel) OpenObjects(objs []mapdata.Object) {
	p.opened = append(p.opened, objs)
}

func TestSectorModeCycles(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	s.SetEditMode(ModeSectors)
	require.Equal(t, SectorBoth, s.SectorMode())

	for _, want := range []SectorMode{SectorFloor, SectorCeiling, SectorBoth} {
		s.SetEditMode(ModeSectors)
		assert.Equal(t, want, s.SectorMode())
	}
	assert.Equal(t, ModeSectors, s.Mode())
}

func TestSetEditModeClearsState(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	addSquare(s.Map(), 0, 0, 64)
	s.SetEditMode(ModeLines)
	s.Select(1, true)
	s.SetHilight(0)
	require.NoError(t, s.BeginUndoRecordLocked("Change Sector Light"))
	s.EndUndoRecord(true)

	s.SetEditMode(ModeThings)

	assert.Empty(t, s.Selection())
	assert.Equal(t, -1, s.Hilight())
	assert.True(t, s.Tags().Empty())
	assert.Equal(t, "", s.lockedName)
	assert.Equal(t, "Things mode", s.LastMessage())
}

func TestLeaving3DClearsItsUndo(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	sector, _ := addSquare(s.Map(), 0, 0, 64)

	s.SetEditMode(Mode3D)
	s.SetHilight3D(Item3D{Index: 0, Type: ItemFloor})
	s.ChangeHeight3D(8)
	require.Equal(t, 8, sector.FloorHeight())
	require.Equal(t, 1, s.UndoManager().NUndoLevels())
	assert.Equal(t, 0, s.undo2D.NUndoLevels())

	s.SetEditMode(ModeSectors)
	assert.Equal(t, 0, s.undo3D.NUndoLevels())
	s.Undo()
	assert.Equal(t, "Nothing to undo", s.LastMessage())
	assert.Equal(t, 8, sector.FloorHeight())
}

func TestUndoRedoMessages(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)

	assert.Equal(t, "", s.Undo())
	assert.Equal(t, "Nothing to undo", s.LastMessage())
	assert.Equal(t, "", s.Redo())
	assert.Equal(t, "Nothing to redo", s.LastMessage())

	s.record("Add Vertex", func() bool {
		s.Map().CreateVertex(orb.Point{16, 16}, -1)
		return true
	})
	assert.Equal(t, "Add Vertex", s.Undo())
	assert.Equal(t, "Undo: Add Vertex", s.LastMessage())
	assert.Equal(t, 0, s.Map().NVertices())
	assert.Equal(t, "Add Vertex", s.Redo())
	assert.Equal(t, 1, s.Map().NVertices())
}

func TestBeginUndoRecordWhileRecording(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	require.NoError(t, s.BeginUndoRecord("First"))
	err := s.BeginUndoRecord("Second")
	assert.ErrorIs(t, err, undo.ErrAlreadyRecording)
	assert.False(t, s.EndUndoRecord(true))
}

func TestNoOpLevelIsDropped(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	sector, _ := addSquare(s.Map(), 0, 0, 64)

	s.record("Nothing", func() bool {
		sector.SetIntProp(mapdata.PropLightLevel, sector.LightLevel())
		return true
	})
	assert.Equal(t, 0, s.UndoManager().NUndoLevels())
}

func TestLockedUndoCollapses(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	sector, _ := addSquare(s.Map(), 0, 0, 64)
	s.SetEditMode(ModeSectors)
	s.SetHilight(0)

	for i := 0; i < 3; i++ {
		s.ChangeSectorLight(true, false)
	}
	assert.Equal(t, 208, sector.LightLevel())
	assert.Equal(t, 1, s.UndoManager().NUndoLevels())

	assert.Equal(t, "Change Sector Light", s.Undo())
	assert.Equal(t, 160, sector.LightLevel())

	// A different operation in between starts a new level
	s.SetHilight(0)
	s.ChangeSectorLight(true, false)
	s.ChangeSectorHeight(8)
	s.ChangeSectorLight(true, false)
	assert.Equal(t, 3, s.UndoManager().NUndoLevels())
	assert.Equal(t, []string{"Change Sector Light", "Change Sector Height", "Change Sector Light"},
		s.UndoManager().LevelNames())
}

func TestRejectedBeginKeepsLockedLevel(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	sector, _ := addSquare(s.Map(), 0, 0, 64)
	s.SetEditMode(ModeSectors)
	s.SetHilight(0)

	s.ChangeSectorLight(true, false)
	require.NoError(t, s.BeginUndoRecordLocked("Change Sector Light"))
	assert.ErrorIs(t, s.BeginUndoRecord("Other"), undo.ErrAlreadyRecording)
	assert.True(t, s.EndUndoRecord(true))

	s.ChangeSectorLight(true, false)
	assert.Equal(t, 192, sector.LightLevel())
	assert.Equal(t, 1, s.UndoManager().NUndoLevels())
}

func TestMessagesAreBounded(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	for i := 0; i < 15; i++ {
		s.AddMessage(string(rune('a' + i)))
	}
	assert.Len(t, s.Messages(), 10)
	assert.Equal(t, "o", s.LastMessage())
	s.ClearMessages()
	assert.Empty(t, s.Messages())
}

func TestHilightOpensPropertiesWhenNothingSelected(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	addSquare(s.Map(), 0, 0, 64)
	panel := &recordingPanel{}
	s.SetPropertiesPanel(panel)

	require.True(t, s.UpdateHilight(orb.Point{1, 1}, 1))
	assert.Equal(t, 0, s.Hilight())
	require.Len(t, panel.opened, 1)
	assert.Equal(t, s.Map().Vertex(0), panel.opened[0][0])

	// Locked hilight does not move
	s.LockHilight(true)
	assert.False(t, s.UpdateHilight(orb.Point{64, 64}, 1))
	assert.Equal(t, 0, s.Hilight())
	s.LockHilight(false)

	// With a selection the panel keeps showing it
	s.Select(3, true)
	n := len(panel.opened)
	require.True(t, s.UpdateHilight(orb.Point{64, 64}, 1))
	assert.Equal(t, 2, s.Hilight())
	assert.Len(t, panel.opened, n)
}

func TestHilightToleranceScales(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	s.Map().CreateVertex(orb.Point{0, 0}, -1)

	assert.False(t, s.UpdateHilight(orb.Point{12, 0}, 1))
	assert.True(t, s.UpdateHilight(orb.Point{12, 0}, 2))
	assert.Equal(t, 0, s.Hilight())
}

func TestHilightOverlappingThings(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	m := s.Map()
	for _, p := range []orb.Point{{0, 0}, {10, 0}, {200, 0}} {
		th := m.CreateThing(p)
		th.SetIntProp(mapdata.PropType, 3001)
	}
	s.SetEditMode(ModeThings)

	// Both of the first two things cover the cursor, the later one wins
	s.UpdateHilight(orb.Point{5, 0}, 1)
	assert.Equal(t, 1, s.Hilight())

	// Outside any radius the nearest within tolerance is used
	s.UpdateHilight(orb.Point{225, 0}, 1)
	assert.Equal(t, -1, s.Hilight())
	s.UpdateHilight(orb.Point{205, 0}, 1)
	assert.Equal(t, 2, s.Hilight())
}

func TestSelectCurrentToggles(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	addSquare(s.Map(), 0, 0, 64)
	s.SetHilight(2)

	require.True(t, s.SelectCurrent())
	assert.Equal(t, []int{2}, s.Selection())
	require.True(t, s.SelectCurrent())
	assert.Empty(t, s.Selection())
}

func TestSelectWithin(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	addSquare(s.Map(), 0, 0, 64)
	addSquare(s.Map(), 128, 0, 64)
	box := orb.Bound{Min: orb.Point{-8, -8}, Max: orb.Point{72, 72}}

	tests := []struct {
		mode Mode
		want int
	}{
		{ModeVertices, 4},
		{ModeLines, 4},
		{ModeSectors, 1},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			s.SetEditMode(tc.mode)
			assert.Equal(t, tc.want, s.SelectWithin(box, false))
			assert.Len(t, s.Selection(), tc.want)
		})
	}

	// Additive selection keeps what was there
	s.SetEditMode(ModeVertices)
	s.Select(7, true)
	s.SelectWithin(box, true)
	assert.Len(t, s.Selection(), 5)
	assert.Equal(t, 7, s.Selection()[0])

	// A line with one end outside is not selected
	s.SetEditMode(ModeLines)
	assert.Equal(t, 0, s.SelectWithin(orb.Bound{Min: orb.Point{-8, -8}, Max: orb.Point{8, 32}}, false))
}

func TestSelectAll(t *testing.T) {
	s := newSession(t, mapdata.FormatDoom)
	addSquare(s.Map(), 0, 0, 64)
	s.SetEditMode(ModeLines)
	assert.Equal(t, 4, s.SelectAll())
	assert.Equal(t, []int{0, 1, 2, 3}, s.Selection())
}

func TestLoadOptions(t *testing.T) {
	opts, err := LoadOptions(strings.NewReader("grid_level: 4\nmerge_undo_levels: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, opts.GridLevel)
	assert.True(t, opts.MergeUndoLevels)
	assert.True(t, opts.MergeOnMove)

	opts, err = LoadOptions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)

	_, err = LoadOptions(strings.NewReader("grid_level: [1"))
	assert.Error(t, err)
}
