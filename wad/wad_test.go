package wad

import (
	"bytes"
	"encoding/binary"
	"io"
	"log"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stuarthighley/doomedit/gameconfig"
	"github.com/stuarthighley/doomedit/mapdata"
)

type testLump struct {
	name string
	data any
}

func name8(s string) String8 {
	var n String8
	copy(n[:], s)
	return n
}

// buildWAD lays out the lumps back to back after the header, followed by the directory.
func buildWAD(t *testing.T, magic string, lumps []testLump) *bytes.Reader {
	t.Helper()
	var data bytes.Buffer
	infos := make([]binLumpInfo, len(lumps))
	for i, l := range lumps {
		infos[i] = binLumpInfo{Filepos: int32(12 + data.Len()), Name: name8(l.name)}
		if l.data != nil {
			require.NoError(t, binary.Write(&data, binary.LittleEndian, l.data))
		}
		infos[i].Size = int32(12 + data.Len() - int(infos[i].Filepos))
	}

	var out bytes.Buffer
	var m [4]byte
	copy(m[:], magic)
	header := binHeader{Magic: m, NumLumps: int32(len(lumps)), InfoTableOfs: int32(12 + data.Len())}
	require.NoError(t, binary.Write(&out, binary.LittleEndian, header))
	out.Write(data.Bytes())
	require.NoError(t, binary.Write(&out, binary.LittleEndian, infos))
	return bytes.NewReader(out.Bytes())
}

func squareVertexes() []binVertex {
	return []binVertex{{0, 0}, {0, 64}, {64, 64}, {64, 0}}
}

func squareSides() []binSide {
	sides := make([]binSide, 4)
	for i := range sides {
		sides[i] = binSide{
			XOffset:       int16(i * 8),
			UpperTexture:  name8("-"),
			LowerTexture:  name8("-"),
			MiddleTexture: name8("STARTAN3"),
		}
	}
	return sides
}

func squareSectors(tag int16) []binSector {
	return []binSector{{
		FloorHeight:    0,
		CeilingHeight:  128,
		FloorTexture:   name8("FLOOR4_8"),
		CeilingTexture: name8("CEIL3_5"),
		LightLevel:     192,
		TagNum:         tag,
	}}
}

func doomLevel(marker string) []testLump {
	return []testLump{
		{marker, nil},
		{"THINGS", []binThing{{X: 32, Y: 32, Angle: 90, Type: 1, Options: 0x07}, {X: 16, Y: 16, Angle: -90, Type: 3004, Options: 0x18}}},
		{"LINEDEFS", []binLine{
			{VertexStart: 0, VertexEnd: 1, Flags: 0x01, Type: 46, SectorTag: 7, SideR: 0, SideL: noSide},
			{VertexStart: 1, VertexEnd: 2, Flags: 0x01, SideR: 1, SideL: noSide},
			{VertexStart: 2, VertexEnd: 3, Flags: 0x01, SideR: 2, SideL: noSide},
			{VertexStart: 3, VertexEnd: 0, Flags: 0x01, SideR: 3, SideL: noSide},
		}},
		{"SIDEDEFS", squareSides()},
		{"VERTEXES", squareVertexes()},
		{"SEGS", nil},
		{"SSECTORS", nil},
		{"NODES", nil},
		{"SECTORS", squareSectors(7)},
		{"REJECT", nil},
		{"BLOCKMAP", nil},
	}
}

func hexenLevel(marker string) []testLump {
	return []testLump{
		{marker, nil},
		{"THINGS", []binHexenThing{
			{TID: 5, X: 32, Y: 32, Z: 24, Angle: 180, Type: 9300, Options: 0x0107, Special: 80, Args: [5]uint8{1, 2}},
		}},
		{"LINEDEFS", []binHexenLine{
			{VertexStart: 0, VertexEnd: 1, Flags: 0x0401 | 0x0200, Special: 12, Args: [5]uint8{3, 16, 0, 0, 0}, SideR: 0, SideL: noSide},
			{VertexStart: 1, VertexEnd: 2, Flags: 0x01, SideR: 1, SideL: noSide},
			{VertexStart: 2, VertexEnd: 3, Flags: 0x01, SideR: 2, SideL: noSide},
			{VertexStart: 3, VertexEnd: 0, Flags: 0x01, SideR: 3, SideL: noSide},
		}},
		{"SIDEDEFS", squareSides()},
		{"VERTEXES", squareVertexes()},
		{"SECTORS", squareSectors(3)},
		{"BEHAVIOR", []byte("ACS\x00")},
	}
}

func TestNewRejectsBadMagic(t *testing.T) {
	_, err := New(buildWAD(t, "JUNK", nil))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestLevelNames(t *testing.T) {
	lumps := append(doomLevel("MAP02"), doomLevel("MAP01")...)
	lumps = append(lumps, testLump{"PLAYPAL", []byte{0, 0, 0}})
	w, err := New(buildWAD(t, "PWAD", lumps))
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, []string{"MAP01", "MAP02"}, w.LevelNames())
	assert.Equal(t, "PWAD", w.Header().Magic)
	assert.Equal(t, len(lumps), w.Header().NumLumps)

	_, err = w.ReadLevel("MAP03", nil)
	assert.ErrorIs(t, err, ErrLevelNotFound)
}

func TestReadDoomLevel(t *testing.T) {
	w, err := New(buildWAD(t, "IWAD", doomLevel("E1M1")))
	require.NoError(t, err)

	format, err := w.LevelFormat("E1M1")
	require.NoError(t, err)
	assert.Equal(t, mapdata.FormatDoom, format)

	m, err := w.ReadLevel("E1M1", nil)
	require.NoError(t, err)
	assert.Equal(t, mapdata.FormatDoom, m.Format)
	assert.Equal(t, 4, m.NVertices())
	assert.Equal(t, 4, m.NLines())
	assert.Equal(t, 4, m.NSides())
	assert.Equal(t, 1, m.NSectors())
	assert.Equal(t, 2, m.NThings())

	// Loading leaves nothing to undo
	assert.Empty(t, m.CreatedIDs())
	assert.Empty(t, m.DeletedIDs())

	sector := m.Sector(0)
	assert.Equal(t, 128, sector.CeilingHeight())
	assert.Equal(t, 192, sector.LightLevel())
	assert.Equal(t, 7, sector.Tag())
	assert.Equal(t, "FLOOR4_8", sector.StringProp(mapdata.PropTextureFloor))
	assert.Len(t, sector.ConnectedSides(), 4)

	line := m.Line(0)
	assert.Equal(t, orb.Point{0, 0}, line.Start())
	assert.Equal(t, orb.Point{0, 64}, line.End())
	assert.Equal(t, 46, line.Special())
	assert.Equal(t, 7, line.Arg(0))
	assert.True(t, line.BoolProp(mapdata.PropBlocking))
	assert.False(t, line.BoolProp(mapdata.PropTwoSided))
	assert.Same(t, sector, line.FrontSector())
	assert.Nil(t, line.Back())
	assert.Len(t, m.Vertex(0).ConnectedLines(), 2)

	side := m.Side(2)
	assert.Equal(t, 16, side.IntProp(mapdata.PropOffsetX))
	assert.Equal(t, "STARTAN3", side.TextureMiddle())
	assert.Equal(t, "-", side.TextureTop())
	assert.Same(t, m.Line(2), side.Line())

	player := m.Thing(0)
	assert.Equal(t, orb.Point{32, 32}, player.Pos())
	assert.Equal(t, 90, player.Angle())
	assert.Equal(t, 1, player.ThingType())
	assert.True(t, player.BoolProp("skill1"))
	assert.True(t, player.BoolProp("skill5"))
	assert.False(t, player.BoolProp("ambush"))
	assert.True(t, player.BoolProp("single"))

	deaf := m.Thing(1)
	assert.Equal(t, 270, deaf.Angle())
	assert.True(t, deaf.BoolProp("ambush"))
	assert.False(t, deaf.BoolProp("single"))
	assert.False(t, deaf.BoolProp("skill1"))
}

func TestReadHexenLevel(t *testing.T) {
	w, err := New(buildWAD(t, "PWAD", hexenLevel("MAP01")))
	require.NoError(t, err)

	m, err := w.ReadLevel("MAP01", nil)
	require.NoError(t, err)
	assert.Equal(t, mapdata.FormatHexen, m.Format)

	line := m.Line(0)
	assert.Equal(t, 12, line.Special())
	assert.Equal(t, 3, line.Arg(0))
	assert.Equal(t, 16, line.Arg(1))
	assert.True(t, line.BoolProp(mapdata.PropBlocking))
	assert.True(t, line.BoolProp("repeatspecial"))
	assert.True(t, line.BoolProp("playeruse"))
	assert.False(t, line.BoolProp("playercross"))

	thing := m.Thing(0)
	assert.Equal(t, 5, thing.TID())
	assert.Equal(t, 24, thing.IntProp("height"))
	assert.Equal(t, 180, thing.Angle())
	assert.Equal(t, 80, thing.Special())
	assert.Equal(t, 2, thing.Arg(1))
	assert.True(t, thing.BoolProp("single"))
	assert.False(t, thing.BoolProp("coop"))
	assert.Equal(t, 3, m.Sector(0).Tag())
}

func TestReadLevelConfigurationMismatch(t *testing.T) {
	w, err := New(buildWAD(t, "PWAD", hexenLevel("MAP01")))
	require.NoError(t, err)

	cfg, err := gameconfig.Builtin("doom")
	require.NoError(t, err)
	_, err = w.ReadLevel("MAP01", cfg)
	assert.ErrorIs(t, err, ErrFormatMismatch)

	cfg, err = gameconfig.Builtin("hexen")
	require.NoError(t, err)
	_, err = w.ReadLevel("MAP01", cfg)
	assert.NoError(t, err)
}

func TestReadLevelBadReferences(t *testing.T) {
	lumps := doomLevel("E1M1")
	lumps[2].data = []binLine{{VertexStart: 0, VertexEnd: 9, SideR: 0, SideL: noSide}}
	w, err := New(buildWAD(t, "IWAD", lumps))
	require.NoError(t, err)
	_, err = w.ReadLevel("E1M1", nil)
	assert.ErrorContains(t, err, "vertex out of range")

	// A truncated record is rejected rather than silently dropped
	lumps = doomLevel("E1M1")
	lumps[4].data = []byte{1, 2, 3, 4, 5, 6}
	w, err = New(buildWAD(t, "IWAD", lumps))
	require.NoError(t, err)
	_, err = w.ReadLevel("E1M1", nil)
	assert.ErrorContains(t, err, "not a multiple")
}

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct {
		in   int16
		want int
	}{
		{0, 0},
		{90, 90},
		{-90, 270},
		{360, 0},
		{725, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDegrees(tt.in))
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(log.New(&buf, "", 0))
	defer SetLogger(log.New(io.Discard, "", log.LstdFlags))

	w, err := New(buildWAD(t, "IWAD", doomLevel("E1M1")))
	require.NoError(t, err)
	_, err = w.ReadLevel("E1M1", nil)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Read 11 lumps, 1 levels")
	assert.Contains(t, buf.String(), "Read level E1M1: 4 vertexes, 4 lines, 4 sides, 1 sectors, 2 things")
}
