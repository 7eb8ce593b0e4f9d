// Package wad loads Doom and Hexen format levels from WAD archives into editable maps.
// The file format is documented in The Unofficial DOOM Specs:
// http://www.gamers.org/dhs/helpdocs/dmsp1666.html

package wad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/stuarthighley/doomedit/gameconfig"
	"github.com/stuarthighley/doomedit/mapdata"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

var (
	ErrBadMagic       = errors.New("bad magic")
	ErrLevelNotFound  = errors.New("level not found")
	ErrFormatMismatch = errors.New("configuration does not match level format")
)

// WAD is an open archive. Only the lump directory is held in memory; level lumps are read
// on demand.
type WAD struct {
	r         io.ReadSeeker
	closer    io.Closer
	header    Header
	lumpInfos []LumpInfo
	lumpNums  map[string]int
	levels    map[string]int
}

type binHeader struct {
	Magic        [4]byte
	NumLumps     int32
	InfoTableOfs int32
}

type Header struct {
	Magic        string
	NumLumps     int
	InfoTableOfs int
}

type binLumpInfo struct {
	Filepos int32
	Size    int32
	Name    String8
}

type LumpInfo struct {
	Name    string
	Filepos int
	Size    int
}

// WAD eight-character string type. Null-terminated for short strings.
type String8 [8]byte

// String converts String8 to string
func (s String8) String() string {
	i := bytes.IndexByte(s[:], 0)
	if i == -1 {
		i = len(s)
	}
	return string(s[0:i])
}

// Level lump layouts

type binVertex struct {
	X, Y int16
}

type binSector struct {
	FloorHeight    int16
	CeilingHeight  int16
	FloorTexture   String8
	CeilingTexture String8
	LightLevel     int16
	Type           int16
	TagNum         int16
}

type binSide struct {
	XOffset       int16
	YOffset       int16
	UpperTexture  String8
	LowerTexture  String8
	MiddleTexture String8
	SectorNum     uint16
}

type binLine struct {
	VertexStart, VertexEnd uint16
	Flags                  uint16
	Type                   uint16
	SectorTag              uint16
	SideR, SideL           uint16
}

type binHexenLine struct {
	VertexStart, VertexEnd uint16
	Flags                  uint16
	Special                uint8
	Args                   [5]uint8
	SideR, SideL           uint16
}

type binThing struct {
	X       int16
	Y       int16
	Angle   int16
	Type    int16
	Options int16
}

type binHexenThing struct {
	TID     int16
	X       int16
	Y       int16
	Z       int16
	Angle   int16
	Type    int16
	Options int16
	Special uint8
	Args    [5]uint8
}

const noSide = 0xffff

// Lumps that may follow a level marker
var levelLumps = []string{
	"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS", "SSECTORS",
	"NODES", "SECTORS", "REJECT", "BLOCKMAP", "BEHAVIOR", "SCRIPTS",
}

// Open opens the named WAD file.
func Open(filename string) (*WAD, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	w, err := New(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	w.closer = file
	return w, nil
}

// New reads the WAD header and lump directory from r.
func New(r io.ReadSeeker) (*WAD, error) {
	logger.Println("Start reading WAD")

	w := &WAD{r: r}

	// Read header
	var binHeader binHeader
	if err := binary.Read(r, binary.LittleEndian, &binHeader); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	magic := string(binHeader.Magic[:])
	if magic != "IWAD" && magic != "PWAD" {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, magic)
	}
	w.header = Header{magic, int(binHeader.NumLumps), int(binHeader.InfoTableOfs)}

	if err := w.readInfoTables(); err != nil {
		return nil, err
	}
	logger.Printf("Read %v lumps, %v levels", len(w.lumpInfos), len(w.levels))
	return w, nil
}

// Close closes the underlying file if the WAD was opened with Open.
func (w *WAD) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

func (w *WAD) Header() Header { return w.header }

func (w *WAD) readInfoTables() error {
	if err := w.seek(int64(w.header.InfoTableOfs)); err != nil {
		return err
	}
	lumpNums := map[string]int{}
	levels := map[string]int{}
	lumpInfos := make([]LumpInfo, w.header.NumLumps)
	for i := 0; i < w.header.NumLumps; i++ {
		var binInfo binLumpInfo
		if err := binary.Read(w.r, binary.LittleEndian, &binInfo); err != nil {
			return fmt.Errorf("reading lump directory: %w", err)
		}
		lumpInfo := LumpInfo{binInfo.Name.String(), int(binInfo.Filepos), int(binInfo.Size)}
		if lumpInfo.Name == "THINGS" && i > 0 {
			lumpNum := i - 1
			levels[lumpInfos[lumpNum].Name] = lumpNum
		}
		lumpNums[lumpInfo.Name] = i
		lumpInfos[i] = lumpInfo
	}
	w.levels = levels
	w.lumpNums = lumpNums
	w.lumpInfos = lumpInfos
	return nil
}

// LevelNames returns a slice of level names found in the WAD archive.
func (w *WAD) LevelNames() []string {
	result := make([]string, 0, len(w.levels))
	for name := range w.levels {
		result = append(result, name)
	}
	slices.Sort(result)
	return result
}

// levelLumpInfos returns the lumps belonging to the named level, keyed by lump name.
func (w *WAD) levelLumpInfos(name string) (map[string]LumpInfo, error) {
	levelIdx, ok := w.levels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, name)
	}
	lumps := map[string]LumpInfo{}
	for i := levelIdx + 1; i < len(w.lumpInfos); i++ {
		info := w.lumpInfos[i]
		if !slices.Contains(levelLumps, info.Name) {
			break
		}
		lumps[info.Name] = info
	}
	return lumps, nil
}

// LevelFormat reports whether the named level is in Doom or Hexen format. Hexen levels carry
// a BEHAVIOR lump.
func (w *WAD) LevelFormat(name string) (mapdata.Format, error) {
	lumps, err := w.levelLumpInfos(name)
	if err != nil {
		return 0, err
	}
	if _, ok := lumps["BEHAVIOR"]; ok {
		return mapdata.FormatHexen, nil
	}
	return mapdata.FormatDoom, nil
}

// ReadLevel reads the named level into a new map. If cfg is nil the built-in configuration
// for the level's format is used; otherwise cfg must be for the same format.
func (w *WAD) ReadLevel(name string, cfg *gameconfig.Configuration) (*mapdata.Map, error) {
	logger.Printf("Reading Level %v ...", name)

	lumps, err := w.levelLumpInfos(name)
	if err != nil {
		return nil, err
	}
	format := mapdata.FormatDoom
	if _, ok := lumps["BEHAVIOR"]; ok {
		format = mapdata.FormatHexen
	}
	if cfg == nil {
		if cfg, err = gameconfig.ForFormat(format); err != nil {
			return nil, err
		}
	} else if cfg.MapFormat() != format {
		return nil, fmt.Errorf("%w: level %s is %s, configuration %q is %s",
			ErrFormatMismatch, name, format, cfg.Name, cfg.MapFormat())
	}

	l := &levelReader{w: w, cfg: cfg, m: mapdata.New(format), lumps: lumps}
	for _, step := range []func() error{l.readVertexes, l.readSectors, l.readSides, l.readLines, l.readThings} {
		if err := step(); err != nil {
			return nil, fmt.Errorf("level %s: %w", name, err)
		}
	}

	// Loading is not an edit
	l.m.ClearCreatedDeleted()

	logger.Printf("Read level %v: %v vertexes, %v lines, %v sides, %v sectors, %v things",
		name, l.m.NVertices(), l.m.NLines(), l.m.NSides(), l.m.NSectors(), l.m.NThings())
	return l.m, nil
}

// levelReader builds a map from the lumps of one level.
type levelReader struct {
	w        *WAD
	cfg      *gameconfig.Configuration
	m        *mapdata.Map
	lumps    map[string]LumpInfo
	vertices []*mapdata.Vertex
	sectors  []*mapdata.Sector
	sides    []*mapdata.Side
}

func (l *levelReader) readVertexes() error {
	logger.Println("Reading Vertexes ...")
	binVertexes, err := readLump[binVertex](l.w, l.lumps["VERTEXES"])
	if err != nil {
		return err
	}
	l.vertices = make([]*mapdata.Vertex, len(binVertexes))
	for i, v := range binVertexes {
		l.vertices[i] = l.m.AddVertex(orb.Point{float64(v.X), float64(v.Y)})
	}
	return nil
}

func (l *levelReader) readSectors() error {
	logger.Println("Reading Sectors ...")
	binSectors, err := readLump[binSector](l.w, l.lumps["SECTORS"])
	if err != nil {
		return err
	}
	l.sectors = make([]*mapdata.Sector, len(binSectors))
	for i, s := range binSectors {
		sector := l.m.CreateSector()
		sector.SetIntProp(mapdata.PropHeightFloor, int(s.FloorHeight))
		sector.SetIntProp(mapdata.PropHeightCeiling, int(s.CeilingHeight))
		sector.SetStringProp(mapdata.PropTextureFloor, s.FloorTexture.String())
		sector.SetStringProp(mapdata.PropTextureCeiling, s.CeilingTexture.String())
		sector.SetIntProp(mapdata.PropLightLevel, int(s.LightLevel))
		sector.SetIntProp(mapdata.PropSpecial, int(s.Type))
		sector.SetIntProp(mapdata.PropID, int(s.TagNum))
		l.cfg.ApplyDefaults(sector)
		l.sectors[i] = sector
	}
	return nil
}

func (l *levelReader) readSides() error {
	logger.Println("Reading Sides ...")
	binSides, err := readLump[binSide](l.w, l.lumps["SIDEDEFS"])
	if err != nil {
		return err
	}
	l.sides = make([]*mapdata.Side, len(binSides))
	for i, s := range binSides {
		var sector *mapdata.Sector
		if int(s.SectorNum) < len(l.sectors) {
			sector = l.sectors[s.SectorNum]
		} else {
			logger.Printf("Side %v references missing sector %v", i, s.SectorNum)
		}
		side := l.m.CreateSide(sector)
		side.SetIntProp(mapdata.PropOffsetX, int(s.XOffset))
		side.SetIntProp(mapdata.PropOffsetY, int(s.YOffset))
		side.SetStringProp(mapdata.PropTextureTop, s.UpperTexture.String())
		side.SetStringProp(mapdata.PropTextureMiddle, s.MiddleTexture.String())
		side.SetStringProp(mapdata.PropTextureBottom, s.LowerTexture.String())
		l.cfg.ApplyDefaults(side)
		l.sides[i] = side
	}
	return nil
}

func (l *levelReader) readLines() error {
	logger.Println("Reading Lines ...")
	if l.m.Format == mapdata.FormatHexen {
		binLines, err := readLump[binHexenLine](l.w, l.lumps["LINEDEFS"])
		if err != nil {
			return err
		}
		for i, bl := range binLines {
			line, err := l.addLine(i, bl.VertexStart, bl.VertexEnd, bl.SideR, bl.SideL)
			if err != nil {
				return err
			}
			line.SetIntProp(mapdata.PropSpecial, int(bl.Special))
			for n, arg := range bl.Args {
				line.SetIntProp(mapdata.ArgProp(n), int(arg))
			}
			l.cfg.DecodeLineFlags(line, int(bl.Flags))
			l.cfg.ApplyDefaults(line)
		}
		return nil
	}

	binLines, err := readLump[binLine](l.w, l.lumps["LINEDEFS"])
	if err != nil {
		return err
	}
	for i, bl := range binLines {
		line, err := l.addLine(i, bl.VertexStart, bl.VertexEnd, bl.SideR, bl.SideL)
		if err != nil {
			return err
		}
		line.SetIntProp(mapdata.PropSpecial, int(bl.Type))
		line.SetIntProp(mapdata.ArgProp(0), int(bl.SectorTag))
		l.cfg.DecodeLineFlags(line, int(bl.Flags))
		l.cfg.ApplyDefaults(line)
	}
	return nil
}

func (l *levelReader) addLine(index int, v1, v2, front, back uint16) (*mapdata.Line, error) {
	if int(v1) >= len(l.vertices) || int(v2) >= len(l.vertices) {
		return nil, fmt.Errorf("line %d: vertex out of range (%d, %d)", index, v1, v2)
	}
	line := l.m.CreateLine(l.vertices[v1], l.vertices[v2], true)
	line.SetFront(l.side(index, front))
	line.SetBack(l.side(index, back))
	return line, nil
}

func (l *levelReader) side(line int, num uint16) *mapdata.Side {
	if num == noSide {
		return nil
	}
	if int(num) >= len(l.sides) {
		logger.Printf("Line %v references missing side %v", line, num)
		return nil
	}
	return l.sides[num]
}

func (l *levelReader) readThings() error {
	logger.Println("Reading Things ...")
	if l.m.Format == mapdata.FormatHexen {
		binThings, err := readLump[binHexenThing](l.w, l.lumps["THINGS"])
		if err != nil {
			return err
		}
		for _, bt := range binThings {
			t := l.addThing(bt.X, bt.Y, bt.Angle, bt.Type, bt.Options)
			t.SetIntProp(mapdata.PropID, int(bt.TID))
			t.SetIntProp("height", int(bt.Z))
			t.SetIntProp(mapdata.PropSpecial, int(bt.Special))
			for n, arg := range bt.Args {
				t.SetIntProp(mapdata.ArgProp(n), int(arg))
			}
			l.cfg.ApplyDefaults(t)
		}
		return nil
	}

	binThings, err := readLump[binThing](l.w, l.lumps["THINGS"])
	if err != nil {
		return err
	}
	for _, bt := range binThings {
		t := l.addThing(bt.X, bt.Y, bt.Angle, bt.Type, bt.Options)
		l.cfg.ApplyDefaults(t)
	}
	return nil
}

func (l *levelReader) addThing(x, y, angle, typ, options int16) *mapdata.Thing {
	t := l.m.CreateThing(orb.Point{float64(x), float64(y)})
	t.SetIntProp(mapdata.PropType, int(typ))
	t.SetIntProp(mapdata.PropAngle, normalizeDegrees(angle))
	l.cfg.DecodeThingFlags(t, int(options))
	return t
}

// readLump decodes a whole lump as a little-endian array of T.
func readLump[T any](w *WAD, lumpInfo LumpInfo) ([]T, error) {
	var zero T
	size := binary.Size(zero)
	if lumpInfo.Size%size != 0 {
		return nil, fmt.Errorf("lump %s: size %d is not a multiple of %d", lumpInfo.Name, lumpInfo.Size, size)
	}
	lump, err := w.readLump(lumpInfo)
	if err != nil {
		return nil, err
	}
	result := make([]T, lumpInfo.Size/size)
	if err := binary.Read(bytes.NewReader(lump), binary.LittleEndian, result); err != nil {
		return nil, fmt.Errorf("lump %s: %w", lumpInfo.Name, err)
	}
	return result, nil
}

// seek
func (w *WAD) seek(offset int64) error {
	off, err := w.r.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}
	if off != offset {
		return fmt.Errorf("seek failed")
	}
	return nil
}

// Read entire lump
func (w *WAD) readLump(lumpInfo LumpInfo) ([]byte, error) {
	if err := w.seek(int64(lumpInfo.Filepos)); err != nil {
		return nil, err
	}
	lump := make([]byte, lumpInfo.Size)
	if _, err := io.ReadFull(w.r, lump); err != nil {
		return nil, fmt.Errorf("lump %s: truncated: %w", lumpInfo.Name, err)
	}
	return lump, nil
}

// normalizeDegrees maps an angle in degrees onto 0-359.
func normalizeDegrees[T constraints.Signed](n T) int {
	return ((int(n) % 360) + 360) % 360
}
