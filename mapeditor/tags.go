package mapeditor

import (
	"github.com/stuarthighley/doomedit/gameconfig"
	"github.com/stuarthighley/doomedit/mapdata"
	"golang.org/x/exp/slices"
)

// TagSets holds the objects related to the hilighted object by tags. Tagged objects are
// the ones its special acts on, tagging objects are the ones whose specials act on it.
type TagSets struct {
	TaggedSectors []*mapdata.Sector
	TaggedLines   []*mapdata.Line
	TaggedThings  []*mapdata.Thing
	TaggingLines  []*mapdata.Line
	TaggingThings []*mapdata.Thing
}

// Empty reports whether there are no tag relations.
func (t TagSets) Empty() bool {
	return len(t.TaggedSectors)+len(t.TaggedLines)+len(t.TaggedThings)+
		len(t.TaggingLines)+len(t.TaggingThings) == 0
}

// Tags returns the tag relations of the hilighted object.
func (s *Session) Tags() TagSets { return s.tags }

func (s *Session) updateTags() {
	s.tags = TagSets{}
	if obj := s.HilightObject(); obj != nil {
		s.tags = ResolveTags(s.m, s.cfg, obj)
	}
}

// ResolveTags computes the tag relations of obj. It only reads the map.
func ResolveTags(m *mapdata.Map, cfg *gameconfig.Configuration, obj mapdata.Object) TagSets {
	var ts TagSets
	add := func(kind mapdata.ObjType, id int) {
		if id == 0 {
			return
		}
		switch kind {
		case mapdata.TypeSector:
			for _, s := range m.Sectors() {
				if s.Tag() == id && !slices.Contains(ts.TaggedSectors, s) {
					ts.TaggedSectors = append(ts.TaggedSectors, s)
				}
			}
		case mapdata.TypeLine:
			for _, l := range m.Lines() {
				if l != obj && LineID(m, cfg, l) == id && !slices.Contains(ts.TaggedLines, l) {
					ts.TaggedLines = append(ts.TaggedLines, l)
				}
			}
		case mapdata.TypeThing:
			for _, t := range m.Things() {
				if t != obj && t.TID() == id && !slices.Contains(ts.TaggedThings, t) {
					ts.TaggedThings = append(ts.TaggedThings, t)
				}
			}
		}
	}
	addSector := func(s *mapdata.Sector) {
		if s != nil && !slices.Contains(ts.TaggedSectors, s) {
			ts.TaggedSectors = append(ts.TaggedSectors, s)
		}
	}

	// Tagged
	switch o := obj.(type) {
	case *mapdata.Line:
		tt := cfg.ActionSpecial(o.Special()).Tagged
		args := objectArgs(o)
		switch {
		case tt == gameconfig.TagSectorOrBack && args[0] == 0:
			addSector(o.BackSector())
		case tt == gameconfig.TagSectorAndBack:
			references(tt, args, add)
			addSector(o.BackSector())
		default:
			references(tt, args, add)
		}
	case *mapdata.Thing:
		args := objectArgs(o)
		if o.Special() != 0 {
			references(cfg.ActionSpecial(o.Special()).Tagged, args, add)
		}
		references(cfg.ThingType(o.ThingType()).Tagged, args, add)
	}

	// Tagging
	kind, id := obj.Type(), objectTag(m, cfg, obj)
	if id == 0 || kind == mapdata.TypeVertex || kind == mapdata.TypeSide {
		return ts
	}
	for _, l := range m.Lines() {
		if l == obj || l.Special() == 0 {
			continue
		}
		if refersTo(cfg.ActionSpecial(l.Special()).Tagged, objectArgs(l), kind, id) &&
			!slices.Contains(ts.TaggingLines, l) {
			ts.TaggingLines = append(ts.TaggingLines, l)
		}
	}
	for _, t := range m.Things() {
		if t == obj {
			continue
		}
		args := objectArgs(t)
		hit := refersTo(cfg.ThingType(t.ThingType()).Tagged, args, kind, id)
		if t.Special() != 0 {
			hit = hit || refersTo(cfg.ActionSpecial(t.Special()).Tagged, args, kind, id)
		}
		if hit && !slices.Contains(ts.TaggingThings, t) {
			ts.TaggingThings = append(ts.TaggingThings, t)
		}
	}
	return ts
}

func refersTo(tt gameconfig.TagType, args [5]int, kind mapdata.ObjType, id int) bool {
	found := false
	references(tt, args, func(k mapdata.ObjType, i int) {
		if k == kind && i == id {
			found = true
		}
	})
	return found
}

// references calls ref for every object an action special or thing type classification
// refers to through its arguments. Some classifications deliberately share the handling of
// the ones below them.
func references(tt gameconfig.TagType, args [5]int, ref func(kind mapdata.ObjType, id int)) {
	sector := func(id int) { ref(mapdata.TypeSector, id) }
	line := func(id int) { ref(mapdata.TypeLine, id) }
	thing := func(id int) { ref(mapdata.TypeThing, id) }

	switch tt {
	case gameconfig.TagSector, gameconfig.TagSectorOrBack, gameconfig.TagSectorAndBack:
		sector(args[0])
	case gameconfig.TagLine:
		line(args[0])
	case gameconfig.TagThing, gameconfig.TagPatrol:
		thing(args[0])

	case gameconfig.TagThing1Thing2Thing3Thing4Thing5:
		thing(args[4])
		thing(args[3])
		fallthrough
	case gameconfig.TagThing1Thing2Thing3:
		thing(args[2])
		fallthrough
	case gameconfig.TagThing1Thing2:
		thing(args[1])
		thing(args[0])

	case gameconfig.TagThing1Thing4:
		thing(args[0])
		fallthrough
	case gameconfig.TagThing4:
		thing(args[3])
	case gameconfig.TagThing5:
		thing(args[4])

	case gameconfig.TagSector1Sector2Sector3Sector4:
		sector(args[3])
		sector(args[2])
		fallthrough
	case gameconfig.TagSector1Sector2:
		sector(args[1])
		sector(args[0])

	case gameconfig.TagThing1Sector2:
		thing(args[0])
		sector(args[1])
	case gameconfig.TagThing1Sector3:
		thing(args[0])
		sector(args[2])
	case gameconfig.TagSector1Thing2:
		sector(args[0])
		thing(args[1])
	case gameconfig.TagSector1Thing2Thing3Thing5:
		sector(args[0])
		thing(args[1])
		thing(args[2])
		thing(args[4])
	case gameconfig.TagLine1Sector2:
		line(args[0])
		sector(args[1])
	case gameconfig.TagLineID1Line2:
		line(args[1])
	case gameconfig.TagLineNegative:
		if args[0] < 0 {
			line(-args[0])
		} else {
			line(args[0])
		}
	case gameconfig.TagSector2Is3Line:
		if args[2] != 0 {
			line(args[1])
		} else {
			sector(args[1])
		}
	case gameconfig.TagInterpolation:
		thing(args[3] + 256*args[4])
	}
}

func objectArgs(o mapdata.Object) [5]int {
	var args [5]int
	for i := range args {
		args[i] = o.IntProp(mapdata.ArgProp(i))
	}
	return args
}

// objectTag returns the id other objects use to refer to obj.
func objectTag(m *mapdata.Map, cfg *gameconfig.Configuration, obj mapdata.Object) int {
	switch o := obj.(type) {
	case *mapdata.Sector:
		return o.Tag()
	case *mapdata.Line:
		return LineID(m, cfg, o)
	case *mapdata.Thing:
		return o.TID()
	}
	return 0
}

// LineID returns the id of a line. UDMF lines have an id property, Hexen lines get theirs
// from an identification special and Doom lines use their tag.
func LineID(m *mapdata.Map, cfg *gameconfig.Configuration, l *mapdata.Line) int {
	switch m.Format {
	case mapdata.FormatUDMF:
		return l.IntProp(mapdata.PropID)
	case mapdata.FormatHexen:
		switch cfg.ActionSpecial(l.Special()).Tagged {
		case gameconfig.TagLineIDHexen:
			return l.Arg(0) + 256*l.Arg(4)
		case gameconfig.TagLineID, gameconfig.TagLineID1Line2:
			return l.Arg(0)
		}
		return 0
	}
	return l.Arg(0)
}
