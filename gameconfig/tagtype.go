package gameconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TagType describes which arguments of an action special (or thing type) refer to other
// map objects by tag or id. Numbers in the name are 1-based argument slots.
type TagType int

const (
	TagNone TagType = iota
	TagSector
	TagLine
	TagThing
	TagSectorOrBack
	TagSectorAndBack
	TagLineID
	TagLineIDHexen
	TagThing1Sector2
	TagThing1Sector3
	TagThing1Thing2
	TagThing1Thing4
	TagThing1Thing2Thing3
	TagSector1Thing2Thing3Thing5
	TagLineID1Line2
	TagLineNegative
	TagThing4
	TagThing5
	TagLine1Sector2
	TagSector1Sector2
	TagSector1Sector2Sector3Sector4
	TagSector2Is3Line
	TagSector1Thing2
	TagThing1Thing2Thing3Thing4Thing5
	TagPatrol
	TagInterpolation
)

var tagTypeNames = map[TagType]string{
	TagNone:                           "none",
	TagSector:                         "sector",
	TagLine:                           "line",
	TagThing:                          "thing",
	TagSectorOrBack:                   "sector_or_back",
	TagSectorAndBack:                  "sector_and_back",
	TagLineID:                         "line_id",
	TagLineIDHexen:                    "line_id_hexen",
	TagThing1Sector2:                  "thing1_sector2",
	TagThing1Sector3:                  "thing1_sector3",
	TagThing1Thing2:                   "thing1_thing2",
	TagThing1Thing4:                   "thing1_thing4",
	TagThing1Thing2Thing3:             "thing1_thing2_thing3",
	TagSector1Thing2Thing3Thing5:      "sector1_thing2_thing3_thing5",
	TagLineID1Line2:                   "line_id1_line2",
	TagLineNegative:                   "line_negative",
	TagThing4:                         "thing4",
	TagThing5:                         "thing5",
	TagLine1Sector2:                   "line1_sector2",
	TagSector1Sector2:                 "sector1_sector2",
	TagSector1Sector2Sector3Sector4:   "sector1_sector2_sector3_sector4",
	TagSector2Is3Line:                 "sector2_is3_line",
	TagSector1Thing2:                  "sector1_thing2",
	TagThing1Thing2Thing3Thing4Thing5: "thing1_thing2_thing3_thing4_thing5",
	TagPatrol:                         "patrol",
	TagInterpolation:                  "interpolation",
}

func (t TagType) String() string {
	if name, ok := tagTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TagType(%d)", int(t))
}

// ParseTagType returns the tag type with the given configuration name.
func ParseTagType(name string) (TagType, error) {
	for t, n := range tagTypeNames {
		if n == name {
			return t, nil
		}
	}
	return TagNone, fmt.Errorf("unknown tag type %q", name)
}

func (t *TagType) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseTagType(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = parsed
	return nil
}

func (t TagType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
