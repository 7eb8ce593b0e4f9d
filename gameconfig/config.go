// Package gameconfig holds the game configuration the editor works against: action
// specials and how they use tags, thing types, binary flag tables and the property schema
// used to fill in defaults for new map objects.
package gameconfig

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"os"
	"strings"

	"github.com/stuarthighley/doomedit/mapdata"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed configs/*.yaml
var builtinFS embed.FS

var ErrUnknownFormat = errors.New("unknown map format")

// DefaultThingRadius is the radius of thing types missing from the configuration.
const DefaultThingRadius = 20

type ActionSpecial struct {
	Number int      `yaml:"-"`
	Name   string   `yaml:"name"`
	Group  string   `yaml:"group,omitempty"`
	Tagged TagType  `yaml:"tagged,omitempty"`
	Args   []string `yaml:"args,omitempty"`
}

type ThingType struct {
	Number int     `yaml:"-"`
	Name   string  `yaml:"name"`
	Group  string  `yaml:"group,omitempty"`
	Radius int     `yaml:"radius"`
	Height int     `yaml:"height,omitempty"`
	Angled bool    `yaml:"angled,omitempty"`
	Tagged TagType `yaml:"tagged,omitempty"`
}

// Flag maps one bit of a binary flags field to one or more boolean properties.
type Flag struct {
	Name       string   `yaml:"name"`
	Bit        int      `yaml:"bit"`
	Properties []string `yaml:"properties"`
	Inverted   bool     `yaml:"inverted,omitempty"`
}

// Trigger maps a Hexen line activation value to a boolean trigger property.
type Trigger struct {
	Value    int    `yaml:"value"`
	Property string `yaml:"property"`
}

// Property describes one property of a map object type and its default value.
type Property struct {
	Object   string `yaml:"object"`
	Property string `yaml:"property"`
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Default  any    `yaml:"default"`
	Trigger  bool   `yaml:"trigger,omitempty"`
}

// DefaultValue returns the default converted to the declared property type.
func (p *Property) DefaultValue() mapdata.Value {
	v := mapdata.ValueOf(p.Default)
	switch p.Type {
	case "bool":
		return mapdata.BoolValue(v.AsBool())
	case "int":
		return mapdata.IntValue(v.AsInt())
	case "float":
		return mapdata.FloatValue(v.AsFloat())
	case "string", "texture":
		return mapdata.StringValue(v.AsString())
	}
	return v
}

type Configuration struct {
	Name           string                 `yaml:"name"`
	Format         string                 `yaml:"format"`
	ActionSpecials map[int]*ActionSpecial `yaml:"action_specials"`
	ThingTypes     map[int]*ThingType     `yaml:"thing_types"`
	LineFlags      []Flag                 `yaml:"line_flags"`
	ThingFlags     []Flag                 `yaml:"thing_flags"`
	ActivationMask int                    `yaml:"activation_mask,omitempty"`
	Triggers       []Trigger              `yaml:"triggers,omitempty"`
	Properties     []Property             `yaml:"properties"`

	format mapdata.Format
}

// ParseFormat converts a configuration format name into a map format.
func ParseFormat(name string) (mapdata.Format, error) {
	switch strings.ToLower(name) {
	case "doom":
		return mapdata.FormatDoom, nil
	case "hexen":
		return mapdata.FormatHexen, nil
	case "udmf":
		return mapdata.FormatUDMF, nil
	}
	return mapdata.FormatDoom, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Load reads a YAML game configuration.
func Load(r io.Reader) (*Configuration, error) {
	cfg := &Configuration{}
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding game configuration: %w", err)
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("game configuration %q: %w", cfg.Name, err)
	}
	cfg.format = format
	if cfg.ActionSpecials == nil {
		cfg.ActionSpecials = map[int]*ActionSpecial{}
	}
	if cfg.ThingTypes == nil {
		cfg.ThingTypes = map[int]*ThingType{}
	}
	for n, as := range cfg.ActionSpecials {
		as.Number = n
	}
	for n, tt := range cfg.ThingTypes {
		tt.Number = n
		if tt.Radius <= 0 {
			tt.Radius = DefaultThingRadius
		}
	}
	return cfg, nil
}

func LoadFile(filename string) (*Configuration, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Builtin returns one of the configurations compiled into the program (doom, hexen, udmf).
func Builtin(name string) (*Configuration, error) {
	f, err := builtinFS.Open("configs/" + strings.ToLower(name) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no built-in game configuration %q: %w", name, err)
	}
	defer f.Close()
	return Load(f)
}

// BuiltinNames lists the configurations compiled into the program.
func BuiltinNames() []string {
	entries, _ := builtinFS.ReadDir("configs")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	slices.Sort(names)
	return names
}

// ForFormat returns the built-in configuration for a map format.
func ForFormat(f mapdata.Format) (*Configuration, error) {
	return Builtin(f.String())
}

func (c *Configuration) MapFormat() mapdata.Format { return c.format }

// ActionSpecial returns the definition of action special n. Unknown specials get a
// placeholder definition that tags nothing.
func (c *Configuration) ActionSpecial(n int) *ActionSpecial {
	if as, ok := c.ActionSpecials[n]; ok {
		return as
	}
	if n == 0 {
		return &ActionSpecial{Name: "None"}
	}
	return &ActionSpecial{Number: n, Name: "Unknown"}
}

// ThingType returns the definition of thing type n, or a placeholder for unknown types.
func (c *Configuration) ThingType(n int) *ThingType {
	if tt, ok := c.ThingTypes[n]; ok {
		return tt
	}
	return &ThingType{Number: n, Name: "Unknown", Radius: DefaultThingRadius}
}

// PropertiesFor returns the property schema of one object type.
func (c *Configuration) PropertiesFor(t mapdata.ObjType) []Property {
	var props []Property
	for _, p := range c.Properties {
		if p.Object == t.String() {
			props = append(props, p)
		}
	}
	return props
}

// IsTrigger reports whether a line property is one of the activation trigger flags.
func (c *Configuration) IsTrigger(property string) bool {
	for _, p := range c.Properties {
		if p.Object == "line" && p.Property == property {
			return p.Trigger
		}
	}
	return false
}

// ApplyDefaults sets every property in the schema that obj does not have yet.
func (c *Configuration) ApplyDefaults(obj mapdata.Object) {
	for _, p := range c.PropertiesFor(obj.Type()) {
		if p.Default == nil || obj.HasProp(p.Property) {
			continue
		}
		obj.SetProp(p.Property, p.DefaultValue())
	}
}

// DecodeLineFlags sets the boolean line properties for a binary flags field.
func (c *Configuration) DecodeLineFlags(l *mapdata.Line, flags int) {
	decodeFlags(l, c.LineFlags, flags)
	if c.ActivationMask != 0 {
		activation := (flags & c.ActivationMask) >> bits.TrailingZeros(uint(c.ActivationMask))
		for _, t := range c.Triggers {
			if t.Value == activation {
				l.SetBoolProp(t.Property, true)
			}
		}
	}
}

// DecodeThingFlags sets the boolean thing properties for a binary flags field.
func (c *Configuration) DecodeThingFlags(t *mapdata.Thing, flags int) {
	decodeFlags(t, c.ThingFlags, flags)
}

func decodeFlags(obj mapdata.Object, table []Flag, flags int) {
	for _, f := range table {
		set := flags&f.Bit != 0
		if f.Inverted {
			set = !set
		}
		for _, p := range f.Properties {
			obj.SetBoolProp(p, set)
		}
	}
}
