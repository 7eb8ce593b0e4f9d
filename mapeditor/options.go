package mapeditor

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Options are the user preferences of an editing session.
type Options struct {
	GridLevel       int     `yaml:"grid_level"`
	GridSnap        bool    `yaml:"grid_snap"`
	MergeUndoLevels bool    `yaml:"merge_undo_levels"` // Record move and merge as one undo level
	MergeOnMove     bool    `yaml:"merge_on_move"`
	SplitDistance   float64 `yaml:"split_distance"`
	HilightDistance float64 `yaml:"hilight_distance"`
	MaxMessages     int     `yaml:"max_messages"`
}

func DefaultOptions() Options {
	return Options{
		GridLevel:       8,
		GridSnap:        true,
		MergeOnMove:     true,
		SplitDistance:   0.1,
		HilightDistance: 8,
		MaxMessages:     10,
	}
}

// LoadOptions reads options from YAML. Anything not set keeps its default.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.NewDecoder(r).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return opts, fmt.Errorf("decoding editor options: %w", err)
	}
	return opts, nil
}
