package main

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/stuarthighley/doomedit/gameconfig"
	"github.com/stuarthighley/doomedit/mapdata"
	"github.com/stuarthighley/doomedit/mapeditor"
	"github.com/stuarthighley/doomedit/wad"
)

func newLevelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "levels <wad>",
		Short: "List the levels in a WAD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wad.Open(args[0])
			if err != nil {
				return err
			}
			defer w.Close()
			for _, name := range w.LevelNames() {
				format, err := w.LevelFormat(name)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "%-8s %s\n", name, format)
			}
			return nil
		},
	}
}

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <wad> <level>",
		Short: "Summarize a level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0], args[1])
			if err != nil {
				return err
			}
			m := s.Map()
			out := cmd.OutOrStdout()
			b := m.Bounds()
			printf(out, "Level:         %s (%s, %s)\n", args[1], m.Format, s.Config().Name)
			printf(out, "Vertices:      %d\n", m.NVertices())
			printf(out, "Lines:         %d\n", m.NLines())
			printf(out, "Sides:         %d\n", m.NSides())
			printf(out, "Sectors:       %d\n", m.NSectors())
			printf(out, "Things:        %d\n", m.NThings())
			printf(out, "Bounds:        (%g, %g) - (%g, %g)\n", b.Min[0], b.Min[1], b.Max[0], b.Max[1])

			sectors := make([]mapdata.Object, 0, m.NSectors())
			for _, sector := range m.Sectors() {
				sectors = append(sectors, sector)
			}
			printf(out, "Floor height:  %s\n", optString(mapdata.CommonInt(sectors, mapdata.PropHeightFloor)))
			printf(out, "Light level:   %s\n", optString(mapdata.CommonInt(sectors, mapdata.PropLightLevel)))
			return nil
		},
	}
}

func optString[T comparable](o mapdata.Opt[T]) string {
	if v, ok := o.Get(); ok {
		return fmt.Sprint(v)
	}
	if !o.Set {
		return "-"
	}
	return "mixed"
}

func newTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags <wad> <level>",
		Short: "List the tag relations of every line and thing special",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0], args[1])
			if err != nil {
				return err
			}
			m, cfg := s.Map(), s.Config()
			out := cmd.OutOrStdout()
			for _, l := range m.Lines() {
				if l.Special() == 0 {
					continue
				}
				printRelations(cmd, fmt.Sprintf("Line %d", l.Index()), cfg, l.Special(),
					mapeditor.ResolveTags(m, cfg, l))
			}
			for _, t := range m.Things() {
				if t.Special() == 0 && t.TID() == 0 {
					continue
				}
				printRelations(cmd, fmt.Sprintf("Thing %d", t.Index()), cfg, t.Special(),
					mapeditor.ResolveTags(m, cfg, t))
			}
			printf(out, "Next free sector tag: %d\n", freeTag(m))
			return nil
		},
	}
}

func printRelations(cmd *cobra.Command, what string, cfg *gameconfig.Configuration, special int, ts mapeditor.TagSets) {
	if ts.Empty() {
		return
	}
	name := "none"
	if special != 0 {
		name = fmt.Sprintf("%d %s", special, cfg.ActionSpecial(special).Name)
	}
	out := cmd.OutOrStdout()
	printf(out, "%s (special %s)\n", what, name)
	printIndices(cmd, "  sectors:", ts.TaggedSectors)
	printIndices(cmd, "  lines:", ts.TaggedLines)
	printIndices(cmd, "  things:", ts.TaggedThings)
	printIndices(cmd, "  tagged by lines:", ts.TaggingLines)
	printIndices(cmd, "  tagged by things:", ts.TaggingThings)
}

func printIndices[T mapdata.Object](cmd *cobra.Command, label string, objs []T) {
	if len(objs) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	printf(out, "%s", label)
	for _, o := range objs {
		printf(out, " %d", o.Index())
	}
	printf(out, "\n")
}

func freeTag(m *mapdata.Map) int {
	used := map[int]bool{}
	for _, s := range m.Sectors() {
		used[s.Tag()] = true
	}
	tag := 1
	for used[tag] {
		tag++
	}
	return tag
}

func newSnapCommand() *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "snap <x> <y>",
		Short: "Snap a map position to the grid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p orb.Point
			for i, arg := range args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid coordinate %q: %w", arg, err)
				}
				p[i] = v
			}
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg == nil {
				if cfg, err = gameconfig.ForFormat(mapdata.FormatDoom); err != nil {
					return err
				}
			}
			s := mapeditor.NewSession(mapdata.New(cfg.MapFormat()), cfg, opts)
			if cmd.Flags().Changed("grid") {
				s.SetGridLevel(level)
			}
			snapped := s.SnapPoint(p)
			printf(cmd.OutOrStdout(), "(%g, %g) grid %g\n", snapped[0], snapped[1], s.GridSize())
			return nil
		},
	}
	cmd.Flags().IntVarP(&level, "grid", "g", 0, "grid level (0-20)")
	return cmd
}
