package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/stuarthighley/doomedit/gameconfig"
	"github.com/stuarthighley/doomedit/mapeditor"
	"github.com/stuarthighley/doomedit/wad"
	"golang.org/x/exp/slices"
)

var (
	configName  string
	optionsFile string
	verbose     bool
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doomedit",
		Short: "Inspect and query Doom-engine maps",
		Long: `doomedit loads Doom and Hexen format levels from WAD archives into the map
editing engine and reports on them.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				l := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
				wad.SetLogger(l)
				mapeditor.SetLogger(l)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&configName, "config", "c", "",
		"game configuration: a built-in name (doom, hexen, udmf) or a YAML file")
	cmd.PersistentFlags().StringVar(&optionsFile, "options", "", "editor options YAML file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	cmd.AddCommand(newLevelsCommand())
	cmd.AddCommand(newInfoCommand())
	cmd.AddCommand(newTagsCommand())
	cmd.AddCommand(newSnapCommand())
	return cmd
}

// loadConfig returns the configuration named by --config, or nil to pick one from the level.
func loadConfig() (*gameconfig.Configuration, error) {
	if configName == "" {
		return nil, nil
	}
	if slices.Contains(gameconfig.BuiltinNames(), configName) {
		return gameconfig.Builtin(configName)
	}
	return gameconfig.LoadFile(configName)
}

func loadOptions() (mapeditor.Options, error) {
	if optionsFile == "" {
		return mapeditor.DefaultOptions(), nil
	}
	f, err := os.Open(optionsFile)
	if err != nil {
		return mapeditor.Options{}, err
	}
	defer f.Close()
	return mapeditor.LoadOptions(f)
}

// openSession reads a level and starts an editing session on it.
func openSession(filename, level string) (*mapeditor.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts, err := loadOptions()
	if err != nil {
		return nil, err
	}
	w, err := wad.Open(filename)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	m, err := w.ReadLevel(level, cfg)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		if cfg, err = gameconfig.ForFormat(m.Format); err != nil {
			return nil, err
		}
	}
	return mapeditor.NewSession(m, cfg, opts), nil
}

func printf(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, format, a...)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
