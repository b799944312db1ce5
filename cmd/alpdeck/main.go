package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/peaksoaring/alpdeck/internal/config"
	"github.com/peaksoaring/alpdeck/internal/model"
	"github.com/peaksoaring/alpdeck/internal/pipeline"
)

var (
	flagRegion  string
	flagSystem  string
	flagConfig  string
	flagDataDir string
	flagOutDir  string
	flagForce   bool
	flagVerbose bool
	flagIDs     []string
)

var (
	errorPrefix   = color.New(color.FgRed, color.Bold).Sprint("error:")
	warnPrefix    = color.New(color.FgYellow).Sprint("warn:")
	successPrefix = color.New(color.FgGreen).Sprint("ok:")
)

func main() {
	root := &cobra.Command{
		Use:   "alpdeck",
		Short: "Build Anki decks for Alpine mountain group classifications",
		Long: "alpdeck produces ready-to-import Anki decks (.apkg) that teach the\n" +
			"mountain groups of the Alps: AVE-84, SOIUSA sezioni/sottosezioni and\n" +
			"points of interest, each card showing a hillshaded terrain map.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flagRegion, "region", "r", "ostalpen",
		"region to build ("+strings.Join(regionNames(), ", ")+")")
	pf.StringVarP(&flagSystem, "system", "s", "",
		"classification system (default: the region's default)")
	pf.StringVar(&flagConfig, "config", "", "path to settings file")
	pf.StringVar(&flagDataDir, "data-dir", "", "override the data directory")
	pf.StringVar(&flagOutDir, "out-dir", "", "override the output directory")
	pf.BoolVarP(&flagForce, "force", "f", false, "rebuild outputs that already exist")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "show verbose output")

	cards := step("cards", "Render the card overlay images",
		func(cmd *cobra.Command, m *pipeline.Manager, job *pipeline.Job) error {
			return m.Cards(cmd.Context(), job, flagIDs)
		})
	cards.Flags().StringSliceVar(&flagIDs, "ids", nil,
		"render only these group or POI IDs (comma-separated)")

	root.AddCommand(
		step("download", "Fetch polygons, borders, water and elevation tiles",
			func(cmd *cobra.Command, m *pipeline.Manager, job *pipeline.Job) error {
				return m.Download(cmd.Context(), job)
			}),
		step("basemap", "Render the shared terrain basemap",
			func(cmd *cobra.Command, m *pipeline.Manager, job *pipeline.Job) error {
				return m.Basemap(cmd.Context(), job)
			}),
		cards,
		step("build", "Assemble the .apkg archive",
			func(cmd *cobra.Command, m *pipeline.Manager, job *pipeline.Job) error {
				path, err := m.Build(cmd.Context(), job)
				if err != nil {
					return err
				}
				fmt.Println(successPrefix, path)
				return nil
			}),
		step("verify", "Check size, image dimensions and rebuild determinism",
			func(cmd *cobra.Command, m *pipeline.Manager, job *pipeline.Job) error {
				return m.Verify(cmd.Context(), job, m.ArchivePath(job))
			}),
		step("run", "Run the whole pipeline: download, basemap, cards, build, verify",
			func(cmd *cobra.Command, m *pipeline.Manager, job *pipeline.Job) error {
				path, err := m.Run(cmd.Context(), job)
				if err != nil {
					return err
				}
				fmt.Println(successPrefix, path)
				return nil
			}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorPrefix, err)
		os.Exit(1)
	}
}

// step wraps a pipeline method into a cobra command with the shared
// setup: settings loading, flag overrides and job resolution.
func step(name, short string, run func(*cobra.Command, *pipeline.Manager, *pipeline.Job) error) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			m := pipeline.NewManager(settings, printProgress)
			m.Force = flagForce
			job, err := m.Resolve(flagRegion, flagSystem)
			if err != nil {
				return err
			}
			return run(cmd, m, job)
		},
	}
}

func loadSettings() (*config.Settings, error) {
	settings := config.DefaultSettings()
	if flagConfig != "" {
		var err error
		settings, err = config.Load(flagConfig)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if flagDataDir != "" {
		settings.DataDir = flagDataDir
	}
	if flagOutDir != "" {
		settings.OutDir = flagOutDir
	}
	return settings, nil
}

func printProgress(e pipeline.ProgressEvent) {
	switch e.Level {
	case pipeline.LevelVerbose:
		if flagVerbose {
			fmt.Println("  " + e.Message)
		}
	case pipeline.LevelWarning:
		fmt.Println(warnPrefix, e.Message)
	case pipeline.LevelError:
		fmt.Fprintln(os.Stderr, errorPrefix, e.Message)
	case pipeline.LevelSuccess:
		fmt.Println(successPrefix, e.Message)
	default:
		fmt.Println(e.Message)
	}
}

func regionNames() []string {
	names := make([]string, 0, len(model.ValidCombinations))
	for name := range model.ValidCombinations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
