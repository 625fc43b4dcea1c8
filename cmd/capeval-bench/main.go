package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	capeval "github.com/jamesainslie/go-capeval"
	"github.com/jamesainslie/go-capeval/caption"
	"github.com/jamesainslie/go-capeval/internal/bench"
	"github.com/jamesainslie/go-capeval/internal/config"
	"github.com/jamesainslie/go-capeval/internal/dataset"
	"github.com/jamesainslie/go-capeval/internal/report"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capeval-bench",
		Short: "Manage and score caption benchmark datasets",
		Long: `capeval-bench manages a catalog of benchmark datasets and scores every
model's captions against the human ground truth.

Run 'capeval-bench run <dataset-id>' to evaluate a dataset.
Run 'capeval-bench --help' for available commands.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path")
	cmd.PersistentFlags().String("data-root", "", "dataset catalog root (overrides config)")

	cmd.AddCommand(
		runCmd(),
		sweepCmd(),
		listCmd(),
		showCmd(),
		addCmd(),
		versionCmd(),
	)

	return cmd
}

// loadConfig resolves configuration from the optional file, the
// environment, and the data-root flag, in ascending precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if root, _ := cmd.Flags().GetString("data-root"); root != "" {
		cfg.DataRoot = root
	}
	return cfg, newLogger(cfg.Log), nil
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger().Level(level)
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <dataset-id>",
		Short: "Evaluate every model of a dataset against its ground truth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			metricNames, _ := cmd.Flags().GetStringSlice("metrics")
			if !cmd.Flags().Changed("metrics") {
				metricNames = cfg.Eval.Metrics
			}
			collar, _ := cmd.Flags().GetFloat64("collar")
			if !cmd.Flags().Changed("collar") {
				collar = cfg.Eval.Collar
			}

			metrics, err := capeval.ParseMetrics(metricNames)
			if err != nil {
				return err
			}

			manager, err := dataset.Open(cfg.DataRoot)
			if err != nil {
				return err
			}
			md, err := manager.Metadata(args[0])
			if err != nil {
				return err
			}

			line := strings.Repeat("=", 70)
			fmt.Printf("\n%s\n", line)
			fmt.Printf("Evaluating Dataset: %s\n", md.Name)
			fmt.Println(line)
			fmt.Printf("Language: %s\n", md.Language)
			fmt.Printf("Speakers: %d\n", md.Speakers.Count)
			fmt.Printf("Ground Truth: %s\n", md.GroundTruth.Path)
			fmt.Printf("Metrics: %s\n", strings.Join(metricNames, ", "))
			fmt.Printf("%s\n\n", line)

			runner := bench.NewRunner(manager, nil, bench.Options{
				Metrics:     metrics,
				Collar:      collar,
				SkipOverlap: cfg.Eval.SkipOverlap,
				SkipEvents:  cfg.Eval.SkipEvents,
				Language:    cfg.Eval.Language,
				Workers:     cfg.Workers,
				Logger:      logger,
			})
			rows, err := runner.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			for i, row := range rows {
				if i > 0 {
					fmt.Printf("\n%s\n", strings.Repeat("-", 70))
				}
				fmt.Println(row.Model)
				report.WriteText(os.Stdout, metrics, row.Result, row.Model)
			}

			fmt.Printf("\n%s\n", line)
			fmt.Println("Evaluation Complete")
			fmt.Printf("%s\n\n", line)

			return nil
		},
	}

	cmd.Flags().StringSliceP("metrics", "m", []string{"der", "jer", "wer", "sca", "scer"},
		"metrics to compute (der, jer, wer, sca, scer)")
	cmd.Flags().Float64("collar", 0, "collar for DER/JER (seconds)")

	return cmd
}

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Score one caption pair across a range of collar values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			refPath, _ := cmd.Flags().GetString("reference")
			hypPath, _ := cmd.Flags().GetString("hypothesis")
			collars, _ := cmd.Flags().GetFloat64Slice("collars")

			ref, err := caption.Load(refPath)
			if err != nil {
				return fmt.Errorf("load reference: %w", err)
			}
			hyp, err := caption.Load(hypPath)
			if err != nil {
				return fmt.Errorf("load hypothesis: %w", err)
			}

			results, err := bench.SweepCollars(cmd.Context(), nil, ref, hyp, collars, bench.Options{
				SkipOverlap: cfg.Eval.SkipOverlap,
				SkipEvents:  cfg.Eval.SkipEvents,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			fmt.Println("Collar Sweep Results")
			fmt.Println(strings.Repeat("-", 56))
			fmt.Printf("%-8s %-8s %-8s %-9s %-9s %-9s\n",
				"Collar", "DER", "JER", "FA(s)", "MISS(s)", "CONF(s)")
			for _, r := range results {
				fmt.Printf("%-8.3f %-8.4f %-8.4f %-9.2f %-9.2f %-9.2f\n",
					r.Collar, r.DER, r.JER,
					r.Breakdown.FalseAlarm, r.Breakdown.Missed, r.Breakdown.Confusion)
			}
			fmt.Println(strings.Repeat("-", 56))

			return nil
		},
	}

	cmd.Flags().StringP("reference", "r", "", "reference caption file")
	cmd.Flags().StringP("hypothesis", "y", "", "hypothesis caption file")
	cmd.Flags().Float64Slice("collars", []float64{0, 0.1, 0.2, 0.25, 0.5}, "collar values to sweep")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("hypothesis")

	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List datasets in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			manager, err := dataset.Open(cfg.DataRoot)
			if err != nil {
				return err
			}

			language, _ := cmd.Flags().GetString("language")
			category, _ := cmd.Flags().GetString("category")

			entries := manager.List(language, category)
			if len(entries) == 0 {
				fmt.Println("No datasets found.")
				return nil
			}

			fmt.Printf("\n%-25s %-10s %-15s %-40s\n", "ID", "Language", "Category", "Name")
			fmt.Println(strings.Repeat("=", 95))
			for _, e := range entries {
				fmt.Printf("%-25s %-10s %-15s %-40s\n", e.ID, e.Language, e.Category, e.Name)
			}
			fmt.Printf("\nTotal: %d datasets\n\n", len(entries))

			return nil
		},
	}

	cmd.Flags().StringP("language", "l", "", "filter by language")
	cmd.Flags().StringP("category", "c", "", "filter by category")

	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <dataset-id>",
		Short: "Show dataset details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			manager, err := dataset.Open(cfg.DataRoot)
			if err != nil {
				return err
			}

			entry, err := manager.Get(args[0])
			if err != nil {
				return err
			}

			line := strings.Repeat("=", 60)
			fmt.Printf("\n%s\n", line)
			fmt.Printf("Dataset: %s\n", entry.Name)
			fmt.Println(line)
			fmt.Printf("ID:          %s\n", entry.ID)
			fmt.Printf("Language:    %s\n", entry.Language)
			fmt.Printf("Category:    %s\n", entry.Category)
			fmt.Printf("Video:       %s\n", entry.VideoURL)
			fmt.Printf("Duration:    %ds\n", entry.Duration)
			fmt.Printf("Speakers:    %d\n", entry.NumSpeakers)
			fmt.Printf("Path:        %s\n", entry.Path)
			fmt.Printf("Tags:        %s\n", strings.Join(entry.Tags, ", "))

			if md, err := manager.Metadata(args[0]); err == nil {
				fmt.Printf("\nGround Truth: %s\n", md.GroundTruth.Path)
				fmt.Printf("Results:      %d models\n", len(md.Results))
			}
			fmt.Println()

			return nil
		},
	}
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <dataset-id> <name> <language> <category> <video-url>",
		Short: "Add a new dataset to the catalog",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			manager, err := dataset.Open(cfg.DataRoot)
			if err != nil {
				return err
			}

			description, _ := cmd.Flags().GetString("description")
			duration, _ := cmd.Flags().GetInt("duration")
			speakers, _ := cmd.Flags().GetInt("speakers")
			tags, _ := cmd.Flags().GetStringSlice("tags")

			entry, err := manager.Add(args[0], args[1], args[2], args[3], args[4], dataset.AddOptions{
				Description: description,
				Duration:    duration,
				Speakers:    speakers,
				Tags:        tags,
			})
			if err != nil {
				return err
			}

			dir := manager.Dir(entry)
			fmt.Printf("Created dataset: %s\n", entry.ID)
			fmt.Printf("   Path: %s\n", dir)
			fmt.Printf("   Metadata: %s\n", filepath.Join(dir, "metadata.json"))

			return nil
		},
	}

	cmd.Flags().StringP("description", "d", "", "dataset description")
	cmd.Flags().Int("duration", 0, "video duration in seconds")
	cmd.Flags().Int("speakers", 1, "number of speakers")
	cmd.Flags().StringSlice("tags", nil, "tags")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("capeval-bench %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}
