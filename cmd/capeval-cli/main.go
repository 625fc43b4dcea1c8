package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	capeval "github.com/jamesainslie/go-capeval"
	"github.com/jamesainslie/go-capeval/caption"
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
		Use:   "capeval-cli",
		Short: "Score hypothesis captions against a reference",
		Long: `capeval-cli scores a hypothesis caption file against a human-annotated
reference and reports diarization and transcript quality metrics.

Examples:
  capeval-cli -r ref.ass -y hyp.ass
  capeval-cli -r ref.ass -y hyp.ass -m wer
  capeval-cli -r ref.ass -y hyp.ass -m der,jer,sca -c 0.25
  capeval-cli -r ref.ass -y hyp.ass -f json`,
		SilenceUsage: true,
		RunE:         runEval,
	}

	cmd.Flags().StringP("reference", "r", "", "reference caption file")
	cmd.Flags().StringP("hypothesis", "y", "", "hypothesis caption file")
	cmd.Flags().StringP("model-name", "n", "", "model name to display in results")
	cmd.Flags().StringSliceP("metrics", "m", []string{"der", "jer", "wer", "sca", "scer"},
		"metrics to compute (der, jer, wer, sca, scer)")
	cmd.Flags().Float64P("collar", "c", 0.2, "collar size in seconds (default: 200ms)")
	cmd.Flags().Bool("skip-overlap", false, "skip overlapping speech for DER")
	cmd.Flags().Bool("skip-events", false, "skip [event] markers (e.g., [Laughter], [Applause])")
	cmd.Flags().StringP("language", "l", "auto",
		`language code (en, zh, ja) or "auto" to detect from the dataset catalog`)
	cmd.Flags().String("data-root", "data", "dataset catalog root used for language auto-detection")
	cmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolP("verbose", "v", false, "verbose output")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("hypothesis")

	cmd.AddCommand(versionCmd())

	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	refPath, _ := cmd.Flags().GetString("reference")
	hypPath, _ := cmd.Flags().GetString("hypothesis")
	modelName, _ := cmd.Flags().GetString("model-name")
	metricNames, _ := cmd.Flags().GetStringSlice("metrics")
	collar, _ := cmd.Flags().GetFloat64("collar")
	skipOverlap, _ := cmd.Flags().GetBool("skip-overlap")
	skipEvents, _ := cmd.Flags().GetBool("skip-events")
	language, _ := cmd.Flags().GetString("language")
	dataRoot, _ := cmd.Flags().GetString("data-root")
	format, _ := cmd.Flags().GetString("format")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if _, err := os.Stat(refPath); err != nil {
		return fmt.Errorf("Reference file not found: %s", refPath)
	}
	if _, err := os.Stat(hypPath); err != nil {
		return fmt.Errorf("Hypothesis file not found: %s", hypPath)
	}

	metrics, err := capeval.ParseMetrics(metricNames)
	if err != nil {
		return err
	}

	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format: %q (supported: text, json)", format)
	}

	if language == "auto" {
		detected := dataset.DetectLanguage(dataRoot, refPath)
		if detected == "" {
			detected = dataset.DetectLanguage(dataRoot, hypPath)
		}
		if detected == "" {
			detected = "en"
		}
		language = detected
		if verbose {
			fmt.Fprintf(os.Stderr, "Auto-detected language: %s\n", language)
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Reference: %s\n", refPath)
		fmt.Fprintf(os.Stderr, "Hypothesis: %s\n", hypPath)
		fmt.Fprintf(os.Stderr, "Metrics: %s\n", strings.Join(metricNames, ", "))
		fmt.Fprintf(os.Stderr, "Language: %s\n", language)
		fmt.Fprintf(os.Stderr, "Collar: %gs\n\n", collar)
	}

	ref, err := caption.Load(refPath)
	if err != nil {
		return fmt.Errorf("load reference: %w", err)
	}
	hyp, err := caption.Load(hypPath)
	if err != nil {
		return fmt.Errorf("load hypothesis: %w", err)
	}

	opts := []capeval.Option{
		capeval.WithMetrics(metrics...),
		capeval.WithCollar(collar),
		capeval.WithSkipOverlap(skipOverlap),
		capeval.WithSkipEvents(skipEvents),
		capeval.WithLanguage(language),
	}
	if verbose {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger().Level(zerolog.DebugLevel)
		opts = append(opts,
			capeval.WithLogger(logger),
			capeval.WithVerbose(os.Stderr),
			capeval.WithDebugGrids(hypPath),
		)
	}

	result, err := capeval.Evaluate(ref, hyp, opts...)
	if err != nil {
		return err
	}

	if format == "json" {
		return report.WriteJSON(os.Stdout, metrics, result)
	}
	report.WriteText(os.Stdout, metrics, result, modelName)

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("capeval-cli %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}
