package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/permit-leads/internal/ingest"
	"github.com/sells-group/permit-leads/internal/pipeline"
	"github.com/sells-group/permit-leads/internal/scorer"
	"github.com/sells-group/permit-leads/internal/store"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the full dedupe, recalibrate, and score pipeline",
	Long: `Read permit records from a CSV or JSON file, collapse cross-source
duplicates, recalibrate classification confidence, and score every
surviving record.

Examples:
  # Run against a CSV export and print a table
  pipeline --input permits.csv

  # Restrict matching to known municipalities
  pipeline --input permits.csv --cities "Seattle,Tacoma,Bellevue"

  # Persist the scored batch
  pipeline --input permits.json --save --label "march import"`,
	RunE: runPipeline,
}

func init() {
	f := pipelineCmd.Flags()
	f.String("input", "", "input file (.csv or .json)")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table, csv, or json")
	f.String("cities", "", "comma-separated municipality allowlist (overrides config)")
	f.Int("workers", 0, "pair-scan worker count (overrides config)")
	f.Float64("proximity", 0, "duplicate proximity cutoff in meters (overrides config)")
	f.Bool("save", false, "save the scored batch to the store")
	f.String("label", "", "label for the saved batch")
	_ = pipelineCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "pipeline"))

	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")
	label, _ := cmd.Flags().GetString("label")

	if format != "table" && format != "csv" && format != "json" {
		return eris.Errorf("pipeline: --format must be table, csv, or json (got %q)", format)
	}

	runCfg := *cfg
	runCfg.Dedupe = applyDedupeOverrides(cmd, cfg.Dedupe)
	if err := scorer.ValidateConfig(runCfg.Scorer); err != nil {
		return err
	}
	if err := scorer.ValidateRecalibrateConfig(runCfg.Recalibrate); err != nil {
		return err
	}

	records, err := ingest.ReadFile(inputPath)
	if err != nil {
		return eris.Wrapf(err, "pipeline: read %s", inputPath)
	}
	log.Info("loaded records", zap.Int("count", len(records)), zap.String("input", inputPath))

	result := pipeline.New(&runCfg).Run(records, time.Now().UTC())

	if format == "json" {
		w, closeFn, err := openOutput(outputPath)
		if err != nil {
			return err
		}
		defer closeFn()
		if err := writeRecordsJSON(w, result); err != nil {
			return err
		}
	} else {
		if err := outputRecords(result.Records, format, outputPath); err != nil {
			return err
		}
		printPipelineSummary(result.Summary)
	}

	if save {
		if label == "" {
			label = fmt.Sprintf("pipeline %s", time.Now().UTC().Format("2006-01-02 15:04"))
		}
		st, err := store.Open(ctx, runCfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		batch, err := st.SaveBatch(ctx, label, result.Summary.Input, result.Records)
		if err != nil {
			return eris.Wrap(err, "pipeline: save batch")
		}
		fmt.Printf("Saved batch %s (%d records)\n", batch.ID, batch.OutputCount)
	}

	return nil
}

func printPipelineSummary(s pipeline.Summary) {
	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Input records:   %d\n", s.Input)
	fmt.Printf("Output records:  %d\n", s.Output)
	fmt.Printf("Merged away:     %d\n", s.MergedAway)
	fmt.Printf("Unknown city:    %d\n", s.UnknownCity)
	fmt.Printf("High quality:    %d\n", s.HighQuality)
	fmt.Printf("Triggers:        %d\n", s.Triggers)
	fmt.Printf("Average score:   %.1f\n", s.AverageScore)
}
