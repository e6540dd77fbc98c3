package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/permit-leads/internal/dedupe"
	"github.com/sells-group/permit-leads/internal/ingest"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Collapse cross-source duplicate permit records",
	Long: `Read permit records from a CSV or JSON file and collapse duplicates
without scoring. Two records are duplicates when their normalized
addresses are similar enough, or their coordinates fall within the
proximity cutoff, and they share a city.

Examples:
  # Dedupe a CSV export
  dedupe --input permits.csv

  # Tighten the geographic cutoff to 25 meters
  dedupe --input permits.csv --proximity 25`,
	RunE: runDedupe,
}

func init() {
	f := dedupeCmd.Flags()
	f.String("input", "", "input file (.csv or .json)")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table, csv, or json")
	f.String("cities", "", "comma-separated municipality allowlist (overrides config)")
	f.Int("workers", 0, "pair-scan worker count (overrides config)")
	f.Float64("proximity", 0, "duplicate proximity cutoff in meters (overrides config)")
	_ = dedupeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(dedupeCmd)
}

func runDedupe(cmd *cobra.Command, _ []string) error {
	log := zap.L().With(zap.String("command", "dedupe"))

	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")

	if format != "table" && format != "csv" && format != "json" {
		return eris.Errorf("dedupe: --format must be table, csv, or json (got %q)", format)
	}

	dedupeCfg := applyDedupeOverrides(cmd, cfg.Dedupe)

	records, err := ingest.ReadFile(inputPath)
	if err != nil {
		return eris.Wrapf(err, "dedupe: read %s", inputPath)
	}

	matchable, passthrough := dedupe.PartitionByCity(records, dedupeCfg.KnownCities)
	resolved := dedupe.NewResolver(dedupeCfg).Resolve(matchable)
	resolved = append(resolved, passthrough...)
	log.Info("dedupe complete",
		zap.Int("input", len(records)),
		zap.Int("output", len(resolved)),
		zap.Int("merged_away", len(records)-len(resolved)),
	)

	if err := outputRecords(resolved, format, outputPath); err != nil {
		return err
	}
	if format == "table" {
		fmt.Printf("\n%d records in, %d out, %d merged away\n",
			len(records), len(resolved), len(records)-len(resolved))
	}
	return nil
}
