package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/permit-leads/internal/ingest"
	"github.com/sells-group/permit-leads/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recalibrate confidence and score permit records",
	Long: `Read permit records from a CSV or JSON file and score them without
deduplication. Classification confidence is recalibrated first (tier
floors, signal-balance penalty, trade bonuses, valuation adjustments,
maintenance cap), then the 0-100 composite lead score is computed from
valuation, confidence, recency, and enrichment.

Examples:
  # Score a CSV export
  score --input permits.csv

  # Show the recalibration trace per record
  score --input permits.csv --explain

  # Export as CSV
  score --input permits.json --format csv --output scores.csv`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("input", "", "input file (.csv or .json)")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table or csv")
	f.Bool("explain", false, "print the recalibration trace per record")
	f.Int("min-score", 0, "only output records at or above this score")
	_ = scoreCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	log := zap.L().With(zap.String("command", "score"))

	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	explain, _ := cmd.Flags().GetBool("explain")
	minScore, _ := cmd.Flags().GetInt("min-score")

	if format != "table" && format != "csv" {
		return eris.Errorf("score: --format must be table or csv (got %q)", format)
	}
	if err := scorer.ValidateConfig(cfg.Scorer); err != nil {
		return err
	}
	if err := scorer.ValidateRecalibrateConfig(cfg.Recalibrate); err != nil {
		return err
	}

	records, err := ingest.ReadFile(inputPath)
	if err != nil {
		return eris.Wrapf(err, "score: read %s", inputPath)
	}

	sc := scorer.NewScorer(cfg.Scorer)
	recal := scorer.NewRecalibrator(cfg.Recalibrate)
	now := time.Now().UTC()

	var scores []scorer.LeadScore
	traces := make(map[string][]string)
	for _, rec := range records {
		if rec.Class != nil {
			res := recal.Recalibrate(rec.Class, rec.Description, rec.PermitType, rec.Valuation)
			rec.Class.ConfidenceScore = res.Score
			rec.Class.IsCommercialTrigger = res.IsCommercialTrigger
			traces[rec.ID] = res.Trace
		}
		ls := sc.Score(rec, now)
		if ls.Score < minScore {
			continue
		}
		score := ls.Score
		rec.Score = &score
		scores = append(scores, ls)
	}

	log.Info("scoring complete", zap.Int("records", len(records)), zap.Int("output", len(scores)))

	w, closeFn, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeFn()

	// Traces go to stderr so a redirected or --output data stream stays
	// machine-readable.
	return writeScoreOutput(w, os.Stderr, format, explain, scores, traces)
}

func writeScoreOutput(w, traceW io.Writer, format string, explain bool, scores []scorer.LeadScore, traces map[string][]string) error {
	switch format {
	case "csv":
		if err := writeLeadScoreCSV(w, scores); err != nil {
			return err
		}
	case "table":
		if err := writeLeadScoreTable(w, scores); err != nil {
			return err
		}
	}

	if explain {
		printTraces(traceW, scores, traces)
	}
	return nil
}

func writeLeadScoreCSV(w io.Writer, scores []scorer.LeadScore) error {
	header := []string{"record_id", "score", "valuation", "confidence", "recency", "enrichment"}
	if _, err := fmt.Fprintln(w, strings.Join(header, ",")); err != nil {
		return eris.Wrap(err, "score: write CSV header")
	}
	for _, s := range scores {
		row := fmt.Sprintf("%s,%d,%.1f,%.1f,%.1f,%.1f\n",
			s.RecordID, s.Score,
			s.ComponentScores["valuation"],
			s.ComponentScores["confidence"],
			s.ComponentScores["recency"],
			s.ComponentScores["enrichment"],
		)
		if _, err := fmt.Fprint(w, row); err != nil {
			return eris.Wrap(err, "score: write CSV row")
		}
	}
	return nil
}

func writeLeadScoreTable(w io.Writer, scores []scorer.LeadScore) error {
	header := fmt.Sprintf("%-20s %6s %10s %11s %8s %11s\n",
		"Record", "Score", "Valuation", "Confidence", "Recency", "Enrichment")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "score: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 72)); err != nil {
		return eris.Wrap(err, "score: write table separator")
	}
	for _, s := range scores {
		line := fmt.Sprintf("%-20s %6d %10.1f %11.1f %8.1f %11.1f\n",
			s.RecordID, s.Score,
			s.ComponentScores["valuation"],
			s.ComponentScores["confidence"],
			s.ComponentScores["recency"],
			s.ComponentScores["enrichment"],
		)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "score: write table row")
		}
	}
	return nil
}

func printTraces(w io.Writer, scores []scorer.LeadScore, traces map[string][]string) {
	for _, s := range scores {
		trace, ok := traces[s.RecordID]
		if !ok || len(trace) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", s.RecordID)
		for _, step := range trace {
			fmt.Fprintf(w, "  %s\n", step)
		}
	}
}
