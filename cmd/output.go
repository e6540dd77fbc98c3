package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/permit-leads/internal/config"
	"github.com/sells-group/permit-leads/internal/model"
)

// openOutput returns the destination writer for a command's results and
// a close func. An empty path means stdout.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "output: create %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeRecordsCSV(w io.Writer, records []*model.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"id", "address", "city", "permit_type", "valuation", "applied_date", "data_source", "score", "high_quality", "commercial_trigger", "merged_with"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "output: write CSV header")
	}

	for _, r := range records {
		score := ""
		if r.Score != nil {
			score = fmt.Sprintf("%d", *r.Score)
		}
		trigger := false
		if r.Class != nil {
			trigger = r.Class.IsCommercialTrigger
		}
		row := []string{
			r.ID,
			r.Address,
			r.City,
			r.PermitType,
			fmt.Sprintf("%.0f", r.Valuation),
			r.AppliedDate,
			r.DataSource,
			score,
			fmt.Sprintf("%v", r.HighQuality),
			fmt.Sprintf("%v", trigger),
			strings.Join(r.MergedWith, ";"),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "output: write CSV row")
		}
	}
	return nil
}

func writeRecordsTable(w io.Writer, records []*model.Record) error {
	header := fmt.Sprintf("%-12s %-40s %-15s %12s %6s %4s %4s %-20s\n",
		"ID", "Address", "City", "Valuation", "Score", "HQ", "Trig", "Source")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "output: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 120)); err != nil {
		return eris.Wrap(err, "output: write table separator")
	}

	for _, r := range records {
		addr := r.Address
		if runes := []rune(addr); len(runes) > 40 {
			addr = string(runes[:37]) + "..."
		}
		score := "-"
		if r.Score != nil {
			score = fmt.Sprintf("%d", *r.Score)
		}
		trigger := false
		if r.Class != nil {
			trigger = r.Class.IsCommercialTrigger
		}
		line := fmt.Sprintf("%-12s %-40s %-15s %12s %6s %4v %4v %-20s\n",
			r.ID, addr, r.City, formatMoney(r.Valuation), score, r.HighQuality, trigger, r.DataSource)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "output: write table row")
		}
	}
	return nil
}

func writeRecordsJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "output: encode JSON")
}

func outputRecords(records []*model.Record, format, outputPath string) error {
	w, closeFn, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeFn()

	switch format {
	case "csv":
		return writeRecordsCSV(w, records)
	case "table":
		return writeRecordsTable(w, records)
	case "json":
		return writeRecordsJSON(w, records)
	default:
		return eris.Errorf("output: unsupported format %q", format)
	}
}

func formatMoney(amount float64) string {
	s := fmt.Sprintf("%.0f", amount)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	if neg {
		return "-" + string(result)
	}
	return string(result)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// applyDedupeOverrides returns a copy of the base config with CLI flag
// overrides applied.
func applyDedupeOverrides(cmd *cobra.Command, base config.DedupeConfig) config.DedupeConfig {
	c := base

	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		c.Workers = v
	}
	if v, _ := cmd.Flags().GetString("cities"); v != "" {
		c.KnownCities = splitAndTrim(v)
	}
	if v, _ := cmd.Flags().GetFloat64("proximity"); v > 0 {
		c.ProximityMeters = v
	}

	return c
}
