package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/permit-leads/internal/store"
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List saved pipeline batches",
	RunE:  runBatches,
}

var batchesShowCmd = &cobra.Command{
	Use:   "show <batch-id>",
	Short: "Show the records of a saved batch",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchesShow,
}

func init() {
	f := batchesCmd.Flags()
	f.Int("limit", 50, "maximum number of batches to list")
	f.Int("offset", 0, "number of batches to skip")

	sf := batchesShowCmd.Flags()
	sf.String("format", "table", "output format: table, csv, or json")
	sf.String("output", "", "output file path (default: stdout)")

	batchesCmd.AddCommand(batchesShowCmd)
	rootCmd.AddCommand(batchesCmd)
}

func runBatches(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	batches, err := st.ListBatches(ctx, store.BatchFilter{Limit: limit, Offset: offset})
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		fmt.Println("No batches.")
		return nil
	}

	fmt.Printf("%-36s %-30s %6s %6s %-20s\n", "ID", "Label", "In", "Out", "Created")
	for _, b := range batches {
		fmt.Printf("%-36s %-30s %6d %6d %-20s\n",
			b.ID, b.Label, b.InputCount, b.OutputCount, b.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runBatchesShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	if format != "table" && format != "csv" && format != "json" {
		return eris.Errorf("batches: --format must be table, csv, or json (got %q)", format)
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	records, err := st.GetBatchRecords(ctx, args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No records for batch", args[0])
		return nil
	}
	return outputRecords(records, format, outputPath)
}
