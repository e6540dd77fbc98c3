package dedupe

import (
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/permit-leads/internal/model"
)

// pairMatrix precomputes every i<j comparison across worker goroutines.
// Comparisons are independent and side-effect free; row i holds the
// results for pairs (i, i+1..n-1).
func (r *Resolver) pairMatrix(records []*model.Record) [][]bool {
	n := len(records)
	matrix := make([][]bool, n)

	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)

	for i := 0; i < n-1; i++ {
		row := make([]bool, n-i-1)
		matrix[i] = row
		g.Go(func() error {
			for j := i + 1; j < n; j++ {
				row[j-i-1] = r.matcher.AreDuplicates(records[i], records[j])
			}
			return nil
		})
	}

	// Comparison workers never return errors.
	_ = g.Wait()
	return matrix
}
