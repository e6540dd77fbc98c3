// Package dedupe groups pairwise-duplicate records and collapses each
// group into a single surviving record.
package dedupe

import (
	"go.uber.org/zap"

	"github.com/sells-group/permit-leads/internal/config"
	"github.com/sells-group/permit-leads/internal/match"
	"github.com/sells-group/permit-leads/internal/model"
)

// Resolver performs single-pass duplicate resolution over a record batch.
type Resolver struct {
	matcher *match.Matcher
	cfg     config.DedupeConfig
}

// NewResolver creates a Resolver with the given dedupe config.
func NewResolver(cfg config.DedupeConfig) *Resolver {
	return &Resolver{matcher: match.NewMatcher(cfg), cfg: cfg}
}

// Resolve collapses duplicate groups in a single forward pass. Each
// unclaimed record claims every later unclaimed record it directly
// matches; claimed groups fold left-to-right through the merge policy.
// Chains of 3+ records whose similarity is not pairwise-transitive with
// the group's first member may not fully merge in one pass.
//
// Every input id appears exactly once in the output, either standalone
// or via the surviving record's MergedWith list. Resolve never fails on
// malformed input; empty addresses and bad dates are legal.
func (r *Resolver) Resolve(records []*model.Record) []*model.Record {
	n := len(records)
	if n == 0 {
		return nil
	}

	isDup := r.pairFn(records)

	claimed := make([]bool, n)
	out := make([]*model.Record, 0, n)
	merged := 0

	for i := 0; i < n; i++ {
		if claimed[i] {
			continue
		}
		group := []*model.Record{records[i]}
		for j := i + 1; j < n; j++ {
			if claimed[j] {
				continue
			}
			if isDup(i, j) {
				claimed[j] = true
				group = append(group, records[j])
			}
		}

		if len(group) == 1 {
			out = append(out, records[i])
			continue
		}

		survivor := group[0]
		for _, next := range group[1:] {
			survivor = Merge(survivor, next, r.cfg.MergeBonus)
		}
		merged += len(group) - 1
		out = append(out, survivor)

		zap.L().Debug("dedupe: merged group",
			zap.String("survivor", survivor.ID),
			zap.Int("size", len(group)),
		)
	}

	if merged > 0 {
		zap.L().Info("dedupe: resolution complete",
			zap.Int("input", n),
			zap.Int("output", len(out)),
			zap.Int("merged_away", merged),
		)
	}
	return out
}

// pairFn returns a pure pairwise-duplicate predicate over record
// indices. With more than one worker configured the full comparison
// matrix is precomputed in parallel; the claiming scan stays serial
// either way, so the grouping is identical.
func (r *Resolver) pairFn(records []*model.Record) func(i, j int) bool {
	if r.cfg.Workers > 1 && len(records) > 1 {
		matrix := r.pairMatrix(records)
		return func(i, j int) bool { return matrix[i][j-i-1] }
	}
	return func(i, j int) bool {
		return r.matcher.AreDuplicates(records[i], records[j])
	}
}
