package dedupe

import (
	"fmt"

	"github.com/sells-group/permit-leads/internal/model"
)

// Merge collapses two duplicate records into one survivor. The record
// with the higher valuation wins (the primary on ties) and inherits all
// fields; the folded-away record contributes its data source, a note on
// the description, and its id lineage. The survivor's score, when
// already computed, gets the multi-signal bonus and is reclamped.
func Merge(primary, secondary *model.Record, bonus int) *model.Record {
	higher, lower := primary, secondary
	if secondary.Valuation > primary.Valuation {
		higher, lower = secondary, primary
	}

	survivor := *higher

	survivor.DataSource = joinSources(higher.DataSource, lower.DataSource)

	if marker := mergeMarker(lower); marker != "" {
		if survivor.Description != "" {
			survivor.Description += " "
		}
		survivor.Description += marker
	}

	if survivor.Score != nil {
		boosted := *survivor.Score + bonus
		if boosted > 100 {
			boosted = 100
		}
		survivor.Score = &boosted
	}

	survivor.HighQuality = true

	// Retain lineage without overwriting what the survivor already
	// carries from earlier folds.
	mergedWith := make([]string, 0, len(higher.MergedWith)+len(lower.MergedWith)+1)
	mergedWith = append(mergedWith, higher.MergedWith...)
	mergedWith = append(mergedWith, lower.ID)
	mergedWith = append(mergedWith, lower.MergedWith...)
	survivor.MergedWith = mergedWith

	return &survivor
}

// joinSources builds the composite provenance label, skipping empty sides.
func joinSources(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " + " + b
	}
}

// mergeMarker is the human-readable note appended to the survivor's
// description.
func mergeMarker(lower *model.Record) string {
	source := lower.DataSource
	if source == "" {
		source = lower.ID
	}
	if source == "" {
		return ""
	}
	return fmt.Sprintf("[Also found in %s]", source)
}
