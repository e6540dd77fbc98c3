package dedupe

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/permit-leads/internal/model"
)

// PartitionByCity splits records into the matchable set and the
// unknown-municipality passthrough set. An empty allowlist admits every
// record. City comparison is case-insensitive and ignores surrounding
// whitespace. Passed-through records skip matching but stay in the
// batch; downstream stages still process them.
func PartitionByCity(records []*model.Record, cities []string) (matchable, passthrough []*model.Record) {
	if len(cities) == 0 {
		return records, nil
	}
	allowed := make(map[string]bool, len(cities))
	for _, c := range cities {
		allowed[strings.ToLower(strings.TrimSpace(c))] = true
	}
	for _, rec := range records {
		if allowed[strings.ToLower(strings.TrimSpace(rec.City))] {
			matchable = append(matchable, rec)
			continue
		}
		zap.L().Warn("dedupe: record outside known municipality set",
			zap.String("record_id", rec.ID),
			zap.String("city", rec.City),
		)
		passthrough = append(passthrough, rec)
	}
	return matchable, passthrough
}
