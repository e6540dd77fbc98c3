package ingest

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/permit-leads/internal/model"
)

// ReadJSON parses a JSON array of records. This is the lossless format:
// classifications, coordinates, and enrichment all round-trip.
func ReadJSON(r io.Reader) ([]*model.Record, error) {
	var records []*model.Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, eris.Wrap(err, "ingest: decode json records")
	}

	kept := records[:0]
	for _, rec := range records {
		if rec == nil || rec.ID == "" {
			zap.L().Warn("ingest: skipping json record without id")
			continue
		}
		kept = append(kept, rec)
	}

	zap.L().Debug("ingest: parsed json batch", zap.Int("records", len(kept)))
	return kept, nil
}

// ReadFile dispatches on file extension (.csv or .json).
func ReadFile(path string) ([]*model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".json":
		return ReadJSON(f)
	default:
		return nil, eris.Errorf("ingest: unsupported file type %q", filepath.Ext(path))
	}
}
