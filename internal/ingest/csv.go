// Package ingest reads permit record batches from local CSV and JSON
// files. Network fetch lives upstream; this package only parses what the
// connectors already delivered.
package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/permit-leads/internal/model"
)

// csvColumns maps recognized header names to record fields. Sources
// disagree on header casing; matching is case-insensitive.
var csvColumns = map[string]bool{
	"id": true, "address": true, "city": true, "description": true,
	"permit_type": true, "valuation": true, "applied_date": true,
	"data_source": true, "latitude": true, "longitude": true,
	"verified": true,
}

// ReadCSV parses records from a headered CSV stream. Unknown columns are
// ignored; malformed numeric cells degrade to zero values rather than
// failing the batch. Only a missing id is fatal for a row.
func ReadCSV(r io.Reader) ([]*model.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv header")
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if csvColumns[name] {
			idx[name] = i
		}
	}
	if _, ok := idx["id"]; !ok {
		return nil, eris.New("ingest: csv header missing id column")
	}

	var records []*model.Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read csv line %d", line+1)
		}
		line++

		cell := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		id := cell("id")
		if id == "" {
			zap.L().Warn("ingest: skipping csv row without id", zap.Int("line", line))
			continue
		}

		rec := &model.Record{
			ID:          id,
			Address:     cell("address"),
			City:        cell("city"),
			Description: cell("description"),
			PermitType:  cell("permit_type"),
			Valuation:   parseFloat(cell("valuation")),
			AppliedDate: cell("applied_date"),
			DataSource:  cell("data_source"),
		}

		lat, lng := cell("latitude"), cell("longitude")
		if lat != "" && lng != "" {
			rec.Coordinates = &model.Coordinates{
				Latitude:  parseFloat(lat),
				Longitude: parseFloat(lng),
			}
		}
		if v := cell("verified"); v != "" {
			verified, _ := strconv.ParseBool(v)
			rec.Enrichment = &model.Enrichment{Verified: verified}
		}

		records = append(records, rec)
	}

	zap.L().Debug("ingest: parsed csv batch", zap.Int("records", len(records)))
	return records, nil
}

// parseFloat degrades malformed numbers to zero; a lead with an unknown
// valuation still flows through the pipeline.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
