// Package ingest turns host-side input files into the parsed structures the
// scoring engine consumes: a feature schema from YAML and sample rows from
// CSV. The engine itself never touches files.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"fna-risk/internal/engine"
)

// idColumn, when present in the CSV header, carries a caller-assigned sample
// identifier instead of a feature value.
const idColumn = "id"

// Batch is a parsed CSV: one sample per data row, plus the optional
// per-row IDs for audit and reporting.
type Batch struct {
	Samples []engine.Sample
	IDs     []string
}

// ReadSamples parses a CSV with a header row into schema samples. Columns
// are matched to features by header name; columns the schema does not know
// are ignored. A malformed numeric cell becomes NaN in the sample so the
// engine's validator reports it as that row's error instead of the whole
// file aborting.
func ReadSamples(r io.Reader, schema *engine.Schema) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Batch{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idCol := -1
	known := 0
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		if strings.EqualFold(header[i], idColumn) {
			idCol = i
			continue
		}
		if _, ok := schema.Index(header[i]); ok {
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("csv header matches no schema feature")
	}

	batch := &Batch{}
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNum+1, err)
		}

		sample := make(engine.Sample, known)
		id := ""
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			if i == idCol {
				id = strings.TrimSpace(cell)
				continue
			}
			name := header[i]
			if _, ok := schema.Index(name); !ok {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue // absent; validator decides if required
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				log.Warn().Int("row", rowNum).Str("feature", name).Str("cell", cell).
					Msg("unparseable cell, row will fail validation")
				v = math.NaN()
			}
			sample[name] = v
		}

		if id == "" {
			id = fmt.Sprintf("row-%d", rowNum)
		}
		batch.Samples = append(batch.Samples, sample)
		batch.IDs = append(batch.IDs, id)
		rowNum++
	}

	return batch, nil
}

// WriteResults renders a batch result as CSV, one line per input row in
// input order. Failed rows carry the error text in the error column and
// empty result columns.
func WriteResults(w io.Writer, batch *Batch, result *engine.BatchResult) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "label", "confidence", "top_feature", "error"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range result.PerRow {
		id := ""
		if row.RowIndex < len(batch.IDs) {
			id = batch.IDs[row.RowIndex]
		}

		record := []string{id, "", "", "", ""}
		if row.Err != nil {
			record[4] = row.Err.Error()
		} else {
			record[1] = string(row.Result.Label)
			record[2] = strconv.FormatFloat(row.Result.Confidence, 'f', 4, 64)
			if len(row.Result.ContributingFeatures) > 0 {
				record[3] = row.Result.ContributingFeatures[0].Name
			}
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", row.RowIndex, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
