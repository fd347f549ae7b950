// Package tabular reads source records from delimited files and writes match results back out
package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel/attribute"

	clovercontext "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var (
	// ErrMissingColumn is returned when a required column is not present in the header
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyFile is returned when a source has no header row
	ErrEmptyFile = errors.New("file has no header row")
)

// RowError describes a row that was skipped during ingestion
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ReadOptions controls how delimited files are parsed
type ReadOptions struct {
	// Delimiter separates fields. Zero selects tab for .tsv files and comma otherwise.
	Delimiter rune
	// Normalizers are applied to every cell, in order.
	Normalizers []string
}

// DefaultReadOptions trims every cell and detects the delimiter from the file extension
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Normalizers: []string{"trim"}}
}

// ReadStats summarizes a load
type ReadStats struct {
	Rows    int         // rows turned into records
	Skipped []*RowError // malformed rows that were dropped
}

// Reader loads primary and secondary records from delimited files
type Reader struct {
	logger ectologger.Logger
	opts   ReadOptions
}

// NewReader creates a new Reader
func NewReader(logger ectologger.Logger, opts ReadOptions) *Reader {
	return &Reader{logger: logger, opts: opts}
}

// ReadPrimary loads the primary dataset from path
func (r *Reader) ReadPrimary(ctx context.Context, path string, cols PrimaryColumns) ([]models.PrimaryRecord, ReadStats, error) {
	ctx, span := tracing.StartSpan(ctx, "tabular.Reader.ReadPrimary")
	defer span.End()

	var records []models.PrimaryRecord
	stats, err := r.scan(ctx, path, cols.columns(), func(row int, v []string) {
		records = append(records, models.PrimaryRecord{
			Row:          row,
			BusinessName: v[0],
			Address:      v[1],
			City:         v[2],
			State:        v[3],
			ZIP:          v[4],
		})
	})
	if err != nil {
		return nil, stats, fmt.Errorf("read primary records from %s: %w", filepath.Base(path), err)
	}

	span.SetAttributes(attribute.Int("rows", stats.Rows), attribute.Int("skipped", len(stats.Skipped)))
	return records, stats, nil
}

// ReadSecondary loads the secondary dataset from path
func (r *Reader) ReadSecondary(ctx context.Context, path string, cols SecondaryColumns) ([]models.SecondaryRecord, ReadStats, error) {
	ctx, span := tracing.StartSpan(ctx, "tabular.Reader.ReadSecondary")
	defer span.End()

	var records []models.SecondaryRecord
	stats, err := r.scan(ctx, path, cols.columns(), func(row int, v []string) {
		records = append(records, models.SecondaryRecord{
			Row:           row,
			EntityName:    v[0],
			Address:       v[1],
			StreetAddress: v[2],
			City:          v[3],
			ZIP:           v[4],
		})
	})
	if err != nil {
		return nil, stats, fmt.Errorf("read secondary records from %s: %w", filepath.Base(path), err)
	}

	span.SetAttributes(attribute.Int("rows", stats.Rows), attribute.Int("skipped", len(stats.Skipped)))
	return records, stats, nil
}

// scan parses path and calls visit with the wanted columns' normalized values for every
// well-formed row. Rows that fail to parse or have the wrong number of fields are skipped.
func (r *Reader) scan(ctx context.Context, path string, wanted []column, visit func(row int, values []string)) (ReadStats, error) {
	var stats ReadStats

	f, err := os.Open(path)
	if err != nil {
		return stats, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = r.delimiter(path)
	reader.FieldsPerRecord = -1
	// bare quotes such as 12" Pipe Supply are data, not syntax errors
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return stats, ErrEmptyFile
	}
	if err != nil {
		return stats, fmt.Errorf("read header: %w", err)
	}

	positions, err := resolveColumns(header, wanted)
	if err != nil {
		return stats, err
	}

	ctx = clovercontext.SetSource(ctx, filepath.Base(path))
	values := make([]string, len(wanted))
	for {
		if (stats.Rows+len(stats.Skipped))%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return stats, err
			}
			rowErr := &RowError{Line: parseErr.StartLine, Err: parseErr.Err}
			stats.Skipped = append(stats.Skipped, rowErr)
			r.logger.WithContext(ctx).WithError(rowErr.Err).WithField("line", rowErr.Line).Warn("Skipping malformed row")
			continue
		}

		if len(record) != len(header) {
			line, _ := reader.FieldPos(0)
			rowErr := &RowError{Line: line, Err: fmt.Errorf("%w: got %d, want %d", csv.ErrFieldCount, len(record), len(header))}
			stats.Skipped = append(stats.Skipped, rowErr)
			r.logger.WithContext(ctx).WithError(rowErr.Err).WithField("line", rowErr.Line).Warn("Skipping malformed row")
			continue
		}

		for i, pos := range positions {
			values[i] = ""
			if pos >= 0 {
				values[i] = normalizers.ApplyChain(record[pos], r.opts.Normalizers...)
			}
		}
		stats.Rows++
		visit(stats.Rows, values)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"rows":    stats.Rows,
		"skipped": len(stats.Skipped),
	}).Info("Loaded records")
	return stats, nil
}

func (r *Reader) delimiter(path string) rune {
	if r.opts.Delimiter != 0 {
		return r.opts.Delimiter
	}
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}
