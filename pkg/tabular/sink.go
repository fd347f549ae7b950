package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Ramsey-B/clover/pkg/models"
)

// CSVSink rewrites a CSV file with the full result set on every Write. The new content is
// written to a temporary file in the same directory and renamed into place, so readers
// see either the previous complete file or the new one.
type CSVSink struct {
	path string
}

// NewCSVSink creates a sink that writes to path
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Path returns the output file path
func (s *CSVSink) Path() string {
	return s.path
}

// Write replaces the output file with a header row followed by results
func (s *CSVSink) Write(ctx context.Context, results []models.MatchResult) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(models.MatchResultHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range results {
		if err := writer.Write(results[i].Values()); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}
