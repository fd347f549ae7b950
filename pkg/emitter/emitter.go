// Package emitter accumulates accepted matches and rewrites them to a sink in batches
package emitter

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// DefaultBatchSize is the number of buffered results that triggers a flush
const DefaultBatchSize = 100

// ErrFinished is returned when results are emitted after Finish
var ErrFinished = errors.New("emitter: already finished")

// Sink receives the complete accumulated result set on every flush and must replace any
// previously written content. The slice is only valid for the duration of the call.
type Sink interface {
	Write(ctx context.Context, results []models.MatchResult) error
}

// Config holds emitter configuration
type Config struct {
	BatchSize int
}

// DefaultConfig returns the default emitter configuration
func DefaultConfig() Config {
	return Config{BatchSize: DefaultBatchSize}
}

// Emitter owns the result buffer. It is not safe for concurrent use.
type Emitter struct {
	sink      Sink
	logger    ectologger.Logger
	batchSize int

	buffer   []models.MatchResult
	flushed  []models.MatchResult
	flushes  int
	finished bool
}

// New creates a new Emitter
func New(sink Sink, logger ectologger.Logger, config Config) *Emitter {
	if config.BatchSize < 1 {
		config.BatchSize = DefaultBatchSize
	}
	return &Emitter{
		sink:      sink,
		logger:    logger,
		batchSize: config.BatchSize,
		buffer:    make([]models.MatchResult, 0, config.BatchSize),
	}
}

// Emit buffers the results of one secondary record, then flushes if the buffer has
// reached the batch size.
func (e *Emitter) Emit(ctx context.Context, results []models.MatchResult) error {
	if e.finished {
		return ErrFinished
	}

	e.buffer = append(e.buffer, results...)
	if len(e.buffer) >= e.batchSize {
		return e.Flush(ctx)
	}
	return nil
}

// Flush moves the buffer into the accumulated set and rewrites the whole set to the sink.
func (e *Emitter) Flush(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "emitter.Emitter.Flush")
	defer span.End()

	batch := len(e.buffer)
	e.flushed = append(e.flushed, e.buffer...)
	e.buffer = e.buffer[:0]
	e.flushes++

	span.SetAttributes(
		attribute.Int("batch_size", batch),
		attribute.Int("total", len(e.flushed)),
	)

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_size": batch,
		"total":      len(e.flushed),
		"flush":      e.flushes,
	}).Info("Saving records")

	if err := e.sink.Write(ctx, e.flushed); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("total", len(e.flushed)).Error("Failed to write results")
		return fmt.Errorf("flush %d results: %w", len(e.flushed), err)
	}
	return nil
}

// Finish performs the final flush of everything accumulated, whatever the buffer size.
// Further calls to Emit fail with ErrFinished.
func (e *Emitter) Finish(ctx context.Context) error {
	if e.finished {
		return ErrFinished
	}
	e.finished = true
	return e.Flush(ctx)
}

// Total returns the number of results emitted so far, flushed or buffered
func (e *Emitter) Total() int {
	return len(e.flushed) + len(e.buffer)
}

// Flushes returns how many times the sink has been written
func (e *Emitter) Flushes() int {
	return e.flushes
}

// Results returns a copy of the flushed result set
func (e *Emitter) Results() []models.MatchResult {
	out := make([]models.MatchResult, len(e.flushed))
	copy(out, e.flushed)
	return out
}
