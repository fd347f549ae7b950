// Package processor runs a full reconciliation: load both datasets, index the primary records,
// match every secondary record and emit the accepted pairs.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ramsey-B/clover/config"
	clovercontext "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/emitter"
	"github.com/Ramsey-B/clover/pkg/fingerprint"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tabular"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ProcessorConfig configures a run
type ProcessorConfig struct {
	PrimaryPath   string
	SecondaryPath string

	PrimaryColumns   tabular.PrimaryColumns
	SecondaryColumns tabular.SecondaryColumns

	// Matching holds thresholds, metric and worker count
	Matching matching.EngineConfig

	// Emitter holds the flush batch size
	Emitter emitter.Config

	// WindowSize is the number of consecutive secondary records matched in parallel
	// before their results are emitted
	WindowSize int
}

// DefaultProcessorConfig returns a ProcessorConfig with the default columns and thresholds
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PrimaryColumns:   tabular.DefaultPrimaryColumns(),
		SecondaryColumns: tabular.DefaultSecondaryColumns(),
		Matching:         matching.DefaultConfig(),
		Emitter:          emitter.DefaultConfig(),
		WindowSize:       512,
	}
}

// ConfigFromEnv maps loaded application configuration onto a ProcessorConfig
func ConfigFromEnv(cfg *config.Config) (ProcessorConfig, error) {
	metric, err := matching.ParseMetric(cfg.SimilarityMetric)
	if err != nil {
		return ProcessorConfig{}, err
	}

	pc := DefaultProcessorConfig()
	pc.PrimaryPath = cfg.PrimaryPath
	pc.SecondaryPath = cfg.SecondaryPath
	pc.Matching = matching.EngineConfig{
		AddressThreshold: cfg.AddressMatchThreshold,
		NameThreshold:    cfg.NameMatchThreshold,
		Metric:           metric,
		Workers:          cfg.MatchWorkerCount,
	}
	pc.Emitter = emitter.Config{BatchSize: cfg.FlushBatchSize}
	pc.WindowSize = cfg.MatchWindowSize
	return pc, nil
}

// Stats summarizes a run
type Stats struct {
	RunID            string                      `json:"run_id"`
	PrimaryRows      int                         `json:"primary_rows"`
	PrimarySkipped   int                         `json:"primary_skipped"`
	SecondaryRows    int                         `json:"secondary_rows"`
	SecondarySkipped int                         `json:"secondary_skipped"`
	Outcomes         map[models.MatchOutcome]int `json:"outcomes"`
	Matches          int                         `json:"matches"`
	Flushes          int                         `json:"flushes"`
	Fingerprint      string                      `json:"fingerprint"`
	Duration         time.Duration               `json:"duration"`
}

// Processor wires the reader, matching engine and emitter together
type Processor struct {
	config ProcessorConfig
	reader *tabular.Reader
	sink   emitter.Sink
	logger ectologger.Logger
}

// NewProcessor creates a new Processor
func NewProcessor(config ProcessorConfig, reader *tabular.Reader, sink emitter.Sink, logger ectologger.Logger) *Processor {
	if config.WindowSize < 1 {
		config.WindowSize = DefaultProcessorConfig().WindowSize
	}
	return &Processor{
		config: config,
		reader: reader,
		sink:   sink,
		logger: logger,
	}
}

// Run performs one reconciliation. Results are emitted in secondary-record order; on error,
// whatever was flushed before the failure stays in the sink.
func (p *Processor) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{
		RunID:    uuid.NewString(),
		Outcomes: make(map[models.MatchOutcome]int),
	}

	ctx, span := tracing.StartSpan(ctx, "processor.Run")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", stats.RunID))
	ctx = clovercontext.SetRunID(ctx, stats.RunID)

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"primary":   p.config.PrimaryPath,
		"secondary": p.config.SecondaryPath,
	}).Info("Starting run")

	primaries, primaryStats, err := p.reader.ReadPrimary(ctx, p.config.PrimaryPath, p.config.PrimaryColumns)
	if err != nil {
		return nil, fmt.Errorf("load primary dataset: %w", err)
	}
	stats.PrimaryRows = primaryStats.Rows
	stats.PrimarySkipped = len(primaryStats.Skipped)

	engine := matching.NewEngine(p.logger, primaries, p.config.Matching)

	secondaries, secondaryStats, err := p.reader.ReadSecondary(ctx, p.config.SecondaryPath, p.config.SecondaryColumns)
	if err != nil {
		return nil, fmt.Errorf("load secondary dataset: %w", err)
	}
	stats.SecondaryRows = secondaryStats.Rows
	stats.SecondarySkipped = len(secondaryStats.Skipped)

	em := emitter.New(p.sink, p.logger, p.config.Emitter)

	for lo := 0; lo < len(secondaries); lo += p.config.WindowSize {
		hi := min(lo+p.config.WindowSize, len(secondaries))

		matches, err := engine.MatchAll(ctx, secondaries[lo:hi])
		if err != nil {
			return nil, fmt.Errorf("match window [%d, %d): %w", lo, hi, err)
		}

		for i := range matches {
			m := &matches[i]
			stats.Outcomes[m.Outcome]++
			if err := em.Emit(ctx, m.Results); err != nil {
				return nil, fmt.Errorf("emit results for row %d: %w", m.Secondary.Row, err)
			}
		}
	}

	if err := em.Finish(ctx); err != nil {
		return nil, fmt.Errorf("final flush: %w", err)
	}

	stats.Matches = em.Total()
	stats.Flushes = em.Flushes()
	stats.Fingerprint = fingerprint.Results(em.Results())
	stats.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("matches", stats.Matches),
		attribute.Int("flushes", stats.Flushes),
	)

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"primary_rows":       stats.PrimaryRows,
		"secondary_rows":     stats.SecondaryRows,
		"skipped_rows":       stats.PrimarySkipped + stats.SecondarySkipped,
		"matches":            stats.Matches,
		"flushes":            stats.Flushes,
		"unique":             stats.Outcomes[models.MatchOutcomeUnique],
		"resolved":           stats.Outcomes[models.MatchOutcomeResolved],
		"ambiguous_rejected": stats.Outcomes[models.MatchOutcomeAmbiguousRejected],
		"unmatched":          stats.Outcomes[models.MatchOutcomeUnmatched],
		"no_city":            stats.Outcomes[models.MatchOutcomeNoCity],
		"fingerprint":        stats.Fingerprint,
		"duration":           stats.Duration.String(),
	}).Info("Run complete")
	return stats, nil
}
