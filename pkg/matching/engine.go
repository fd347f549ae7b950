// Package matching implements the record-linkage policy: exact ZIP, exact city and fuzzy
// address filtering followed by a cardinality-based disambiguation on entity name.
package matching

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// EngineConfig contains configuration for the match engine
type EngineConfig struct {
	AddressThreshold float64 // Minimum address score for a candidate (default: 80)
	NameThreshold    float64 // Minimum name score when several candidates remain (default: 80)
	Metric           Metric  // Similarity metric (default: indel)
	Workers          int     // Concurrent matchers used by MatchAll (default: 1)
}

// DefaultConfig returns default engine configuration
func DefaultConfig() EngineConfig {
	return EngineConfig{
		AddressThreshold: DefaultThreshold,
		NameThreshold:    DefaultThreshold,
		Metric:           MetricIndel,
		Workers:          1,
	}
}

// Engine matches secondary records against an in-memory primary collection
type Engine struct {
	logger ectologger.Logger
	index  *Index
	scorer *Scorer
	config EngineConfig
}

// NewEngine indexes primaries and returns an engine ready to match. primaries must not be
// modified while the engine is in use.
func NewEngine(logger ectologger.Logger, primaries []models.PrimaryRecord, config EngineConfig) *Engine {
	if config.Workers < 1 {
		config.Workers = 1
	}

	idx := NewIndex(primaries)
	logger.WithFields(map[string]any{
		"indexed": idx.Len(),
		"skipped": idx.Skipped(),
		"buckets": idx.Buckets(),
	}).Info("Indexed primary records")

	return &Engine{
		logger: logger,
		index:  idx,
		scorer: NewScorer(config.Metric),
		config: config,
	}
}

// FindCandidates returns the primary records that pass the ZIP, city and address stages,
// in primary-collection order.
func (e *Engine) FindCandidates(secondary *models.SecondaryRecord) []*models.PrimaryRecord {
	bucket := e.index.Lookup(secondary.ZIP, secondary.City)
	if len(bucket) == 0 {
		return nil
	}

	var candidates []*models.PrimaryRecord
	for _, p := range bucket {
		if e.scorer.FuzzyMatch(p.Address, secondary.StreetAddress, e.config.AddressThreshold) {
			candidates = append(candidates, p)
		}
	}
	return candidates
}

// Disambiguate converts the candidates for a secondary record into match results. A single
// candidate is accepted as is; with several, only those whose business name fuzzily
// matches the entity name are kept.
func (e *Engine) Disambiguate(secondary *models.SecondaryRecord, candidates []*models.PrimaryRecord) models.RecordMatch {
	match := models.RecordMatch{
		Secondary:  secondary,
		Candidates: len(candidates),
	}

	switch len(candidates) {
	case 0:
		match.Outcome = models.MatchOutcomeUnmatched
	case 1:
		match.Outcome = models.MatchOutcomeUnique
		match.Results = []models.MatchResult{models.NewMatchResult(secondary, candidates[0])}
	default:
		for _, c := range candidates {
			if e.scorer.FuzzyMatch(c.BusinessName, secondary.EntityName, e.config.NameThreshold) {
				match.Results = append(match.Results, models.NewMatchResult(secondary, c))
			}
		}
		match.Outcome = models.MatchOutcomeResolved
		if len(match.Results) == 0 {
			match.Outcome = models.MatchOutcomeAmbiguousRejected
		}
	}

	return match
}

// Match runs the full policy for one secondary record. A record without a city is a
// non-match.
func (e *Engine) Match(ctx context.Context, secondary *models.SecondaryRecord) models.RecordMatch {
	if secondary.City == "" {
		e.logger.WithContext(ctx).WithField("row", secondary.Row).Debug("Secondary record has no city, skipping")
		return models.RecordMatch{Secondary: secondary, Outcome: models.MatchOutcomeNoCity}
	}

	match := e.Disambiguate(secondary, e.FindCandidates(secondary))
	e.logger.WithContext(ctx).WithFields(map[string]any{
		"row":        secondary.Row,
		"outcome":    string(match.Outcome),
		"candidates": match.Candidates,
		"results":    len(match.Results),
	}).Debug("Matched secondary record")
	return match
}

// MatchAll matches every secondary record using up to config.Workers goroutines. The
// returned slice is aligned with secondaries, so callers see results in input order no
// matter how the work was scheduled.
func (e *Engine) MatchAll(ctx context.Context, secondaries []models.SecondaryRecord) ([]models.RecordMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.MatchAll")
	defer span.End()
	span.SetAttributes(
		attribute.Int("secondary_count", len(secondaries)),
		attribute.Int("workers", e.config.Workers),
	)

	matches := make([]models.RecordMatch, len(secondaries))

	if e.config.Workers == 1 {
		for i := range secondaries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			matches[i] = e.Match(ctx, &secondaries[i])
		}
		return matches, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for i := range secondaries {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			matches[i] = e.Match(gCtx, &secondaries[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("match secondary records: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}
