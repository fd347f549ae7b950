package emitter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

var testLogger = ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

// recordingSink keeps a copy of every write
type recordingSink struct {
	writes [][]models.MatchResult
	err    error
}

func (s *recordingSink) Write(_ context.Context, results []models.MatchResult) error {
	if s.err != nil {
		return s.err
	}
	snapshot := make([]models.MatchResult, len(results))
	copy(snapshot, results)
	s.writes = append(s.writes, snapshot)
	return nil
}

func (s *recordingSink) sizes() []int {
	sizes := make([]int, len(s.writes))
	for i, w := range s.writes {
		sizes[i] = len(w)
	}
	return sizes
}

func result(i int) models.MatchResult {
	return models.MatchResult{EntityName: fmt.Sprintf("Entity %d", i), CorporateBusinessName: fmt.Sprintf("Corp %d", i)}
}

func TestEmitter_Batching(t *testing.T) {
	ctx := context.Background()

	t.Run("250 single matches flush at 100, 200 and finish", func(t *testing.T) {
		sink := &recordingSink{}
		e := New(sink, testLogger, DefaultConfig())

		for i := 0; i < 250; i++ {
			require.NoError(t, e.Emit(ctx, []models.MatchResult{result(i)}))
		}
		assert.Equal(t, []int{100, 200}, sink.sizes())
		assert.Equal(t, 250, e.Total())

		require.NoError(t, e.Finish(ctx))
		assert.Equal(t, []int{100, 200, 250}, sink.sizes())
		assert.Equal(t, 3, e.Flushes())

		final := sink.writes[2]
		for i := range final {
			assert.Equal(t, result(i), final[i])
		}
		assert.Equal(t, final, e.Results())
	})

	t.Run("flush is checked per record, not per result", func(t *testing.T) {
		sink := &recordingSink{}
		e := New(sink, testLogger, DefaultConfig())

		// 34 records of 3 results reach 102 before the first flush
		for i := 0; i < 40; i++ {
			require.NoError(t, e.Emit(ctx, []models.MatchResult{result(3 * i), result(3*i + 1), result(3*i + 2)}))
		}
		require.NoError(t, e.Finish(ctx))
		assert.Equal(t, []int{102, 120}, sink.sizes())
	})

	t.Run("records without results do not trigger flushes", func(t *testing.T) {
		sink := &recordingSink{}
		e := New(sink, testLogger, Config{BatchSize: 2})

		for i := 0; i < 10; i++ {
			require.NoError(t, e.Emit(ctx, nil))
		}
		assert.Empty(t, sink.writes)
	})

	t.Run("finish writes an empty set when nothing matched", func(t *testing.T) {
		sink := &recordingSink{}
		e := New(sink, testLogger, DefaultConfig())

		require.NoError(t, e.Finish(ctx))
		require.Len(t, sink.writes, 1)
		assert.Empty(t, sink.writes[0])
	})

	t.Run("invalid batch size falls back to default", func(t *testing.T) {
		sink := &recordingSink{}
		e := New(sink, testLogger, Config{BatchSize: 0})
		for i := 0; i < DefaultBatchSize; i++ {
			require.NoError(t, e.Emit(ctx, []models.MatchResult{result(i)}))
		}
		assert.Equal(t, []int{DefaultBatchSize}, sink.sizes())
	})
}

func TestEmitter_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("sink errors are returned", func(t *testing.T) {
		diskFull := errors.New("no space left on device")
		e := New(&recordingSink{err: diskFull}, testLogger, Config{BatchSize: 1})

		err := e.Emit(ctx, []models.MatchResult{result(1)})
		assert.ErrorIs(t, err, diskFull)
	})

	t.Run("emit after finish", func(t *testing.T) {
		e := New(&recordingSink{}, testLogger, DefaultConfig())
		require.NoError(t, e.Finish(ctx))

		assert.ErrorIs(t, e.Emit(ctx, []models.MatchResult{result(1)}), ErrFinished)
		assert.ErrorIs(t, e.Finish(ctx), ErrFinished)
	})
}

func TestEmitter_LogsFlushes(t *testing.T) {
	var messages []ectologger.EctoLogMessage
	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		messages = append(messages, msg)
	})

	e := New(&recordingSink{}, logger, Config{BatchSize: 2})
	ctx := context.Background()
	require.NoError(t, e.Emit(ctx, []models.MatchResult{{EntityName: "a"}, {EntityName: "b"}}))
	require.NoError(t, e.Finish(ctx))

	require.Len(t, messages, 2)
	assert.Equal(t, "Saving records", messages[0].Message)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, map[string]any{"batch_size": 2, "total": 2, "flush": 1}, messages[0].Fields)
	assert.Equal(t, map[string]any{"batch_size": 0, "total": 2, "flush": 2}, messages[1].Fields)
}
