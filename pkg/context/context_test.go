package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunID(t *testing.T) {
	assert.Empty(t, GetRunID(context.Background()))

	ctx := SetRunID(context.Background(), "run-1")
	assert.Equal(t, "run-1", GetRunID(ctx))
	assert.Empty(t, GetSource(ctx))
}

func TestSource(t *testing.T) {
	ctx := SetSource(SetRunID(context.Background(), "run-1"), "primary.csv")
	assert.Equal(t, "primary.csv", GetSource(ctx))
	assert.Equal(t, "run-1", GetRunID(ctx))
}
