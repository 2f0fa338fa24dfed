package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetReturnsStableLoggerPerCategory(t *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	Configure(zap.New(core))
	defer Configure(zap.NewNop())

	a := Get(CategoryWorkspace)
	b := Get(CategoryWorkspace)
	assert.Same(t, a, b, "Get should cache the derived logger per category")

	c := Get(CategoryResolver)
	assert.NotSame(t, a, c)
}

func TestGetTagsComponentField(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Configure(zap.New(core))
	defer Configure(zap.NewNop())

	Get(CategoryCommit).Info("committed")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "commit", entries[0].ContextMap()["component"])
	}
}
