package treeindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordAndContains(t *testing.T) {
	idx := New()
	assert.False(t, idx.Contains("h1", "plug"))

	idx.Record("h1", "plug")
	assert.True(t, idx.Contains("h1", "plug"))
	assert.False(t, idx.Contains("h1", "other"))
	assert.False(t, idx.Contains("h2", "plug"))
}

func TestRecord_Idempotent(t *testing.T) {
	idx := New()
	idx.Record("h1", "plug")
	idx.Record("h1", "plug")
	assert.True(t, idx.Contains("h1", "plug"))
}
