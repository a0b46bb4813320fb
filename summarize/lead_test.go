package summarize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLead_FirstTwoSentences(t *testing.T) {
	got, err := NewLead().Summarize(context.Background(), Input{
		Body: "First sentence. Second one! Third is dropped. Fourth too.",
	})
	require.NoError(t, err)
	assert.Equal(t, "First sentence. Second one!", got)
}

func TestLead_NormalizesWhitespace(t *testing.T) {
	got, err := NewLead().Summarize(context.Background(), Input{
		Body: "Spread\nover   lines. Second\tsentence here. Third.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Spread over lines. Second sentence here.", got)
}

func TestLead_ShortBody(t *testing.T) {
	got, err := NewLead().Summarize(context.Background(), Input{Body: "Just one sentence"})
	require.NoError(t, err)
	assert.Equal(t, "Just one sentence", got)

	got, err = NewLead().Summarize(context.Background(), Input{Body: "   "})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLead_DoesNotSplitOnDotsWithoutSpace(t *testing.T) {
	got, err := NewLead().Summarize(context.Background(), Input{
		Body: "Version 1.2 shipped today. Rollout starts at example.com tomorrow. Extra.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Version 1.2 shipped today. Rollout starts at example.com tomorrow.", got)
}
