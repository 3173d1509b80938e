package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateSearchOptions_Validate(t *testing.T) {
	vector := []float32{0.1, 0.2, 0.3}

	t.Run("Defaults are applied", func(t *testing.T) {
		opts := &CandidateSearchOptions{Vector: vector, MinSimilarity: 0.5}
		require.NoError(t, opts.Validate())
		assert.Equal(t, defaultSearchLimit, opts.Limit)
		assert.Equal(t, defaultModel, opts.Model)
	})

	t.Run("Explicit values survive", func(t *testing.T) {
		opts := &CandidateSearchOptions{Vector: vector, Limit: 25, MinSimilarity: 0.7, Model: "text-embedding-3-small"}
		require.NoError(t, opts.Validate())
		assert.Equal(t, 25, opts.Limit)
		assert.Equal(t, "text-embedding-3-small", opts.Model)
	})

	t.Run("Empty vector is rejected", func(t *testing.T) {
		opts := &CandidateSearchOptions{MinSimilarity: 0.5}
		assert.Error(t, opts.Validate())
	})

	t.Run("Negative limit is rejected", func(t *testing.T) {
		opts := &CandidateSearchOptions{Vector: vector, Limit: -1}
		assert.Error(t, opts.Validate())
	})

	t.Run("Limit above maximum is rejected", func(t *testing.T) {
		opts := &CandidateSearchOptions{Vector: vector, Limit: maxSearchLimit + 1}
		assert.Error(t, opts.Validate())
	})

	t.Run("Similarity floor outside [0,1] is rejected", func(t *testing.T) {
		opts := &CandidateSearchOptions{Vector: vector, MinSimilarity: 1.5}
		assert.Error(t, opts.Validate())

		opts = &CandidateSearchOptions{Vector: vector, MinSimilarity: -0.1}
		assert.Error(t, opts.Validate())
	})
}
