package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchOptionsNormalised(t *testing.T) {
	opts := SearchOptions{}.Normalised()
	assert.Equal(t, DefaultMaxResults, opts.MaxResults)
	assert.Equal(t, DefaultSimilarityThreshold, *opts.SimilarityThreshold)
	assert.Equal(t, DefaultSearchBatchSize, opts.BatchSize)
}

func TestSearchOptionsNormalisedKeepsExplicitValues(t *testing.T) {
	opts := SearchOptions{MaxResults: 3, SimilarityThreshold: Threshold(0.4), BatchSize: 7}.Normalised()
	assert.Equal(t, 3, opts.MaxResults)
	assert.Equal(t, 0.4, *opts.SimilarityThreshold)
	assert.Equal(t, 7, opts.BatchSize)
}

func TestSearchOptionsExplicitZeroThresholdIsKept(t *testing.T) {
	// Zero is a valid threshold meaning "keep everything scored"; only
	// an absent threshold falls back to the default.
	opts := SearchOptions{SimilarityThreshold: Threshold(0)}.Normalised()
	assert.Zero(t, *opts.SimilarityThreshold)
}

func TestNoticeResult(t *testing.T) {
	res := NoticeResult("not ready")
	assert.True(t, res.Notice)
	assert.Equal(t, "not ready", res.Excerpt)
	assert.Zero(t, res.MessageID)
}
