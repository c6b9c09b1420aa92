package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTieredRateService_Tiers(t *testing.T) {
	svc := NewTieredRateService()

	cases := []struct {
		score int
		tier  string
	}{
		{850, "prime"},
		{750, "prime"},
		{749, "near-prime"},
		{650, "near-prime"},
		{649, "subprime"},
		{550, "subprime"},
		{549, "deep-subprime"},
		{300, "deep-subprime"},
	}
	for _, tc := range cases {
		quote, err := svc.Quote(tc.score)
		require.NoError(t, err)
		assert.Equal(t, tc.tier, quote.Tier, "score %d", tc.score)
	}
}

func TestTieredRateService_SuggestedRateWithinBand(t *testing.T) {
	svc := NewTieredRateService()

	for score := 300; score <= 850; score += 25 {
		quote, err := svc.Quote(score)
		require.NoError(t, err)
		assert.True(t, quote.SuggestedRate.GreaterThanOrEqual(quote.MinRate),
			"score %d: suggested %s below band min %s", score, quote.SuggestedRate, quote.MinRate)
		assert.True(t, quote.SuggestedRate.LessThanOrEqual(quote.MaxRate),
			"score %d: suggested %s above band max %s", score, quote.SuggestedRate, quote.MaxRate)
	}
}

func TestTieredRateService_BandEdges(t *testing.T) {
	svc := NewTieredRateService()

	// Top of the scale gets the best rate overall.
	top, err := svc.Quote(850)
	require.NoError(t, err)
	assert.True(t, top.SuggestedRate.Equal(decimal.NewFromInt(5)))

	// Bottom of the scale gets the worst, still capped at 25.
	bottom, err := svc.Quote(300)
	require.NoError(t, err)
	assert.True(t, bottom.SuggestedRate.Equal(decimal.NewFromInt(25)))
}

func TestTieredRateService_BetterScoreNeverWorseRate(t *testing.T) {
	svc := NewTieredRateService()

	prev, err := svc.Quote(300)
	require.NoError(t, err)
	for score := 301; score <= 850; score++ {
		quote, err := svc.Quote(score)
		require.NoError(t, err)
		assert.True(t, quote.SuggestedRate.LessThanOrEqual(prev.SuggestedRate),
			"score %d quoted %s, worse than %s at score %d",
			score, quote.SuggestedRate, prev.SuggestedRate, score-1)
		prev = quote
	}
}

func TestTieredRateService_OutOfRange(t *testing.T) {
	svc := NewTieredRateService()

	_, err := svc.Quote(299)
	assert.Equal(t, "VAL_001", appCode(t, err))

	_, err = svc.Quote(851)
	assert.Equal(t, "VAL_001", appCode(t, err))
}
