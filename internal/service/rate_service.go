package service

import (
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Credit score bounds of the scoring model.
const (
	minCreditScore = 300
	maxCreditScore = 850
)

// rateTier is one pricing band. Bands are evaluated top down; the first band
// whose floor the score clears wins.
type rateTier struct {
	name     string
	minScore int
	minRate  decimal.Decimal // percent, best rate in band
	maxRate  decimal.Decimal // percent, worst rate in band
}

var rateTiers = []rateTier{
	{name: "prime", minScore: 750, minRate: decimal.NewFromInt(5), maxRate: decimal.NewFromInt(8)},
	{name: "near-prime", minScore: 650, minRate: decimal.NewFromInt(8), maxRate: decimal.NewFromInt(12)},
	{name: "subprime", minScore: 550, minRate: decimal.NewFromInt(12), maxRate: decimal.NewFromInt(18)},
	{name: "deep-subprime", minScore: minCreditScore, minRate: decimal.NewFromInt(18), maxRate: decimal.NewFromInt(25)},
}

// TieredRateService implements ports.RateService with fixed pricing bands.
// The suggested rate interpolates linearly within the band: a score at the
// band ceiling quotes the band's best rate, at the floor its worst.
type TieredRateService struct{}

// NewTieredRateService creates a new TieredRateService.
func NewTieredRateService() *TieredRateService {
	return &TieredRateService{}
}

// Quote returns the pricing band and suggested rate for a credit score.
func (s *TieredRateService) Quote(score int) (ports.RateQuote, error) {
	if score < minCreditScore || score > maxCreditScore {
		return ports.RateQuote{}, apperror.Validation("credit score must be between 300 and 850")
	}

	for i, tier := range rateTiers {
		if score < tier.minScore {
			continue
		}

		ceiling := maxCreditScore
		if i > 0 {
			ceiling = rateTiers[i-1].minScore - 1
		}

		span := ceiling - tier.minScore
		position := decimal.NewFromInt(int64(ceiling - score))
		spread := tier.maxRate.Sub(tier.minRate)

		suggested := tier.minRate
		if span > 0 {
			suggested = tier.minRate.Add(spread.Mul(position).Div(decimal.NewFromInt(int64(span)))).Round(2)
		}

		return ports.RateQuote{
			Score:         score,
			Tier:          tier.name,
			MinRate:       tier.minRate,
			MaxRate:       tier.maxRate,
			SuggestedRate: suggested,
		}, nil
	}

	// Unreachable: the last band floors at minCreditScore.
	return ports.RateQuote{}, apperror.Validation("credit score out of range")
}
