package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Fixed insurance premium policy: 1% of principal when insured.
// Per-insurer pricing is a future extension.
const InsurancePremiumBps = 100

// ErrInvalidRate is returned for a non-positive or implausibly large rate.
var ErrInvalidRate = errors.New("rate must be greater than 0 and at most 100")

var (
	hundred     = decimal.NewFromInt(100)
	bpsDivisor  = decimal.NewFromInt(10_000)
	weiPerEther = decimal.New(1, 18) // 10^18 minor units per ETH
)

// Terms are the derived financial terms of an acceptance.
type Terms struct {
	InterestAmount  decimal.Decimal // ETH
	AprBps          int32
	InsuranceBps    int32
	InsuranceAmount decimal.Decimal // ETH
}

// ComputeTerms derives loan terms from a principal (decimal ETH), an interest
// rate in percent and the insurance flag. Interest is computed in the same
// decimal representation as the principal, not in integer basis-point math;
// minor-unit conversion happens once at the ledger boundary.
func ComputeTerms(principal, rate decimal.Decimal, insured bool) (Terms, error) {
	if rate.LessThanOrEqual(decimal.Zero) || rate.GreaterThan(hundred) {
		return Terms{}, ErrInvalidRate
	}

	t := Terms{
		InterestAmount:  principal.Mul(rate).Div(hundred),
		AprBps:          int32(rate.Mul(hundred).Round(0).IntPart()),
		InsuranceAmount: decimal.Zero,
	}

	if insured {
		t.InsuranceBps = InsurancePremiumBps
		t.InsuranceAmount = principal.Mul(decimal.NewFromInt(InsurancePremiumBps)).Div(bpsDivisor)
	}

	return t, nil
}

// EthFromWei converts a minor-unit amount to decimal ETH.
func EthFromWei(wei decimal.Decimal) decimal.Decimal {
	return wei.Div(weiPerEther)
}

// WeiFromEth converts decimal ETH to minor units, truncating any precision
// below one wei.
func WeiFromEth(eth decimal.Decimal) decimal.Decimal {
	return eth.Mul(weiPerEther).Truncate(0)
}
