package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer is a lender's standing commitment of principal, listed on the
// marketplace until exactly one successful acceptance deactivates it.
// ChainOfferID is assigned by the ledger and immutable; the ledger, not this
// row, is the adversarial source of truth for whether the offer is still open.
type Offer struct {
	ID              uuid.UUID       `json:"id"`
	ChainOfferID    int64           `json:"chain_offer_id"`
	LenderWallet    string          `json:"lender_wallet"` // canonical EIP-55 form
	AmountAvailable decimal.Decimal `json:"amount_available"` // ETH
	DurationDays    int             `json:"duration_days"`
	MinScore        int             `json:"min_score"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
