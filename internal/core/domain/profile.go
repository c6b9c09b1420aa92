package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile holds per-borrower running statistics, maintained incrementally as
// a side effect of loan finalization. These are the aggregated features the
// external scoring model consumes; they are never recomputed from scratch by
// the coordinator.
type Profile struct {
	Wallet                string          `json:"wallet"` // canonical form, primary key
	TotalTransactions     int64           `json:"total_transactions"`
	NumPreviousLoans      int64           `json:"num_previous_loans"`
	TotalPreviousLoansEth decimal.Decimal `json:"total_previous_loans_eth"`
	UpdatedAt             time.Time       `json:"updated_at"`
}
