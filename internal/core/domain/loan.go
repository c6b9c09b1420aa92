package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus represents the lifecycle state of a loan.
type LoanStatus string

const (
	// LoanStatusSelected is a provisional reservation written before the
	// ledger transaction confirms. It carries no ledger identity yet.
	LoanStatusSelected  LoanStatus = "selected"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusDefaulted LoanStatus = "defaulted"
	LoanStatusRepaid    LoanStatus = "repaid"
)

// Loan is the off-ledger record of an originated loan. LoanID is the opaque
// ledger-assigned identity; Principal always mirrors the principal read from
// the ledger for the originating offer at acceptance time, never a
// client-supplied value.
type Loan struct {
	ID               uuid.UUID       `json:"id"`
	LoanID           *string         `json:"loan_id"` // nil until ledger-confirmed
	BorrowerWallet   string          `json:"borrower_wallet"`
	LenderWallet     string          `json:"lender_wallet"`
	InsurerWallet    *string         `json:"insurer_wallet,omitempty"`
	Principal        decimal.Decimal `json:"principal"`       // ETH
	InterestAmount   decimal.Decimal `json:"interest_amount"` // ETH
	InsuranceAmount  decimal.Decimal `json:"insurance_amount"`
	AprBps           int32           `json:"apr_bps"`
	InsuranceBps     int32           `json:"insurance_bps"`
	DurationDays     int             `json:"duration_days"`
	Status           LoanStatus      `json:"status"`
	StartTs          *time.Time      `json:"start_ts,omitempty"`
	DueTs            *time.Time      `json:"due_ts,omitempty"`
	TxCreateHash     *string         `json:"tx_create_hash,omitempty"`
	SelectedOptionID uuid.UUID       `json:"selected_option_id"` // originating offer row
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsFinalized reports whether the loan has been promoted past its
// provisional reservation.
func (l *Loan) IsFinalized() bool {
	return l.Status != LoanStatusSelected
}

// AcceptanceKey identifies one acceptance attempt. A single borrower may
// accept a given offer at most once; retries resolve to the same key.
func AcceptanceKey(chainOfferID int64, borrowerWallet string) string {
	return "accept:" + strconv.FormatInt(chainOfferID, 10) + ":" + borrowerWallet
}
