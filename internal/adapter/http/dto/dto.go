package dto

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Wallet   string `json:"wallet" binding:"required,eth_address"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Wallet   string `json:"wallet"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateOfferRequest is the request body for listing a lender offer.
// AmountEth is a decimal string to keep sub-wei precision out of float64.
type CreateOfferRequest struct {
	LenderWallet string `json:"lender_wallet" binding:"required,eth_address"`
	AmountEth    string `json:"amount_eth" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"required,gt=0,lte=3650"`
	MinScore     int    `json:"min_score" binding:"gte=0,lte=850"`
}

// CreateOfferResponse reports the ledger outcome of an offer registration.
type CreateOfferResponse struct {
	TxHash             string `json:"tx_hash"`
	OfferID            int64  `json:"offer_id"`
	PersistencePending bool   `json:"persistence_pending,omitempty"`
}

// OfferResponse is one marketplace listing.
type OfferResponse struct {
	ID           string `json:"id"`
	OfferID      int64  `json:"offer_id"`
	LenderWallet string `json:"lender_wallet"`
	AmountEth    string `json:"amount_eth"`
	DurationDays int    `json:"duration_days"`
	MinScore     int    `json:"min_score"`
	Active       bool   `json:"active"`
	CreatedAt    string `json:"created_at"`
}

// AcceptOfferRequest is the request body for accepting an offer.
// Rate is a decimal percent string; the principal is never client-supplied.
type AcceptOfferRequest struct {
	OfferID        int64  `json:"offer_id" binding:"required,gt=0"`
	BorrowerWallet string `json:"borrower_wallet" binding:"required,eth_address"`
	Rate           string `json:"rate" binding:"required"`
	Insured        bool   `json:"insured"`
	InsurerWallet  string `json:"insurer_wallet" binding:"omitempty,eth_address"`
}

// AcceptOfferResponse is the acceptance outcome.
type AcceptOfferResponse struct {
	TxHash             string `json:"tx_hash"`
	LoanID             string `json:"loan_id"`
	InterestAmount     string `json:"interest_amount"`
	PersistencePending bool   `json:"persistence_pending,omitempty"`
}

// DefaultResponse reports a default submission.
type DefaultResponse struct {
	LoanID string `json:"loan_id"`
	TxHash string `json:"tx_hash"`
	Status string `json:"status"`
}

// FlaggedResponse is the reputation registry lookup result.
type FlaggedResponse struct {
	Wallet  string `json:"wallet"`
	Flagged bool   `json:"flagged"`
}

// ProfileResponse is the borrower statistics view.
type ProfileResponse struct {
	Wallet                string `json:"wallet"`
	TotalTransactions     int64  `json:"total_transactions"`
	NumPreviousLoans      int64  `json:"num_previous_loans"`
	TotalPreviousLoansEth string `json:"total_previous_loans_eth"`
}

// BalanceResponse is the wallet balance view.
type BalanceResponse struct {
	Wallet     string `json:"wallet"`
	BalanceWei string `json:"balance_wei"`
	BalanceEth string `json:"balance_eth"`
}

// RateQuoteRequest is the request body for a rate quote.
type RateQuoteRequest struct {
	CreditScore int `json:"credit_score" binding:"required"`
}

// RateQuoteResponse is a priced rate band for a credit score.
type RateQuoteResponse struct {
	Score         int    `json:"score"`
	Tier          string `json:"tier"`
	MinRate       string `json:"min_rate"`
	MaxRate       string `json:"max_rate"`
	SuggestedRate string `json:"suggested_rate"`
}

// ReconcileResponse summarizes one reconciliation pass.
type ReconcileResponse struct {
	PromotedLoans     int `json:"promoted_loans"`
	DeactivatedOffers int `json:"deactivated_offers"`
}
