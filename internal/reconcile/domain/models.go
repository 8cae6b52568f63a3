package domain

// Totals is the aggregate view of a tenant's ledger after an allocation pass.
// CreditBalance is paid credit that could not cover the oldest open charge in
// full; it is never partially allocated and stays available to the next pass.
type Totals struct {
	Charges       int64 `json:"charges"`
	Paid          int64 `json:"paid"`
	Submitted     int64 `json:"submitted"`
	Failed        int64 `json:"failed"`
	Balance       int64 `json:"balance"`
	CreditBalance int64 `json:"credit_balance"`
}
