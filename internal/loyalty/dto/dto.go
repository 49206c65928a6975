package dto

type LedgerInput struct {
	UserID      string
	CafeID      *string
	OrderID     *string
	Type        string // 'earned', 'redeemed', 'refunded'; derived by the usecase when empty
	Points      int    // positive magnitude; the usecase signs it
	Description string
}

type HistoryFilters struct {
	UserID   string
	CafeID   string
	Type     string
	Page     int
	PageSize int
}

type ReconcileResult struct {
	UserID        string `json:"user_id"`
	LedgerBalance int    `json:"ledger_balance"`
	CachedBalance int    `json:"cached_balance"`
	Repaired      bool   `json:"repaired"`
}
