package models

import "time"

const (
	// Fixed reward schedule. Every verified upload and every like earns the
	// same flat credit; there is no tiering.
	RewardPerUpload = 2.0
	RewardPerLike   = 2.0

	// Withdrawals below this are rejected at the API layer.
	MinWithdrawal = 10.0

	CurrencyUnit = "₹"
	DataUnit     = "GB"
)

type HistoryType string

const (
	HistoryUpload   HistoryType = "upload"
	HistoryRedeem   HistoryType = "redeem"
	HistoryWithdraw HistoryType = "withdraw"
)

// StatusCompleted is the only status this service ever writes. The field
// exists so clients can render a pending/failed path later without a schema
// change.
const StatusCompleted = "completed"

// Photo is one uploaded asset. Counters only ever grow; hiding a photo keeps
// it (and its earnings) in the account, it just drops out of the feed.
type Photo struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	Likes     int       `json:"likes"`
	Views     int       `json:"views"`
	Shares    int       `json:"shares"`
	Comments  int       `json:"comments"`
	Feedback  string    `json:"feedback"`
	IsVisible bool      `json:"is_visible"`
}

// HistoryItem is an append-only ledger entry. Entries are never mutated or
// removed after creation.
type HistoryItem struct {
	ID        string      `json:"id"`
	Type      HistoryType `json:"type"`
	Amount    float64     `json:"amount"`
	Unit      string      `json:"unit"`
	Timestamp time.Time   `json:"timestamp"`
	Status    string      `json:"status"`
	Method    string      `json:"method,omitempty"`
}

// Account is one isolated ledger scope. Photos and History are ordered newest
// first. TotalData and WithdrawalsTotal are monotonically non-decreasing.
type Account struct {
	ID               string        `json:"id"`
	Username         string        `json:"username"`
	Photos           []Photo       `json:"photos"`
	History          []HistoryItem `json:"history"`
	TotalData        float64       `json:"total_data"`
	WithdrawalsTotal float64       `json:"withdrawals_total"`
}

// Stats is the displayable snapshot derived from an account; it is computed
// on demand, never stored.
type Stats struct {
	Balance           float64 `json:"balance"`
	TotalData         float64 `json:"total_data"`
	PhotosUploaded    int     `json:"photos_uploaded"`
	TotalLikes        int     `json:"total_likes"`
	TotalLikeEarnings float64 `json:"total_like_earnings"`
}
