package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// Subscribe actions reported to the caller.
const (
	ActionSubscribed        = "subscribed"
	ActionAlreadySubscribed = "already_subscribed"
	ActionUnsubscribed      = "unsubscribed"
	ActionNotSubscribed     = "not_subscribed"
)

// SubscribeResult reports the outcome of a successful subscribe call.
// Amount is what the verified transaction actually moved.
type SubscribeResult struct {
	Action string          `json:"action"`
	Amount decimal.Decimal `json:"amount"`
}

// UnsubscribeResult reports pair removal. Absence is not an error.
type UnsubscribeResult struct {
	Action string `json:"action"`
}

// TipRequest carries one tip submission.
type TipRequest struct {
	TipperID      int64
	RecipientName string
	PostID        *int64
	Amount        decimal.Decimal
	Signature     string
}

// PaymentsService is the surface exposed to the HTTP layer.
type PaymentsService interface {
	Subscribe(ctx context.Context, subscriberID int64, targetName, signature string) (*SubscribeResult, error)
	Unsubscribe(ctx context.Context, subscriberID int64, targetName string) (*UnsubscribeResult, error)
	IsSubscribed(ctx context.Context, subscriberID int64, targetName string) (bool, error)
	Tip(ctx context.Context, req *TipRequest) (*PaymentRecord, error)

	PlatformStats(ctx context.Context) (*PlatformStats, error)
	AccountStats(ctx context.Context, name string) (*AccountStatsView, error)
	PostTips(ctx context.Context, postID int64) (*PostTipsView, error)
}
