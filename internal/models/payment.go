package models

import "github.com/shopspring/decimal"

// Payment record kinds. Subscription proofs and tips share one table so the
// signature primary key enforces global uniqueness across both.
const (
	PaymentKindSubscription = "subscription"
	PaymentKindTip          = "tip"
)

// PaymentRecord is a verified on-chain payment fact. Inserted exactly once
// per signature; never updated or deleted.
type PaymentRecord struct {
	// Signature is the transaction signature. Primary key: the conditional
	// insert on this column is the authoritative idempotency guard.
	Signature string `json:"signature" gorm:"column:signature;primaryKey;size:128"`
	// Kind is either PaymentKindSubscription or PaymentKindTip.
	Kind string `json:"kind" gorm:"column:kind;size:16;not null;index"`
	// PayerID is the subscriber or tipper account.
	PayerID int64 `json:"payer_id" gorm:"column:payer_id;not null;index"`
	// PayeeID is the subscription target or tip recipient account.
	PayeeID int64 `json:"payee_id" gorm:"column:payee_id;not null;index"`
	// PostID is the tipped content item, if any.
	PostID *int64 `json:"post_id,omitempty" gorm:"column:post_id;index"`
	// Amount is the full payment amount in token units.
	Amount decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(20,6);not null"`
	// FeeAmount is the platform fee share of Amount. Zero for subscriptions.
	FeeAmount decimal.Decimal `json:"fee_amount" gorm:"column:fee_amount;type:numeric(20,6);not null"`
	// SenderAddress is the resolved owner of the paying token account,
	// or "unknown" when resolution failed.
	SenderAddress string `json:"sender_address" gorm:"column:sender_address;size:64"`
	// CreatedAt is the unix timestamp the record was accepted.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at;index"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}

// Subscription is the (subscriber, target) relationship. Created by an
// accepted subscription payment, removed by unsubscribe; the proof record
// outlives the pair.
type Subscription struct {
	ID           int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	SubscriberID int64 `json:"subscriber_id" gorm:"column:subscriber_id;uniqueIndex:idx_subscription_pair;not null"`
	TargetID     int64 `json:"target_id" gorm:"column:target_id;uniqueIndex:idx_subscription_pair;not null"`
	CreatedAt    int64 `json:"created_at" gorm:"column:created_at"`
}

// AccountStats are derived per-account counters, mutated only by ledger
// operations in the same transaction as the record insert.
type AccountStats struct {
	AccountID       int64           `json:"account_id" gorm:"column:account_id;primaryKey"`
	SubscriberCount int64           `json:"subscriber_count" gorm:"column:subscriber_count;not null;default:0"`
	TipCount        int64           `json:"tip_count" gorm:"column:tip_count;not null;default:0"`
	TipVolume       decimal.Decimal `json:"tip_volume" gorm:"column:tip_volume;type:numeric(20,6);not null;default:0"`
}

func (AccountStats) TableName() string {
	return "account_stats"
}

// PostStats are derived per-content counters.
type PostStats struct {
	PostID    int64           `json:"post_id" gorm:"column:post_id;primaryKey"`
	TipCount  int64           `json:"tip_count" gorm:"column:tip_count;not null;default:0"`
	TipVolume decimal.Decimal `json:"tip_volume" gorm:"column:tip_volume;type:numeric(20,6);not null;default:0"`
}

func (PostStats) TableName() string {
	return "post_stats"
}
