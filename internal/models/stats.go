package models

import "github.com/shopspring/decimal"

// PlatformStats are ledger-wide aggregates for the read API.
type PlatformStats struct {
	Accounts      int64           `json:"accounts"`
	Subscriptions int64           `json:"subscriptions"`
	Tips          int64           `json:"tips"`
	TipVolume     decimal.Decimal `json:"tip_volume"`
	FeeVolume     decimal.Decimal `json:"fee_volume"`
}

// AccountStatsView is the per-account read-API shape.
type AccountStatsView struct {
	Name            string          `json:"name"`
	SubscriberCount int64           `json:"subscriber_count"`
	TipCount        int64           `json:"tip_count"`
	TipVolume       decimal.Decimal `json:"tip_volume"`
}

// PostTipsView lists a content item's tips with its counters.
type PostTipsView struct {
	PostID    int64            `json:"post_id"`
	TipCount  int64            `json:"tip_count"`
	TipVolume decimal.Decimal  `json:"tip_volume"`
	Tips      []*PaymentRecord `json:"tips"`
}
