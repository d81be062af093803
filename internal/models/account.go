package models

import "github.com/shopspring/decimal"

// Account represents a registered participant. Accounts are created and
// mutated by the registration service; this subsystem reads them only.
type Account struct {
	// ID is the unique identifier for the account.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// Name is the unique public handle of the account.
	Name string `json:"name" gorm:"column:name;unique;not null"`
	// WalletAddress is the base58 wallet address payments are sent to.
	WalletAddress string `json:"wallet_address" gorm:"column:wallet_address;size:64;not null"`
	// SubscriptionPrice is the token amount required to subscribe.
	// Zero means subscriptions are not offered.
	SubscriptionPrice decimal.Decimal `json:"subscription_price" gorm:"column:subscription_price;type:numeric(20,6);not null;default:0"`
	// CreatedAt is the unix timestamp of registration.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at"`
}

// Post is a content item tips may reference. Owned by the content service;
// only existence is checked here.
type Post struct {
	ID       int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	AuthorID int64 `json:"author_id" gorm:"column:author_id;index;not null"`
	// CreatedAt is the unix timestamp of publication.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at"`
}
