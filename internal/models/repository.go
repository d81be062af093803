package models

type Repository interface {
	Close() error

	// Read-only foreign-key data owned by other services.
	GetAccountByID(id int64) (*Account, error)
	GetAccountByName(name string) (*Account, error)
	PostExists(id int64) (bool, error)

	// RecordSubscription inserts the proof record (duplicate signature ->
	// ErrDuplicateTransaction) and conditionally creates the subscription
	// pair, incrementing the target's subscriber count only when the pair is
	// new. Returns whether the pair was created. Atomic.
	RecordSubscription(rec *PaymentRecord) (bool, error)

	// RemoveSubscription deletes the pair if present and decrements the
	// subscriber count with a floor of zero. Returns whether a pair existed.
	RemoveSubscription(subscriberID, targetID int64) (bool, error)

	IsSubscribed(subscriberID, targetID int64) (bool, error)

	// RecordTip inserts the tip record (duplicate signature ->
	// ErrDuplicateTransaction) and increments the recipient's (and, when
	// set, the post's) tip counters. Atomic.
	RecordTip(rec *PaymentRecord) error

	// FindPaymentBySignature is for duplicate-detection messaging only;
	// the conditional insert is the concurrency guard.
	FindPaymentBySignature(signature string) (*PaymentRecord, error)

	GetAccountStats(accountID int64) (*AccountStats, error)
	GetPostStats(postID int64) (*PostStats, error)
	GetPostTips(postID int64) ([]*PaymentRecord, error)
	GetPlatformStats() (*PlatformStats, error)
}
