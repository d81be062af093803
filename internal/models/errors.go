package models

import "errors"

// Payment error taxonomy. Every non-accepted outcome maps to exactly one of
// these so the HTTP layer can attach a stable machine-readable kind.
var (
	// ErrNotFoundOnChain means the claimed signature does not exist on chain.
	ErrNotFoundOnChain = errors.New("transaction not found on chain")
	// ErrTransactionFailedOnChain means the transaction exists but its
	// execution metadata reports an error.
	ErrTransactionFailedOnChain = errors.New("transaction failed on chain")
	// ErrNoMatchingTransfer means no instruction in the transaction moves
	// enough of the expected token to the expected recipient.
	ErrNoMatchingTransfer = errors.New("no matching transfer in transaction")
	// ErrDuplicateTransaction means the signature was already recorded.
	ErrDuplicateTransaction = errors.New("transaction already recorded")
	// ErrSelfReferential means payer and payee are the same account.
	ErrSelfReferential = errors.New("account cannot pay itself")
	// ErrResourceMissing means a referenced content item does not exist.
	ErrResourceMissing = errors.New("referenced resource does not exist")
	// ErrBadRequest covers non-positive amounts and unpriced targets.
	ErrBadRequest = errors.New("bad request")
	// ErrUpstreamUnavailable means the chain node timed out or misbehaved.
	// Retryable; everything else is terminal for the signature.
	ErrUpstreamUnavailable = errors.New("chain node unavailable")
	// ErrNotFound means an account or record lookup came up empty.
	ErrNotFound = errors.New("not found")
)

// ErrorKind returns the stable machine-readable kind for a payment error,
// or "internal" for anything outside the taxonomy.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFoundOnChain):
		return "not_found_on_chain"
	case errors.Is(err, ErrTransactionFailedOnChain):
		return "transaction_failed_on_chain"
	case errors.Is(err, ErrNoMatchingTransfer):
		return "no_matching_transfer"
	case errors.Is(err, ErrDuplicateTransaction):
		return "duplicate_transaction"
	case errors.Is(err, ErrSelfReferential):
		return "self_referential"
	case errors.Is(err, ErrResourceMissing):
		return "referenced_resource_missing"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
