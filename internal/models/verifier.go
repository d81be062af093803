package models

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// UnknownSender is recorded when the paying token account's owner could not
// be resolved. Sender resolution is best-effort and never fails a claim.
const UnknownSender = "unknown"

// TransferClaim is a caller's assertion that a signature pays at least
// MinAmount of the configured token to Recipient. Transient; never persisted.
type TransferClaim struct {
	Signature string
	// Recipient is the wallet address expected to own the destination
	// token account.
	Recipient solana.PublicKey
	// MinAmount is the least acceptable amount. Overpayment is accepted.
	MinAmount decimal.Decimal
}

// VerificationResult reports the first qualifying transfer found.
type VerificationResult struct {
	Amount decimal.Decimal
	Sender string
}

// TransferVerifier checks a claim against the chain. Failures are reported
// through the payment error taxonomy (ErrNotFoundOnChain,
// ErrTransactionFailedOnChain, ErrNoMatchingTransfer, ErrUpstreamUnavailable).
type TransferVerifier interface {
	Verify(ctx context.Context, claim TransferClaim) (*VerificationResult, error)
}
