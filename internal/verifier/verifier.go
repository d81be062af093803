package verifier

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/pythocooks/onlyagents-backend/internal/chain"
	"github.com/pythocooks/onlyagents-backend/internal/models"
	"github.com/pythocooks/onlyagents-backend/pkg/logger"
)

// Verifier scans a claimed transaction for a qualifying transfer of the
// configured token. The first qualifying instruction in execution order
// wins; scanning does not continue looking for a larger match.
type Verifier struct {
	logger *logger.Logger

	chain    models.ChainService
	mint     solana.PublicKey
	decimals int32
	timeout  time.Duration
}

// NewVerifier creates a Verifier for one token mint.
func NewVerifier(chainSvc models.ChainService, mint solana.PublicKey, decimals int32, timeout time.Duration, logger *logger.Logger) *Verifier {
	return &Verifier{
		logger:   logger,
		chain:    chainSvc,
		mint:     mint,
		decimals: decimals,
		timeout:  timeout,
	}
}

var _ models.TransferVerifier = (*Verifier)(nil)

// Verify checks the claim against the chain. Resolution failures for
// individual candidate instructions are swallowed and scanning continues;
// only transaction-level failures surface as errors.
func (v *Verifier) Verify(ctx context.Context, claim models.TransferClaim) (*models.VerificationResult, error) {
	// One to three sequential round trips happen below; bound them all.
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	tx, err := v.chain.FetchTransaction(ctx, claim.Signature)
	if err != nil {
		if errors.Is(err, chain.ErrTxNotFound) {
			return nil, models.ErrNotFoundOnChain
		}
		return nil, fmt.Errorf("%w: %s", models.ErrUpstreamUnavailable, err)
	}
	if tx.Failed {
		return nil, models.ErrTransactionFailedOnChain
	}

	for _, in := range tx.Instructions {
		var matched bool
		switch in.Kind {
		case chain.KindTransfer:
			matched = v.plainTransferQualifies(ctx, in, claim)
		case chain.KindTransferChecked:
			matched = v.checkedTransferQualifies(ctx, in, claim)
		default:
			continue
		}

		if matched {
			return &models.VerificationResult{
				Amount: v.toDecimal(in.RawAmount),
				Sender: v.resolveSender(ctx, in.Source),
			}, nil
		}

		// A candidate that failed because the deadline passed is not a
		// verification verdict.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", models.ErrUpstreamUnavailable, ctx.Err())
		}
	}

	return nil, models.ErrNoMatchingTransfer
}

// plainTransferQualifies resolves the destination account to learn both its
// mint and its owner, since a plain transfer names neither.
func (v *Verifier) plainTransferQualifies(ctx context.Context, in chain.Instruction, claim models.TransferClaim) bool {
	acct, err := v.chain.FetchTokenAccount(ctx, in.Destination)
	if err != nil {
		v.logger.Debug("Skipping candidate, destination unresolved ", "account ", in.Destination.String(), " error ", err)
		return false
	}
	if !acct.Mint.Equals(v.mint) {
		return false
	}
	if !acct.Owner.Equals(claim.Recipient) {
		return false
	}
	return v.toDecimal(in.RawAmount).GreaterThanOrEqual(claim.MinAmount)
}

// checkedTransferQualifies trusts the mint named on the instruction and only
// resolves the destination's owner.
func (v *Verifier) checkedTransferQualifies(ctx context.Context, in chain.Instruction, claim models.TransferClaim) bool {
	if !in.Mint.Equals(v.mint) {
		return false
	}
	acct, err := v.chain.FetchTokenAccount(ctx, in.Destination)
	if err != nil {
		v.logger.Debug("Skipping candidate, destination unresolved ", "account ", in.Destination.String(), " error ", err)
		return false
	}
	if !acct.Owner.Equals(claim.Recipient) {
		return false
	}
	return v.toDecimal(in.RawAmount).GreaterThanOrEqual(claim.MinAmount)
}

// resolveSender is best-effort: the payment already qualified, so a failed
// owner lookup reports the unresolved sentinel instead of failing the claim.
func (v *Verifier) resolveSender(ctx context.Context, source solana.PublicKey) string {
	acct, err := v.chain.FetchTokenAccount(ctx, source)
	if err != nil {
		v.logger.Debug("Sender unresolved ", "account ", source.String(), " error ", err)
		return models.UnknownSender
	}
	return acct.Owner.String()
}

func (v *Verifier) toDecimal(raw uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -v.decimals)
}
