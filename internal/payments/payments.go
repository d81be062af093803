package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pythocooks/onlyagents-backend/internal/chain"
	"github.com/pythocooks/onlyagents-backend/internal/metrics"
	"github.com/pythocooks/onlyagents-backend/internal/models"
	"github.com/pythocooks/onlyagents-backend/pkg/logger"
)

// Service orchestrates transfer verification and the payment ledger. It
// holds no persistent state of its own: uniqueness and counters live in the
// repository, verification truth lives on chain.
type Service struct {
	logger *logger.Logger

	repo     models.Repository
	verifier models.TransferVerifier
	chain    models.ChainService
	notifier models.NotificationService
	metrics  metrics.Recorder

	feeRate       decimal.Decimal
	verifyTimeout time.Duration
}

// NewService creates the payments service.
func NewService(
	repo models.Repository,
	verifier models.TransferVerifier,
	chainSvc models.ChainService,
	notifier models.NotificationService,
	recorder metrics.Recorder,
	feeRate decimal.Decimal,
	verifyTimeout time.Duration,
	logger *logger.Logger,
) models.PaymentsService {
	return &Service{
		logger:        logger,
		repo:          repo,
		verifier:      verifier,
		chain:         chainSvc,
		notifier:      notifier,
		metrics:       recorder,
		feeRate:       feeRate,
		verifyTimeout: verifyTimeout,
	}
}

// fetchSettledTransaction checks signature existence and non-failure only.
// The tipping flow trusts the deployed on-chain program to have performed
// the fee split; it does not re-derive amounts from instruction data.
func (s *Service) fetchSettledTransaction(ctx context.Context, signature string) (*chain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()

	tx, err := s.chain.FetchTransaction(ctx, signature)
	if err != nil {
		if errors.Is(err, chain.ErrTxNotFound) {
			return nil, models.ErrNotFoundOnChain
		}
		return nil, fmt.Errorf("%w: %s", models.ErrUpstreamUnavailable, err)
	}
	if tx.Failed {
		return nil, models.ErrTransactionFailedOnChain
	}
	return tx, nil
}

// notify is fire-and-forget; a slow ops channel must not hold up responses.
func (s *Service) notify(event *models.PaymentEvent) {
	if s.notifier == nil {
		return
	}
	go s.notifier.PaymentAccepted(event)
}
