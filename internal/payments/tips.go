package payments

import (
	"context"
	"time"

	"github.com/pythocooks/onlyagents-backend/internal/models"
)

// Tip records a one-off transfer from tipper to recipient, optionally tied
// to a post. The fee is recomputed deterministically from the configured
// rate; the on-chain split itself is trusted, not re-derived.
func (s *Service) Tip(ctx context.Context, req *models.TipRequest) (*models.PaymentRecord, error) {
	if !req.Amount.IsPositive() {
		return nil, models.ErrBadRequest
	}

	tipper, err := s.repo.GetAccountByID(req.TipperID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.repo.GetAccountByName(req.RecipientName)
	if err != nil {
		return nil, err
	}
	if tipper.ID == recipient.ID {
		return nil, models.ErrSelfReferential
	}

	if req.PostID != nil {
		exists, err := s.repo.PostExists(*req.PostID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, models.ErrResourceMissing
		}
	}

	feeAmount := req.Amount.Mul(s.feeRate).Round(6)

	start := time.Now()
	tx, err := s.fetchSettledTransaction(ctx, req.Signature)
	s.metrics.ObserveLatency("verify", time.Since(start), map[string]string{"kind": models.PaymentKindTip})
	if err != nil {
		s.metrics.IncCounter("verification_rejected", map[string]string{"kind": models.ErrorKind(err)})
		return nil, err
	}

	rec := &models.PaymentRecord{
		Signature:     req.Signature,
		Kind:          models.PaymentKindTip,
		PayerID:       tipper.ID,
		PayeeID:       recipient.ID,
		PostID:        req.PostID,
		Amount:        req.Amount,
		FeeAmount:     feeAmount,
		SenderAddress: tx.FeePayer.String(),
		CreatedAt:     time.Now().Unix(),
	}
	if err := s.repo.RecordTip(rec); err != nil {
		return nil, err
	}

	s.logger.Info("Tip recorded ", "tipper ", tipper.Name, " recipient ", recipient.Name, " amount ", req.Amount, " fee ", feeAmount)
	s.metrics.IncCounter("payments_recorded", map[string]string{"kind": models.PaymentKindTip})
	s.notify(&models.PaymentEvent{
		Kind:      models.PaymentKindTip,
		Payer:     tipper.Name,
		Payee:     recipient.Name,
		Amount:    req.Amount,
		Signature: req.Signature,
	})

	return rec, nil
}
