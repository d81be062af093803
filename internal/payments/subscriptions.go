package payments

import (
	"context"
	"time"

	"github.com/pythocooks/onlyagents-backend/internal/models"
	"github.com/pythocooks/onlyagents-backend/pkg/validation"
)

// Subscribe verifies the payment and establishes the subscription pair.
// Two concurrent calls for the same pair with distinct valid signatures both
// get their proofs recorded, but only the first pair insert increments the
// subscriber count; the loser reports already_subscribed.
func (s *Service) Subscribe(ctx context.Context, subscriberID int64, targetName, signature string) (*models.SubscribeResult, error) {
	subscriber, err := s.repo.GetAccountByID(subscriberID)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.GetAccountByName(targetName)
	if err != nil {
		return nil, err
	}

	if subscriber.ID == target.ID {
		return nil, models.ErrSelfReferential
	}
	// Nothing to pay: no verification is attempted.
	if !target.SubscriptionPrice.IsPositive() {
		return nil, models.ErrBadRequest
	}
	if err := validation.ValidateAddress(target.WalletAddress); err != nil {
		s.logger.Error("Target has an invalid wallet address ", "account ", target.Name, " error ", err)
		return nil, models.ErrBadRequest
	}

	start := time.Now()
	result, err := s.verifier.Verify(ctx, models.TransferClaim{
		Signature: signature,
		Recipient: validation.MustPublicKey(target.WalletAddress),
		MinAmount: target.SubscriptionPrice,
	})
	s.metrics.ObserveLatency("verify", time.Since(start), map[string]string{"kind": models.PaymentKindSubscription})
	if err != nil {
		s.metrics.IncCounter("verification_rejected", map[string]string{"kind": models.ErrorKind(err)})
		return nil, err
	}

	rec := &models.PaymentRecord{
		Signature:     signature,
		Kind:          models.PaymentKindSubscription,
		PayerID:       subscriber.ID,
		PayeeID:       target.ID,
		Amount:        result.Amount,
		SenderAddress: result.Sender,
		CreatedAt:     time.Now().Unix(),
	}
	pairCreated, err := s.repo.RecordSubscription(rec)
	if err != nil {
		return nil, err
	}

	action := models.ActionAlreadySubscribed
	if pairCreated {
		action = models.ActionSubscribed
	}

	s.logger.Info("Subscription payment recorded ", "subscriber ", subscriber.Name, " target ", target.Name, " action ", action, " amount ", result.Amount)
	s.metrics.IncCounter("payments_recorded", map[string]string{"kind": models.PaymentKindSubscription})
	s.notify(&models.PaymentEvent{
		Kind:      models.PaymentKindSubscription,
		Payer:     subscriber.Name,
		Payee:     target.Name,
		Amount:    result.Amount,
		Signature: signature,
	})

	return &models.SubscribeResult{Action: action, Amount: result.Amount}, nil
}

// IsSubscribed reports whether the pair currently exists.
func (s *Service) IsSubscribed(ctx context.Context, subscriberID int64, targetName string) (bool, error) {
	subscriber, err := s.repo.GetAccountByID(subscriberID)
	if err != nil {
		return false, err
	}
	target, err := s.repo.GetAccountByName(targetName)
	if err != nil {
		return false, err
	}

	return s.repo.IsSubscribed(subscriber.ID, target.ID)
}

// Unsubscribe removes the pair if present. Absence is reported, not an error.
func (s *Service) Unsubscribe(ctx context.Context, subscriberID int64, targetName string) (*models.UnsubscribeResult, error) {
	subscriber, err := s.repo.GetAccountByID(subscriberID)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.GetAccountByName(targetName)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.RemoveSubscription(subscriber.ID, target.ID)
	if err != nil {
		return nil, err
	}

	action := models.ActionNotSubscribed
	if removed {
		action = models.ActionUnsubscribed
		s.logger.Info("Subscription removed ", "subscriber ", subscriber.Name, " target ", target.Name)
	}

	return &models.UnsubscribeResult{Action: action}, nil
}
