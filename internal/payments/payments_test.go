package payments

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythocooks/onlyagents-backend/internal/chain"
	"github.com/pythocooks/onlyagents-backend/internal/metrics"
	"github.com/pythocooks/onlyagents-backend/internal/models"
	"github.com/pythocooks/onlyagents-backend/internal/notificator"
	"github.com/pythocooks/onlyagents-backend/pkg/logger"
)

type fakeRepo struct {
	accounts map[int64]*models.Account

	recordSubscription func(rec *models.PaymentRecord) (bool, error)
	removeSubscription func(subscriberID, targetID int64) (bool, error)
	isSubscribed       func(subscriberID, targetID int64) (bool, error)
	recordTip          func(rec *models.PaymentRecord) error
	postExists         func(id int64) (bool, error)
}

func (f *fakeRepo) Close() error { return nil }

func (f *fakeRepo) GetAccountByID(id int64) (*models.Account, error) {
	if acc, ok := f.accounts[id]; ok {
		return acc, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) GetAccountByName(name string) (*models.Account, error) {
	for _, acc := range f.accounts {
		if acc.Name == name {
			return acc, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) PostExists(id int64) (bool, error) {
	if f.postExists != nil {
		return f.postExists(id)
	}
	return true, nil
}

func (f *fakeRepo) RecordSubscription(rec *models.PaymentRecord) (bool, error) {
	if f.recordSubscription != nil {
		return f.recordSubscription(rec)
	}
	return true, nil
}

func (f *fakeRepo) RemoveSubscription(subscriberID, targetID int64) (bool, error) {
	if f.removeSubscription != nil {
		return f.removeSubscription(subscriberID, targetID)
	}
	return true, nil
}

func (f *fakeRepo) IsSubscribed(subscriberID, targetID int64) (bool, error) {
	if f.isSubscribed != nil {
		return f.isSubscribed(subscriberID, targetID)
	}
	return false, nil
}

func (f *fakeRepo) RecordTip(rec *models.PaymentRecord) error {
	if f.recordTip != nil {
		return f.recordTip(rec)
	}
	return nil
}

func (f *fakeRepo) FindPaymentBySignature(signature string) (*models.PaymentRecord, error) {
	return nil, models.ErrNotFound
}

func (f *fakeRepo) GetAccountStats(accountID int64) (*models.AccountStats, error) {
	return &models.AccountStats{AccountID: accountID}, nil
}

func (f *fakeRepo) GetPostStats(postID int64) (*models.PostStats, error) {
	return &models.PostStats{PostID: postID}, nil
}

func (f *fakeRepo) GetPostTips(postID int64) ([]*models.PaymentRecord, error) { return nil, nil }

func (f *fakeRepo) GetPlatformStats() (*models.PlatformStats, error) {
	return &models.PlatformStats{}, nil
}

type fakeVerifier struct {
	called bool
	result *models.VerificationResult
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, claim models.TransferClaim) (*models.VerificationResult, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeChainService struct {
	tx  *chain.Transaction
	err error
}

func (f *fakeChainService) FetchTransaction(ctx context.Context, signature string) (*chain.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func (f *fakeChainService) FetchTokenAccount(ctx context.Context, address solana.PublicKey) (*chain.TokenAccount, error) {
	return nil, chain.ErrAccountNotFound
}

func walletAddr(b byte) string {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{b}, 32)).String()
}

func testAccounts() map[int64]*models.Account {
	return map[int64]*models.Account{
		1: {ID: 1, Name: "alice", WalletAddress: walletAddr(1), SubscriptionPrice: decimal.NewFromInt(5)},
		2: {ID: 2, Name: "bob", WalletAddress: walletAddr(2), SubscriptionPrice: decimal.NewFromInt(10)},
		3: {ID: 3, Name: "carol", WalletAddress: walletAddr(3)}, // no price configured
	}
}

func newTestService(repo *fakeRepo, v *fakeVerifier, cs *fakeChainService) models.PaymentsService {
	log := logger.NewNopLogger()
	return NewService(
		repo,
		v,
		cs,
		notificator.NewNotificator(log, nil),
		metrics.NoopRecorder{},
		decimal.RequireFromString("0.10"),
		2*time.Second,
		log,
	)
}

func settledTx() *chain.Transaction {
	return &chain.Transaction{FeePayer: solana.PublicKeyFromBytes(bytes.Repeat([]byte{9}, 32))}
}

func TestSubscribe(t *testing.T) {
	var recorded *models.PaymentRecord
	repo := &fakeRepo{
		accounts: testAccounts(),
		recordSubscription: func(rec *models.PaymentRecord) (bool, error) {
			recorded = rec
			return true, nil
		},
	}
	v := &fakeVerifier{result: &models.VerificationResult{Amount: decimal.NewFromInt(10), Sender: walletAddr(1)}}

	result, err := newTestService(repo, v, &fakeChainService{}).Subscribe(context.Background(), 1, "bob", "sig-1")
	require.NoError(t, err)
	assert.Equal(t, models.ActionSubscribed, result.Action)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(10)))

	require.NotNil(t, recorded)
	assert.Equal(t, models.PaymentKindSubscription, recorded.Kind)
	assert.Equal(t, int64(1), recorded.PayerID)
	assert.Equal(t, int64(2), recorded.PayeeID)
	assert.Equal(t, walletAddr(1), recorded.SenderAddress)
}

func TestSubscribeAlreadySubscribed(t *testing.T) {
	repo := &fakeRepo{
		accounts: testAccounts(),
		recordSubscription: func(rec *models.PaymentRecord) (bool, error) {
			// A second valid payment for an existing pair: the proof is
			// stored but the pair insert is a no-op.
			return false, nil
		},
	}
	v := &fakeVerifier{result: &models.VerificationResult{Amount: decimal.NewFromInt(10), Sender: models.UnknownSender}}

	result, err := newTestService(repo, v, &fakeChainService{}).Subscribe(context.Background(), 1, "bob", "sig-2")
	require.NoError(t, err)
	assert.Equal(t, models.ActionAlreadySubscribed, result.Action)
}

func TestSubscribeSelfReferential(t *testing.T) {
	v := &fakeVerifier{}
	_, err := newTestService(&fakeRepo{accounts: testAccounts()}, v, &fakeChainService{}).
		Subscribe(context.Background(), 1, "alice", "sig-3")
	assert.ErrorIs(t, err, models.ErrSelfReferential)
	assert.False(t, v.called)
}

func TestSubscribeNoPriceConfigured(t *testing.T) {
	v := &fakeVerifier{}
	_, err := newTestService(&fakeRepo{accounts: testAccounts()}, v, &fakeChainService{}).
		Subscribe(context.Background(), 1, "carol", "sig-4")
	assert.ErrorIs(t, err, models.ErrBadRequest)
	// Nothing to pay: no verification attempted.
	assert.False(t, v.called)
}

func TestSubscribeUnknownTarget(t *testing.T) {
	_, err := newTestService(&fakeRepo{accounts: testAccounts()}, &fakeVerifier{}, &fakeChainService{}).
		Subscribe(context.Background(), 1, "nobody", "sig-5")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSubscribeDuplicateSignature(t *testing.T) {
	repo := &fakeRepo{
		accounts: testAccounts(),
		recordSubscription: func(rec *models.PaymentRecord) (bool, error) {
			return false, models.ErrDuplicateTransaction
		},
	}
	v := &fakeVerifier{result: &models.VerificationResult{Amount: decimal.NewFromInt(10), Sender: models.UnknownSender}}

	_, err := newTestService(repo, v, &fakeChainService{}).Subscribe(context.Background(), 1, "bob", "sig-6")
	assert.ErrorIs(t, err, models.ErrDuplicateTransaction)
}

func TestSubscribeVerificationFailurePropagates(t *testing.T) {
	v := &fakeVerifier{err: models.ErrNoMatchingTransfer}
	_, err := newTestService(&fakeRepo{accounts: testAccounts()}, v, &fakeChainService{}).
		Subscribe(context.Background(), 1, "bob", "sig-7")
	assert.ErrorIs(t, err, models.ErrNoMatchingTransfer)
}

func TestUnsubscribe(t *testing.T) {
	repo := &fakeRepo{
		accounts: testAccounts(),
		removeSubscription: func(subscriberID, targetID int64) (bool, error) {
			assert.Equal(t, int64(1), subscriberID)
			assert.Equal(t, int64(2), targetID)
			return true, nil
		},
	}

	result, err := newTestService(repo, &fakeVerifier{}, &fakeChainService{}).
		Unsubscribe(context.Background(), 1, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.ActionUnsubscribed, result.Action)
}

func TestUnsubscribeNotSubscribed(t *testing.T) {
	repo := &fakeRepo{
		accounts: testAccounts(),
		removeSubscription: func(subscriberID, targetID int64) (bool, error) {
			return false, nil
		},
	}

	result, err := newTestService(repo, &fakeVerifier{}, &fakeChainService{}).
		Unsubscribe(context.Background(), 1, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.ActionNotSubscribed, result.Action)
}

func TestIsSubscribed(t *testing.T) {
	repo := &fakeRepo{
		accounts: testAccounts(),
		isSubscribed: func(subscriberID, targetID int64) (bool, error) {
			assert.Equal(t, int64(1), subscriberID)
			assert.Equal(t, int64(2), targetID)
			return true, nil
		},
	}

	subscribed, err := newTestService(repo, &fakeVerifier{}, &fakeChainService{}).
		IsSubscribed(context.Background(), 1, "bob")
	require.NoError(t, err)
	assert.True(t, subscribed)
}

func TestIsSubscribedUnknownTarget(t *testing.T) {
	repo := &fakeRepo{accounts: testAccounts()}

	_, err := newTestService(repo, &fakeVerifier{}, &fakeChainService{}).
		IsSubscribed(context.Background(), 1, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTipFeeDeterminism(t *testing.T) {
	for _, tc := range []struct {
		amount string
		fee    string
	}{
		{"100", "10.000000"},
		{"250", "25.000000"},
		{"0.01", "0.001000"},
	} {
		var recorded *models.PaymentRecord
		repo := &fakeRepo{
			accounts: testAccounts(),
			recordTip: func(rec *models.PaymentRecord) error {
				recorded = rec
				return nil
			},
		}

		rec, err := newTestService(repo, &fakeVerifier{}, &fakeChainService{tx: settledTx()}).
			Tip(context.Background(), &models.TipRequest{
				TipperID:      1,
				RecipientName: "bob",
				Amount:        decimal.RequireFromString(tc.amount),
				Signature:     "sig-tip-" + tc.amount,
			})
		require.NoError(t, err)
		assert.Equal(t, tc.fee, rec.FeeAmount.StringFixed(6), "amount %s", tc.amount)
		assert.Same(t, rec, recorded)
	}
}

func TestTipSelfReferential(t *testing.T) {
	_, err := newTestService(&fakeRepo{accounts: testAccounts()}, &fakeVerifier{}, &fakeChainService{tx: settledTx()}).
		Tip(context.Background(), &models.TipRequest{
			TipperID:      2,
			RecipientName: "bob",
			Amount:        decimal.NewFromInt(1),
			Signature:     "sig-self",
		})
	assert.ErrorIs(t, err, models.ErrSelfReferential)
}

func TestTipNonPositiveAmount(t *testing.T) {
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := newTestService(&fakeRepo{accounts: testAccounts()}, &fakeVerifier{}, &fakeChainService{tx: settledTx()}).
			Tip(context.Background(), &models.TipRequest{
				TipperID:      1,
				RecipientName: "bob",
				Amount:        amount,
				Signature:     "sig-zero",
			})
		assert.ErrorIs(t, err, models.ErrBadRequest)
	}
}

func TestTipMissingPost(t *testing.T) {
	postID := int64(42)
	repo := &fakeRepo{
		accounts:   testAccounts(),
		postExists: func(id int64) (bool, error) { return false, nil },
	}

	_, err := newTestService(repo, &fakeVerifier{}, &fakeChainService{tx: settledTx()}).
		Tip(context.Background(), &models.TipRequest{
			TipperID:      1,
			RecipientName: "bob",
			PostID:        &postID,
			Amount:        decimal.NewFromInt(1),
			Signature:     "sig-post",
		})
	assert.ErrorIs(t, err, models.ErrResourceMissing)
}

func TestTipNotFoundOnChain(t *testing.T) {
	_, err := newTestService(&fakeRepo{accounts: testAccounts()}, &fakeVerifier{}, &fakeChainService{err: chain.ErrTxNotFound}).
		Tip(context.Background(), &models.TipRequest{
			TipperID:      1,
			RecipientName: "bob",
			Amount:        decimal.NewFromInt(1),
			Signature:     "sig-missing",
		})
	assert.ErrorIs(t, err, models.ErrNotFoundOnChain)
}

func TestTipFailedOnChain(t *testing.T) {
	_, err := newTestService(&fakeRepo{accounts: testAccounts()}, &fakeVerifier{}, &fakeChainService{tx: &chain.Transaction{Failed: true}}).
		Tip(context.Background(), &models.TipRequest{
			TipperID:      1,
			RecipientName: "bob",
			Amount:        decimal.NewFromInt(1),
			Signature:     "sig-failed",
		})
	assert.ErrorIs(t, err, models.ErrTransactionFailedOnChain)
}

func TestTipDuplicateSignature(t *testing.T) {
	repo := &fakeRepo{
		accounts:  testAccounts(),
		recordTip: func(rec *models.PaymentRecord) error { return models.ErrDuplicateTransaction },
	}

	_, err := newTestService(repo, &fakeVerifier{}, &fakeChainService{tx: settledTx()}).
		Tip(context.Background(), &models.TipRequest{
			TipperID:      1,
			RecipientName: "bob",
			Amount:        decimal.NewFromInt(1),
			Signature:     "sig-dup",
		})
	assert.ErrorIs(t, err, models.ErrDuplicateTransaction)
}

func TestTipRecordsFeePayerAsSender(t *testing.T) {
	tx := settledTx()
	repo := &fakeRepo{accounts: testAccounts()}

	rec, err := newTestService(repo, &fakeVerifier{}, &fakeChainService{tx: tx}).
		Tip(context.Background(), &models.TipRequest{
			TipperID:      1,
			RecipientName: "bob",
			Amount:        decimal.NewFromInt(3),
			Signature:     "sig-sender",
		})
	require.NoError(t, err)
	assert.Equal(t, tx.FeePayer.String(), rec.SenderAddress)
}
