package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/pythocooks/onlyagents-backend/internal/models"
	"github.com/pythocooks/onlyagents-backend/pkg/logger"
)

func newMockDB(t *testing.T) (*PostgresDB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:               gormLogger.Default.LogMode(gormLogger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	return &PostgresDB{Conn: gdb, logger: logger.NewNopLogger()}, mock
}

func tipRecord(postID *int64) *models.PaymentRecord {
	return &models.PaymentRecord{
		Signature:     "sig-tip",
		Kind:          models.PaymentKindTip,
		PayerID:       1,
		PayeeID:       2,
		PostID:        postID,
		Amount:        decimal.NewFromInt(250),
		FeeAmount:     decimal.RequireFromString("25.000000"),
		SenderAddress: "sender",
		CreatedAt:     1700000000,
	}
}

func TestRecordTipInsertsAndBumpsCounters(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "payment_records"`).WillReturnResult(sqlmock.NewResult(0, 1))
	// Counter columns carry defaults, so the upsert comes back as a query
	// with a RETURNING clause.
	mock.ExpectQuery(`INSERT INTO "account_stats"`).
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(int64(2)))
	mock.ExpectCommit()

	require.NoError(t, db.RecordTip(tipRecord(nil)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTipBumpsPostCounters(t *testing.T) {
	db, mock := newMockDB(t)
	postID := int64(7)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "payment_records"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "account_stats"`).
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(int64(2)))
	mock.ExpectQuery(`INSERT INTO "post_stats"`).
		WillReturnRows(sqlmock.NewRows([]string{"post_id"}).AddRow(postID))
	mock.ExpectCommit()

	require.NoError(t, db.RecordTip(tipRecord(&postID)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTipDuplicateSignature(t *testing.T) {
	db, mock := newMockDB(t)

	// Conditional insert hits the existing signature: zero rows affected,
	// no counter update, transaction rolled back.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "payment_records"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := db.RecordTip(tipRecord(nil))
	assert.ErrorIs(t, err, models.ErrDuplicateTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func subscriptionRecord() *models.PaymentRecord {
	return &models.PaymentRecord{
		Signature:     "sig-sub",
		Kind:          models.PaymentKindSubscription,
		PayerID:       1,
		PayeeID:       2,
		Amount:        decimal.NewFromInt(10),
		SenderAddress: "sender",
		CreatedAt:     1700000000,
	}
}

func TestRecordSubscriptionNewPair(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "payment_records"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "subscriptions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`INSERT INTO "account_stats"`).
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(int64(2)))
	mock.ExpectCommit()

	pairCreated, err := db.RecordSubscription(subscriptionRecord())
	require.NoError(t, err)
	assert.True(t, pairCreated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSubscriptionExistingPair(t *testing.T) {
	db, mock := newMockDB(t)

	// The pair insert is a no-op; the proof still commits but the
	// subscriber count must not move.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "payment_records"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "subscriptions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	pairCreated, err := db.RecordSubscription(subscriptionRecord())
	require.NoError(t, err)
	assert.False(t, pairCreated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSubscriptionDuplicateSignature(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "payment_records"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := db.RecordSubscription(subscriptionRecord())
	assert.ErrorIs(t, err, models.ErrDuplicateTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsSubscribed(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subscriber_id", "target_id"}).AddRow(int64(1), int64(1), int64(2)))

	subscribed, err := db.IsSubscribed(1, 2)
	require.NoError(t, err)
	assert.True(t, subscribed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsSubscribedAbsentPair(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subscriber_id", "target_id"}))

	subscribed, err := db.IsSubscribed(1, 2)
	require.NoError(t, err)
	assert.False(t, subscribed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveSubscription(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "subscriptions"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "account_stats"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removed, err := db.RemoveSubscription(1, 2)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveSubscriptionAbsentPair(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "subscriptions"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	removed, err := db.RemoveSubscription(1, 2)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
