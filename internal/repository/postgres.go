package repository

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/pythocooks/onlyagents-backend/internal/models"
	"github.com/pythocooks/onlyagents-backend/pkg/logger"
)

type PostgresDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (models.Repository, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Configure GORM logger to suppress "record not found" messages
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %s", err)
	}

	if err := db.AutoMigrate(
		&models.Account{},
		&models.Post{},
		&models.PaymentRecord{},
		&models.Subscription{},
		&models.AccountStats{},
		&models.PostStats{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return &PostgresDB{Conn: db, logger: logger}, nil
}

func (db *PostgresDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}

func (db *PostgresDB) GetAccountByID(id int64) (*models.Account, error) {
	var account models.Account
	if err := db.Conn.Where("id = ?", id).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %s", err)
	}

	return &account, nil
}

func (db *PostgresDB) GetAccountByName(name string) (*models.Account, error) {
	var account models.Account
	if err := db.Conn.Where("name = ?", name).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by name: %s", err)
	}

	return &account, nil
}

func (db *PostgresDB) PostExists(id int64) (bool, error) {
	var post models.Post
	if err := db.Conn.Where("id = ?", id).First(&post).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if post exists: %s", err)
	}

	return true, nil
}

// RecordSubscription inserts the proof and the subscription pair in one
// transaction. Both inserts are conditional: the storage layer, not an
// application-level existence check, resolves concurrent duplicates.
func (db *PostgresDB) RecordSubscription(rec *models.PaymentRecord) (bool, error) {
	pairCreated := false
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "signature"}},
			DoNothing: true,
		}).Create(rec)
		if res.Error != nil {
			return fmt.Errorf("failed to insert subscription proof: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.ErrDuplicateTransaction
		}

		pair := models.Subscription{
			SubscriberID: rec.PayerID,
			TargetID:     rec.PayeeID,
			CreatedAt:    rec.CreatedAt,
		}
		res = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subscriber_id"}, {Name: "target_id"}},
			DoNothing: true,
		}).Create(&pair)
		if res.Error != nil {
			return fmt.Errorf("failed to insert subscription pair: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Already subscribed. The proof stays recorded; the counter
			// must not move a second time.
			return nil
		}
		pairCreated = true

		return bumpAccountStats(tx, rec.PayeeID, 1, 0, decimal.Zero)
	})
	if err != nil {
		return false, err
	}
	return pairCreated, nil
}

func (db *PostgresDB) RemoveSubscription(subscriberID, targetID int64) (bool, error) {
	removed := false
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("subscriber_id = ? AND target_id = ?", subscriberID, targetID).Delete(&models.Subscription{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete subscription pair: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true

		return tx.Model(&models.AccountStats{}).
			Where("account_id = ?", targetID).
			UpdateColumn("subscriber_count", gorm.Expr("GREATEST(subscriber_count - 1, 0)")).Error
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (db *PostgresDB) IsSubscribed(subscriberID, targetID int64) (bool, error) {
	var pair models.Subscription
	if err := db.Conn.Where("subscriber_id = ? AND target_id = ?", subscriberID, targetID).First(&pair).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check subscription: %s", err)
	}

	return true, nil
}

// RecordTip inserts the tip and bumps the recipient's (and, when set, the
// post's) counters atomically.
func (db *PostgresDB) RecordTip(rec *models.PaymentRecord) error {
	return db.Conn.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "signature"}},
			DoNothing: true,
		}).Create(rec)
		if res.Error != nil {
			return fmt.Errorf("failed to insert tip record: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.ErrDuplicateTransaction
		}

		if err := bumpAccountStats(tx, rec.PayeeID, 0, 1, rec.Amount); err != nil {
			return err
		}

		if rec.PostID != nil {
			return bumpPostStats(tx, *rec.PostID, rec.Amount)
		}
		return nil
	})
}

func (db *PostgresDB) FindPaymentBySignature(signature string) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	if err := db.Conn.Where("signature = ?", signature).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment record: %s", err)
	}

	return &rec, nil
}

func (db *PostgresDB) GetAccountStats(accountID int64) (*models.AccountStats, error) {
	var stats models.AccountStats
	if err := db.Conn.Where("account_id = ?", accountID).First(&stats).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// No payments yet: all counters zero.
			return &models.AccountStats{AccountID: accountID}, nil
		}
		return nil, fmt.Errorf("failed to get account stats: %s", err)
	}

	return &stats, nil
}

func (db *PostgresDB) GetPostStats(postID int64) (*models.PostStats, error) {
	var stats models.PostStats
	if err := db.Conn.Where("post_id = ?", postID).First(&stats).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.PostStats{PostID: postID}, nil
		}
		return nil, fmt.Errorf("failed to get post stats: %s", err)
	}

	return &stats, nil
}

func (db *PostgresDB) GetPostTips(postID int64) ([]*models.PaymentRecord, error) {
	var tips []*models.PaymentRecord
	if err := db.Conn.Where("post_id = ? AND kind = ?", postID, models.PaymentKindTip).
		Order("created_at DESC").
		Find(&tips).Error; err != nil {
		return nil, fmt.Errorf("failed to get post tips: %s", err)
	}

	return tips, nil
}

func (db *PostgresDB) GetPlatformStats() (*models.PlatformStats, error) {
	stats := &models.PlatformStats{}

	if err := db.Conn.Model(&models.Account{}).Count(&stats.Accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count accounts: %s", err)
	}
	if err := db.Conn.Model(&models.Subscription{}).Count(&stats.Subscriptions).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %s", err)
	}
	if err := db.Conn.Model(&models.PaymentRecord{}).
		Where("kind = ?", models.PaymentKindTip).
		Count(&stats.Tips).Error; err != nil {
		return nil, fmt.Errorf("failed to count tips: %s", err)
	}

	row := db.Conn.Model(&models.PaymentRecord{}).
		Where("kind = ?", models.PaymentKindTip).
		Select("COALESCE(SUM(amount), 0), COALESCE(SUM(fee_amount), 0)").
		Row()
	if err := row.Scan(&stats.TipVolume, &stats.FeeVolume); err != nil {
		return nil, fmt.Errorf("failed to sum tip volume: %s", err)
	}

	return stats, nil
}

func bumpAccountStats(tx *gorm.DB, accountID, subscribers, tips int64, volume decimal.Decimal) error {
	stats := models.AccountStats{
		AccountID:       accountID,
		SubscriberCount: subscribers,
		TipCount:        tips,
		TipVolume:       volume,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"subscriber_count": gorm.Expr("account_stats.subscriber_count + ?", subscribers),
			"tip_count":        gorm.Expr("account_stats.tip_count + ?", tips),
			"tip_volume":       gorm.Expr("account_stats.tip_volume + ?", volume),
		}),
	}).Create(&stats).Error
	if err != nil {
		return fmt.Errorf("failed to update account stats: %w", err)
	}
	return nil
}

func bumpPostStats(tx *gorm.DB, postID int64, volume decimal.Decimal) error {
	stats := models.PostStats{
		PostID:    postID,
		TipCount:  1,
		TipVolume: volume,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "post_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"tip_count":  gorm.Expr("post_stats.tip_count + 1"),
			"tip_volume": gorm.Expr("post_stats.tip_volume + ?", volume),
		}),
	}).Create(&stats).Error
	if err != nil {
		return fmt.Errorf("failed to update post stats: %w", err)
	}
	return nil
}
