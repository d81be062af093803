package payments

import (
	"context"

	"github.com/pythocooks/onlyagents-backend/internal/models"
)

// PlatformStats returns ledger-wide aggregates. No verification involved.
func (s *Service) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	return s.repo.GetPlatformStats()
}

// AccountStats returns the derived counters for one account.
func (s *Service) AccountStats(ctx context.Context, name string) (*models.AccountStatsView, error) {
	account, err := s.repo.GetAccountByName(name)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.GetAccountStats(account.ID)
	if err != nil {
		return nil, err
	}

	return &models.AccountStatsView{
		Name:            account.Name,
		SubscriberCount: stats.SubscriberCount,
		TipCount:        stats.TipCount,
		TipVolume:       stats.TipVolume,
	}, nil
}

// PostTips lists a post's tips with its counters.
func (s *Service) PostTips(ctx context.Context, postID int64) (*models.PostTipsView, error) {
	exists, err := s.repo.PostExists(postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrResourceMissing
	}

	stats, err := s.repo.GetPostStats(postID)
	if err != nil {
		return nil, err
	}
	tips, err := s.repo.GetPostTips(postID)
	if err != nil {
		return nil, err
	}

	return &models.PostTipsView{
		PostID:    postID,
		TipCount:  stats.TipCount,
		TipVolume: stats.TipVolume,
		Tips:      tips,
	}, nil
}
