package service

import (
	"context"
	"log/slog"
	"time"

	config "github.com/devrobins/linkpost/configs"
	"github.com/devrobins/linkpost/internal/models"
	"github.com/devrobins/linkpost/internal/repository"
	"github.com/devrobins/linkpost/pkg/utils"
)

const (
	statsMaxPostAge    = 90 * 24 * time.Hour
	statsUserBatchSize = 50
	// Spacing between analytics calls keeps us under LinkedIn's per-member
	// rate limits.
	statsRefreshPause = 500 * time.Millisecond
	statsUserPause    = 300 * time.Millisecond
)

type StatsService interface {
	RefreshForUser(ctx context.Context, userID *int64) (int, error)
	RefreshAll(ctx context.Context) (int, error)
}

type statsService struct {
	cfg config.Config
	la  repository.LinkedInAccountRepository
	pp  repository.PublishedPostRepository
	li  LinkedInService
}

func NewStatsService(cfg config.Config, la repository.LinkedInAccountRepository, pp repository.PublishedPostRepository, li LinkedInService) StatsService {
	return &statsService{cfg: cfg, la: la, pp: pp, li: li}
}

func (s *statsService) RefreshForUser(ctx context.Context, userID *int64) (int, error) {
	account, err := s.la.GetByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, ErrNotConnected
	}
	if account.IsExpired() {
		return 0, ErrTokenExpired
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}

	posts, err := s.pp.ListByUser(ctx, userID, statsUserBatchSize)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, post := range posts {
		if post.LinkedInPostID == "" {
			continue
		}
		if s.refreshOne(ctx, accessToken, post) {
			updated++
		}
		time.Sleep(statsUserPause)
	}
	return updated, nil
}

func (s *statsService) RefreshAll(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-statsMaxPostAge)
	posts, err := s.pp.ListRecent(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	// Accounts cached per owner key; 0 stands in for the anonymous owner.
	tokens := make(map[int64]string)
	updated := 0
	for _, post := range posts {
		key := int64(0)
		if post.UserID != nil {
			key = *post.UserID
		}

		accessToken, cached := tokens[key]
		if !cached {
			account, err := s.la.GetByUser(ctx, post.UserID)
			if err != nil {
				slog.Info(err.Error())
				continue
			}
			if account == nil || account.IsExpired() {
				tokens[key] = ""
				continue
			}
			accessToken, err = utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
			if err != nil {
				slog.Info(err.Error())
				tokens[key] = ""
				continue
			}
			tokens[key] = accessToken
		}
		if accessToken == "" {
			continue
		}

		if s.refreshOne(ctx, accessToken, post) {
			updated++
		}
		time.Sleep(statsRefreshPause)
	}
	return updated, nil
}

func (s *statsService) refreshOne(ctx context.Context, accessToken string, post *models.PublishedPost) bool {
	stats, err := s.li.FetchPostStats(ctx, accessToken, post.LinkedInPostID)
	if err != nil {
		slog.Info(err.Error())
		return false
	}
	if stats == nil {
		return false
	}
	if err := s.pp.UpdateStats(ctx, post.ID, stats); err != nil {
		return false
	}
	return true
}
