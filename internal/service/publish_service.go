package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"

	config "github.com/devrobins/linkpost/configs"
	"github.com/devrobins/linkpost/internal/models"
	"github.com/devrobins/linkpost/internal/repository"
	"github.com/devrobins/linkpost/pkg/utils"
)

// PublishService is the immediate-publication path. Unlike the dispatch
// worker it surfaces upload failures to the caller instead of degrading to
// a text-only post, since the caller is present to retry.
type PublishService interface {
	PublishNow(ctx context.Context, userID *int64, content string, files []*multipart.FileHeader) (string, error)
	ListPublished(ctx context.Context, userID *int64) ([]*models.PublishedPost, error)
}

type publishService struct {
	cfg config.Config
	la  repository.LinkedInAccountRepository
	pp  repository.PublishedPostRepository
	li  LinkedInService
}

func NewPublishService(cfg config.Config, la repository.LinkedInAccountRepository, pp repository.PublishedPostRepository, li LinkedInService) PublishService {
	return &publishService{cfg: cfg, la: la, pp: pp, li: li}
}

func (s *publishService) PublishNow(ctx context.Context, userID *int64, content string, files []*multipart.FileHeader) (string, error) {
	if content == "" {
		return "", validationErrorf("post content is required")
	}

	account, err := s.la.GetByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", ErrNotConnected
	}
	if account.IsExpired() {
		return "", ErrTokenExpired
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	if len(files) > models.MaxImagesPerPublish {
		files = files[:models.MaxImagesPerPublish]
	}

	images, err := readImages(files)
	if err != nil {
		return "", err
	}

	var assetURNs []string
	for _, img := range images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			return "", err
		}
		urn, err := s.li.UploadImage(ctx, accessToken, account.LinkedInID, data, img.MimeType)
		if err != nil {
			return "", fmt.Errorf("error uploading image: %w", err)
		}
		assetURNs = append(assetURNs, urn)
	}

	postID, err := s.li.CreatePost(ctx, accessToken, account.LinkedInID, content, assetURNs)
	if err != nil {
		return "", err
	}

	if _, err := s.pp.Create(ctx, &models.PublishedPost{
		UserID:         userID,
		LinkedInPostID: postID,
		Content:        content,
		HasImages:      len(assetURNs) > 0,
	}); err != nil {
		slog.Error("failed to record published post", "linkedin_post_id", postID, "error", err)
	}

	return postID, nil
}

func (s *publishService) ListPublished(ctx context.Context, userID *int64) ([]*models.PublishedPost, error) {
	posts, err := s.pp.ListByUser(ctx, userID, 100)
	if err != nil {
		return nil, fmt.Errorf("error listing published posts: %w", err)
	}
	return posts, nil
}
