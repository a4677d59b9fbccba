package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/devrobins/linkpost/internal/models"
	"github.com/devrobins/linkpost/internal/repository"
	"github.com/devrobins/linkpost/internal/transfer"
	"github.com/h2non/filetype"
)

type ScheduleService interface {
	Schedule(ctx context.Context, userID *int64, sc *transfer.ScheduleCreation, files []*multipart.FileHeader) (*models.ScheduledPost, time.Duration, error)
	List(ctx context.Context, userID *int64, dateRange, search string) ([]*models.ScheduledPost, error)
	Update(ctx context.Context, userID *int64, postID int64, upd *transfer.ScheduleUpdate) (*models.ScheduledPost, error)
	Cancel(ctx context.Context, userID *int64, postID int64) error
}

type scheduleService struct {
	sp repository.ScheduledPostRepository
}

func NewScheduleService(sp repository.ScheduledPostRepository) ScheduleService {
	return &scheduleService{sp: sp}
}

func (s *scheduleService) Schedule(ctx context.Context, userID *int64, sc *transfer.ScheduleCreation, files []*multipart.FileHeader) (*models.ScheduledPost, time.Duration, error) {
	if sc == nil || sc.Content == "" {
		return nil, 0, validationErrorf("post content is required")
	}
	if sc.ScheduledAt == "" {
		return nil, 0, validationErrorf("scheduled time is required")
	}

	scheduledAt, err := parseScheduledAt(sc.ScheduledAt)
	if err != nil {
		return nil, 0, validationErrorf("invalid scheduled time format: %s", sc.ScheduledAt)
	}
	if !scheduledAt.After(time.Now()) {
		return nil, 0, validationErrorf("scheduled time must be in the future")
	}

	if len(files) > models.MaxImagesPerPost {
		return nil, 0, validationErrorf("at most %d images per post", models.MaxImagesPerPost)
	}

	images, err := readImages(files)
	if err != nil {
		return nil, 0, err
	}

	post := &models.ScheduledPost{
		UserID:      userID,
		Content:     sc.Content,
		ScheduledAt: scheduledAt,
		Status:      models.PostStatusPending,
		Images:      images,
	}

	id, err := s.sp.Create(ctx, post)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating scheduled post: %w", err)
	}
	post.ID = id

	delay := time.Until(scheduledAt)
	if delay < 0 {
		delay = 0
	}

	return post, delay, nil
}

func (s *scheduleService) List(ctx context.Context, userID *int64, dateRange, search string) ([]*models.ScheduledPost, error) {
	var since *time.Time
	switch dateRange {
	case "7":
		t := time.Now().AddDate(0, 0, -7)
		since = &t
	case "30":
		t := time.Now().AddDate(0, 0, -30)
		since = &t
	}

	posts, err := s.sp.ListByUser(ctx, userID, since, search)
	if err != nil {
		return nil, fmt.Errorf("error listing scheduled posts: %w", err)
	}
	return posts, nil
}

func (s *scheduleService) Update(ctx context.Context, userID *int64, postID int64, upd *transfer.ScheduleUpdate) (*models.ScheduledPost, error) {
	post, err := s.sp.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if post.Status != models.PostStatusPending {
		return nil, ErrInvalidState
	}

	content := post.Content
	scheduledAt := post.ScheduledAt

	if upd.Content != "" {
		content = upd.Content
	}
	if upd.ScheduledAt != "" {
		parsed, err := parseScheduledAt(upd.ScheduledAt)
		if err != nil {
			return nil, validationErrorf("invalid scheduled time format: %s", upd.ScheduledAt)
		}
		if !parsed.After(time.Now()) {
			return nil, validationErrorf("scheduled time must be in the future")
		}
		scheduledAt = parsed
	}

	ok, err := s.sp.UpdatePending(ctx, postID, userID, content, scheduledAt)
	if err != nil {
		return nil, fmt.Errorf("error updating scheduled post: %w", err)
	}
	if !ok {
		// Row left pending between the read and the conditional update.
		return nil, ErrInvalidState
	}

	post.Content = content
	post.ScheduledAt = scheduledAt
	return post, nil
}

func (s *scheduleService) Cancel(ctx context.Context, userID *int64, postID int64) error {
	post, err := s.sp.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}
	if post.Status != models.PostStatusPending {
		return ErrInvalidState
	}

	ok, err := s.sp.CancelPending(ctx, postID, userID)
	if err != nil {
		return fmt.Errorf("error cancelling scheduled post: %w", err)
	}
	if !ok {
		return ErrInvalidState
	}
	return nil
}

func parseScheduledAt(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", value)
}

// readImages sniffs and base64-encodes uploaded files for inline storage.
func readImages(files []*multipart.FileHeader) ([]models.PostImage, error) {
	var images []models.PostImage
	for _, file := range files {
		content, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening file: %w", err)
		}

		data, err := io.ReadAll(content)
		content.Close()
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %w", err)
		}

		if !filetype.IsImage(data) {
			return nil, validationErrorf("file %s is not an image", file.Filename)
		}
		kind, err := filetype.Match(data)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}

		images = append(images, models.PostImage{
			Data:     base64.StdEncoding.EncodeToString(data),
			MimeType: kind.MIME.Value,
		})
	}
	return images, nil
}
