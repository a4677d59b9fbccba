package job

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/devrobins/linkpost/internal/models"
	"github.com/devrobins/linkpost/internal/repository"
	"github.com/devrobins/linkpost/internal/service"
	"github.com/devrobins/linkpost/pkg/utils"
)

// PublishJob drains due pending posts, one row per transaction. The
// skip-locked claim in the repository is the only concurrency control:
// any number of timers, task workers or replicas may call Run at once and
// each due row is still published exactly once. Rows are processed strictly
// sequentially to keep lock windows short.
type PublishJob struct {
	sp        repository.ScheduledPostRepository
	la        repository.LinkedInAccountRepository
	pp        repository.PublishedPostRepository
	li        service.LinkedInService
	secretKey []byte
}

func NewPublishJob(
	sp repository.ScheduledPostRepository,
	la repository.LinkedInAccountRepository,
	pp repository.PublishedPostRepository,
	li service.LinkedInService,
	secretKey []byte) *PublishJob {
	return &PublishJob{
		sp:        sp,
		la:        la,
		pp:        pp,
		li:        li,
		secretKey: secretKey,
	}
}

// Run claims and publishes due posts until none remain. Every claimed row
// ends in a terminal state; a failing row never stops the drain.
func (j *PublishJob) Run(ctx context.Context) error {
	for {
		post, tx, err := j.sp.ClaimDue(ctx)
		if err != nil {
			return err
		}
		if post == nil {
			return nil
		}
		j.publishClaimed(ctx, tx, post)
	}
}

func (j *PublishJob) publishClaimed(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) {
	account, err := j.la.GetByUser(ctx, post.UserID)
	if err != nil {
		j.fail(ctx, tx, post, err.Error())
		return
	}
	if account == nil {
		j.fail(ctx, tx, post, service.ErrNotConnected.Error())
		return
	}
	if account.IsExpired() {
		j.fail(ctx, tx, post, service.ErrTokenExpired.Error())
		return
	}

	accessToken, err := utils.Decrypt(account.AccessToken, j.secretKey)
	if err != nil {
		j.fail(ctx, tx, post, err.Error())
		return
	}

	// Uploads are best-effort: the post goes out with whatever subset of
	// images made it, text-only in the worst case.
	var assetURNs []string
	for i, img := range post.Images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			slog.Warn("skipping undecodable image", "post_id", post.ID, "index", i, "error", err)
			continue
		}
		urn, err := j.li.UploadImage(ctx, accessToken, account.LinkedInID, data, img.MimeType)
		if err != nil {
			slog.Warn("image upload failed", "post_id", post.ID, "index", i, "error", err)
			continue
		}
		assetURNs = append(assetURNs, urn)
	}

	linkedinPostID, err := j.li.CreatePost(ctx, accessToken, account.LinkedInID, post.Content, assetURNs)
	if err != nil {
		var publishErr *service.PublishError
		if errors.As(err, &publishErr) {
			j.fail(ctx, tx, post, publishErr.Message)
		} else {
			j.fail(ctx, tx, post, err.Error())
		}
		return
	}

	publishedAt := time.Now()
	if err := j.sp.MarkPublished(ctx, tx, post.ID, publishedAt); err != nil {
		// The transaction rolled back; the row is still pending and will be
		// reclaimed on the next invocation.
		slog.Error("failed to mark post published", "post_id", post.ID, "error", err)
		return
	}

	slog.Info("scheduled post published", "post_id", post.ID, "linkedin_post_id", linkedinPostID)

	if _, err := j.pp.Create(ctx, &models.PublishedPost{
		UserID:         post.UserID,
		LinkedInPostID: linkedinPostID,
		Content:        post.Content,
		HasImages:      len(assetURNs) > 0,
	}); err != nil {
		slog.Error("failed to record published post", "post_id", post.ID, "error", err)
	}
}

func (j *PublishJob) fail(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost, message string) {
	if err := j.sp.MarkFailed(ctx, tx, post.ID, message); err != nil {
		slog.Error("failed to mark post failed", "post_id", post.ID, "error", err)
		return
	}
	slog.Info("scheduled post failed", "post_id", post.ID, "reason", message)
}
