package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/devrobins/linkpost/internal/models"
)

type ScheduledPostRepository interface {
	Create(ctx context.Context, post *models.ScheduledPost) (int64, error)
	GetByID(ctx context.Context, id int64, userID *int64) (*models.ScheduledPost, error)
	ListByUser(ctx context.Context, userID *int64, since *time.Time, search string) ([]*models.ScheduledPost, error)
	UpdatePending(ctx context.Context, id int64, userID *int64, content string, scheduledAt time.Time) (bool, error)
	CancelPending(ctx context.Context, id int64, userID *int64) (bool, error)
	ClaimDue(ctx context.Context) (*models.ScheduledPost, *sql.Tx, error)
	MarkPublished(ctx context.Context, tx *sql.Tx, id int64, publishedAt time.Time) error
	MarkFailed(ctx context.Context, tx *sql.Tx, id int64, errorMessage string) error
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

const scheduledPostColumns = `id, user_id, content, scheduled_at, status, error_message, images_data, published_at, created_at, updated_at`

func (r *scheduledPostRepository) Create(ctx context.Context, post *models.ScheduledPost) (int64, error) {
	images, err := json.Marshal(post.Images)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	query := `
		INSERT INTO scheduled_posts (user_id, content, scheduled_at, status, images_data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err = r.db.QueryRowContext(ctx, query, post.UserID, post.Content, post.ScheduledAt, post.Status, images).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id int64, userID *int64) (*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + `
		FROM scheduled_posts
		WHERE id = $1 AND user_id IS NOT DISTINCT FROM $2`
	row := r.db.QueryRowContext(ctx, query, id, userID)

	post, err := scanScheduledPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *scheduledPostRepository) ListByUser(ctx context.Context, userID *int64, since *time.Time, search string) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduledPostColumns + `
		FROM scheduled_posts
		WHERE user_id IS NOT DISTINCT FROM $1`
	args := []interface{}{userID}

	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(" AND scheduled_at >= $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND content ILIKE $%d", len(args))
	}
	query += " ORDER BY scheduled_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanScheduledPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

func (r *scheduledPostRepository) UpdatePending(ctx context.Context, id int64, userID *int64, content string, scheduledAt time.Time) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET content = $1,
			scheduled_at = $2,
			updated_at = NOW()
		WHERE id = $3 AND user_id IS NOT DISTINCT FROM $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, content, scheduledAt, id, userID, models.PostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected > 0, nil
}

func (r *scheduledPostRepository) CancelPending(ctx context.Context, id int64, userID *int64) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			updated_at = NOW()
		WHERE id = $2 AND user_id IS NOT DISTINCT FROM $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusCancelled, id, userID, models.PostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected > 0, nil
}

// ClaimDue starts a transaction and locks one due pending row with
// FOR UPDATE SKIP LOCKED, so concurrent dispatch invocations never pick the
// same row and never block on each other. The caller must resolve the row
// through MarkPublished or MarkFailed, which commit the returned transaction.
// Returns (nil, nil, nil) when no due row is claimable.
func (r *scheduledPostRepository) ClaimDue(ctx context.Context) (*models.ScheduledPost, *sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, nil, err
	}

	query := `SELECT ` + scheduledPostColumns + `
		FROM scheduled_posts
		WHERE status = $1 AND scheduled_at <= NOW()
		ORDER BY scheduled_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED`
	row := tx.QueryRowContext(ctx, query, models.PostStatusPending)

	post, err := scanScheduledPost(row)
	if err != nil {
		tx.Rollback()
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}
		slog.Info(err.Error())
		return nil, nil, err
	}

	return post, tx, nil
}

func (r *scheduledPostRepository) MarkPublished(ctx context.Context, tx *sql.Tx, id int64, publishedAt time.Time) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			published_at = $2,
			updated_at = NOW()
		WHERE id = $3
	`
	if tx == nil {
		_, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, publishedAt, id)
		if err != nil {
			slog.Info(err.Error())
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, query, models.PostStatusPublished, publishedAt, id); err != nil {
		slog.Info(err.Error())
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *scheduledPostRepository) MarkFailed(ctx context.Context, tx *sql.Tx, id int64, errorMessage string) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			error_message = $2,
			updated_at = NOW()
		WHERE id = $3
	`
	if tx == nil {
		_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, errorMessage, id)
		if err != nil {
			slog.Info(err.Error())
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, query, models.PostStatusFailed, errorMessage, id); err != nil {
		slog.Info(err.Error())
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScheduledPost(row rowScanner) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	var images []byte
	err := row.Scan(&post.ID, &post.UserID, &post.Content, &post.ScheduledAt, &post.Status,
		&post.ErrorMessage, &images, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &post.Images); err != nil {
			return nil, err
		}
	}
	return &post, nil
}
