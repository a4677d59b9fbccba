package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/devrobins/linkpost/internal/models"
	"github.com/devrobins/linkpost/internal/transfer"
)

type PublishedPostRepository interface {
	Create(ctx context.Context, post *models.PublishedPost) (int64, error)
	ListByUser(ctx context.Context, userID *int64, limit int) ([]*models.PublishedPost, error)
	ListRecent(ctx context.Context, cutoff time.Time) ([]*models.PublishedPost, error)
	UpdateStats(ctx context.Context, id int64, stats *transfer.PostStats) error
}

type publishedPostRepository struct {
	db *sql.DB
}

func NewPublishedPostRepository(db *sql.DB) PublishedPostRepository {
	return &publishedPostRepository{db: db}
}

const publishedPostColumns = `id, user_id, linkedin_post_id, content, has_images, views, likes, comments, shares, published_at, stats_updated_at`

func (r *publishedPostRepository) Create(ctx context.Context, post *models.PublishedPost) (int64, error) {
	query := `
		INSERT INTO published_posts (user_id, linkedin_post_id, content, has_images)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, post.UserID, post.LinkedInPostID, post.Content, post.HasImages).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *publishedPostRepository) ListByUser(ctx context.Context, userID *int64, limit int) ([]*models.PublishedPost, error) {
	query := `SELECT ` + publishedPostColumns + `
		FROM published_posts
		WHERE user_id IS NOT DISTINCT FROM $1
		ORDER BY published_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanPublishedPosts(rows)
}

func (r *publishedPostRepository) ListRecent(ctx context.Context, cutoff time.Time) ([]*models.PublishedPost, error) {
	query := `SELECT ` + publishedPostColumns + `
		FROM published_posts
		WHERE linkedin_post_id <> '' AND published_at >= $1
		ORDER BY published_at DESC`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanPublishedPosts(rows)
}

func (r *publishedPostRepository) UpdateStats(ctx context.Context, id int64, stats *transfer.PostStats) error {
	query := `
		UPDATE published_posts
		SET views = COALESCE($1, views),
			likes = COALESCE($2, likes),
			comments = COALESCE($3, comments),
			shares = COALESCE($4, shares),
			stats_updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, stats.Views, stats.Likes, stats.Comments, stats.Shares, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func scanPublishedPosts(rows *sql.Rows) ([]*models.PublishedPost, error) {
	var posts []*models.PublishedPost
	for rows.Next() {
		var post models.PublishedPost
		err := rows.Scan(&post.ID, &post.UserID, &post.LinkedInPostID, &post.Content,
			&post.HasImages, &post.Views, &post.Likes, &post.Comments, &post.Shares,
			&post.PublishedAt, &post.StatsUpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}
