package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/devrobins/linkpost/internal/models"
)

type LinkedInAccountRepository interface {
	GetByUser(ctx context.Context, userID *int64) (*models.LinkedInAccount, error)
	GetByLinkedInID(ctx context.Context, linkedinID string) (*models.LinkedInAccount, error)
	Upsert(ctx context.Context, account *models.LinkedInAccount) (int64, error)
	RemoveByUser(ctx context.Context, userID *int64) error
}

type linkedinAccountRepository struct {
	db *sql.DB
}

func NewLinkedInAccountRepository(db *sql.DB) LinkedInAccountRepository {
	return &linkedinAccountRepository{db: db}
}

const linkedinAccountColumns = `id, user_id, linkedin_id, name, access_token, expires_at, created_at, updated_at`

func (r *linkedinAccountRepository) GetByUser(ctx context.Context, userID *int64) (*models.LinkedInAccount, error) {
	query := `SELECT ` + linkedinAccountColumns + `
		FROM linkedin_accounts
		WHERE user_id IS NOT DISTINCT FROM $1
		LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var account models.LinkedInAccount
	err := row.Scan(&account.ID, &account.UserID, &account.LinkedInID, &account.Name,
		&account.AccessToken, &account.ExpiresAt, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &account, nil
}

func (r *linkedinAccountRepository) GetByLinkedInID(ctx context.Context, linkedinID string) (*models.LinkedInAccount, error) {
	query := `SELECT ` + linkedinAccountColumns + `
		FROM linkedin_accounts
		WHERE linkedin_id = $1`
	row := r.db.QueryRowContext(ctx, query, linkedinID)

	var account models.LinkedInAccount
	err := row.Scan(&account.ID, &account.UserID, &account.LinkedInID, &account.Name,
		&account.AccessToken, &account.ExpiresAt, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &account, nil
}

func (r *linkedinAccountRepository) Upsert(ctx context.Context, account *models.LinkedInAccount) (int64, error) {
	query := `
		INSERT INTO linkedin_accounts (user_id, linkedin_id, name, access_token, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (linkedin_id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
			name = EXCLUDED.name,
			access_token = EXCLUDED.access_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, account.UserID, account.LinkedInID,
		account.Name, account.AccessToken, account.ExpiresAt).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *linkedinAccountRepository) RemoveByUser(ctx context.Context, userID *int64) error {
	query := `DELETE FROM linkedin_accounts WHERE user_id IS NOT DISTINCT FROM $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
