package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/devrobins/linkpost/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, bool, error)
	GetByLinkedInID(ctx context.Context, linkedinID string) (*models.User, bool, error)
	Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	var user models.User
	query := "SELECT id, linkedin_id, email, name FROM users WHERE id = $1"
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.LinkedInID, &user.Email, &user.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &user, true, nil
}

func (r *userRepository) GetByLinkedInID(ctx context.Context, linkedinID string) (*models.User, bool, error) {
	var user models.User
	query := "SELECT id, linkedin_id, email, name FROM users WHERE linkedin_id = $1"
	err := r.db.QueryRowContext(ctx, query, linkedinID).Scan(&user.ID, &user.LinkedInID, &user.Email, &user.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &user, true, nil
}

func (r *userRepository) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	query := "INSERT INTO users (linkedin_id, email, name) VALUES ($1, $2, $3) RETURNING id"

	var err error
	var id int64

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, user.LinkedInID, user.Email, user.Name).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, user.LinkedInID, user.Email, user.Name).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}
