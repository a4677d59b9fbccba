package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/devrobins/linkpost/internal/models"
	"github.com/devrobins/linkpost/internal/repository"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id *int64) (*models.User, error)
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{
		u: u,
	}
}

func (s *userService) GetUserInfo(ctx context.Context, id *int64) (*models.User, error) {
	if id == nil {
		return nil, ErrNotSignedIn
	}

	user, isExist, err := s.u.GetByID(ctx, *id)
	if err != nil {
		return nil, fmt.Errorf("error getting user info")
	}

	if !isExist {
		err = errors.New("user not found")
		slog.Info(err.Error())
		return nil, err
	}

	return user, nil
}
