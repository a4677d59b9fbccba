package service

import (
	"context"
	"errors"
	"log/slog"

	config "github.com/devrobins/linkpost/configs"
	"github.com/devrobins/linkpost/internal/models"
	"github.com/devrobins/linkpost/internal/repository"
	"github.com/devrobins/linkpost/internal/transfer"
	"github.com/devrobins/linkpost/pkg/utils"
	"golang.org/x/oauth2"
)

// AccountService is the OAuth collaborator: it writes the credential rows
// the dispatch worker later reads. Login additionally creates a local user
// for the session cookie.
type AccountService interface {
	LoginCallback(ctx context.Context, code string) (int64, error)
	ConnectCallback(ctx context.Context, code string, userID *int64) error
	Status(ctx context.Context, userID *int64) (*transfer.AccountStatus, error)
	Disconnect(ctx context.Context, userID *int64) error
}

type accountService struct {
	cfg config.Config
	la  repository.LinkedInAccountRepository
	u   repository.UserRepository
	li  LinkedInService
}

func NewAccountService(cfg config.Config, la repository.LinkedInAccountRepository, u repository.UserRepository, li LinkedInService) AccountService {
	return &accountService{cfg: cfg, la: la, u: u, li: li}
}

func (s *accountService) LoginCallback(ctx context.Context, code string) (int64, error) {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return 0, err
	}

	token, err := s.li.ExchangeCode(ctx, code)
	if err != nil {
		return 0, err
	}

	info, err := s.li.UserInfo(ctx, token.AccessToken)
	if err != nil {
		return 0, err
	}

	user, exists, err := s.u.GetByLinkedInID(ctx, info.Sub)
	if err != nil {
		return 0, err
	}

	var userID int64
	if exists {
		userID = user.ID
	} else {
		userID, err = s.u.Create(ctx, nil, &models.User{
			LinkedInID: info.Sub,
			Email:      info.Email,
			Name:       info.Name,
		})
		if err != nil {
			return 0, err
		}
	}

	if err := s.storeAccount(ctx, token, info, &userID); err != nil {
		return 0, err
	}

	return userID, nil
}

func (s *accountService) ConnectCallback(ctx context.Context, code string, userID *int64) error {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return err
	}

	token, err := s.li.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}

	info, err := s.li.UserInfo(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	return s.storeAccount(ctx, token, info, userID)
}

func (s *accountService) storeAccount(ctx context.Context, token *oauth2.Token, info *transfer.LinkedInUserInfo, userID *int64) error {
	encryptedToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	_, err = s.la.Upsert(ctx, &models.LinkedInAccount{
		UserID:      userID,
		LinkedInID:  info.Sub,
		Name:        info.Name,
		AccessToken: encryptedToken,
		ExpiresAt:   token.Expiry,
	})
	return err
}

func (s *accountService) Status(ctx context.Context, userID *int64) (*transfer.AccountStatus, error) {
	account, err := s.la.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return &transfer.AccountStatus{Connected: false}, nil
	}
	if account.IsExpired() {
		return &transfer.AccountStatus{Connected: false, Expired: true, Name: account.Name}, nil
	}
	return &transfer.AccountStatus{Connected: true, Name: account.Name, LinkedInID: account.LinkedInID}, nil
}

func (s *accountService) Disconnect(ctx context.Context, userID *int64) error {
	return s.la.RemoveByUser(ctx, userID)
}
