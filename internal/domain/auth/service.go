package auth

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	store    *Store
	secret   string
	tokenTTL time.Duration
}

func NewService(store *Store, secret string, tokenTTL time.Duration) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL}
}

func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return "", User{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}, s.tokenTTL)
	if err != nil {
		return "", User{}, err
	}
	return token, user, nil
}
