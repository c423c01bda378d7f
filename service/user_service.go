// file: service/user_service.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/falcol/authen-api/logger"
	"github.com/falcol/authen-api/model"
	"github.com/falcol/authen-api/repository"
)

var (
	// ErrUserExists is returned when the requested username or email is
	// already taken (compared case-insensitively).
	ErrUserExists = errors.New("email or username already exist")
	// ErrPasswordMismatch is returned when password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// UserService handles user registration.
type UserService struct {
	userRepo repository.IUserRepository
	auth     *AuthService
	cache    ICacheClient
}

func NewUserService(userRepo repository.IUserRepository, auth *AuthService, cache ICacheClient) *UserService {
	return &UserService{userRepo: userRepo, auth: auth, cache: cache}
}

// Register creates a new user: enforces username/email uniqueness, checks
// the password confirmation, hashes the password and normalizes the email
// to lowercase. The returned user carries the hash only internally; the
// model never serializes it.
func (s *UserService) Register(req *model.RegisterRequest) (*model.User, error) {
	existing, err := s.userRepo.GetByUsernameOrEmail(req.Username, req.Email)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("could not check for existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	if req.Password != req.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}

	hashedPassword, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: req.Username,
		Email:    strings.ToLower(req.Email),
		FullName: req.FullName,
		Password: hashedPassword,
		IsActive: true,
	}

	if err := s.userRepo.Create(user); err != nil {
		if err == repository.ErrDuplicateUser {
			// Lost the race between the uniqueness check and the insert.
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	// A stale cache entry for this username would shadow the new record.
	s.cache.Del(context.Background(), userCacheKey(user.Username))

	logger.Log.WithField("username", user.Username).Info("User registered")
	return user, nil
}
