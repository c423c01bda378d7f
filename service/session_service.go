// file: service/session_service.go

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/falcol/authen-api/logger"
	"github.com/falcol/authen-api/model"
	"github.com/falcol/authen-api/repository"
)

var (
	// ErrInactiveUser means the credentials or token were valid but the
	// account is disabled. Deliberately distinct from the 401 outcomes.
	ErrInactiveUser = errors.New("inactive user")
	// ErrInvalidRefreshToken covers every refresh-token decode failure.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrCouldNotValidate covers every access-token failure on protected
	// requests: bad or expired token, or a subject no longer in storage.
	ErrCouldNotValidate = errors.New("could not validate credentials")
)

const userCacheTTL = 10 * time.Minute

// SessionService orchestrates the three token flows: login, refresh and
// current-user resolution from a bearer token.
type SessionService struct {
	auth     *AuthService
	tokens   *TokenService
	userRepo repository.IUserRepository
	cache    ICacheClient
}

func NewSessionService(auth *AuthService, tokens *TokenService, userRepo repository.IUserRepository, cache ICacheClient) *SessionService {
	return &SessionService{
		auth:     auth,
		tokens:   tokens,
		userRepo: userRepo,
		cache:    cache,
	}
}

// Login verifies the credentials and, for an active user, mints a fresh
// access/refresh token pair.
func (s *SessionService) Login(username, password string) (*model.TokenPair, error) {
	user, err := s.auth.Authenticate(username, password)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	accessToken, err := s.tokens.Encode(user.Username, s.tokens.AccessTokenTTL, model.AccessToken)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.Encode(user.Username, s.tokens.RefreshTokenTTL, model.RefreshToken)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("username", user.Username).Info("User logged in")

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Refresh validates refreshToken and mints a new access token for its
// subject. The presented refresh token is echoed back unchanged; refresh
// tokens are not rotated on use.
func (s *SessionService) Refresh(refreshToken string) (*model.TokenPair, error) {
	claims, err := s.tokens.Decode(refreshToken, model.RefreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	accessToken, err := s.tokens.Encode(claims.Subject, s.tokens.AccessTokenTTL, model.AccessToken)
	if err != nil {
		return nil, err
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// CurrentUser resolves a bearer access token to an active user record,
// consulting the cache before storage.
func (s *SessionService) CurrentUser(accessToken string) (*model.User, error) {
	claims, err := s.tokens.Decode(accessToken, model.AccessToken)
	if err != nil {
		return nil, ErrCouldNotValidate
	}

	user, err := s.lookupUser(claims.Subject)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCouldNotValidate
		}
		return nil, fmt.Errorf("could not look up user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return user, nil
}

// lookupUser applies the cache-aside strategy: try Redis, fall back to the
// repository, then populate the cache for future requests.
func (s *SessionService) lookupUser(username string) (*model.User, error) {
	ctx := context.Background()
	cacheKey := userCacheKey(username)

	if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
		user := &model.User{}
		if err := json.Unmarshal([]byte(cached), user); err == nil {
			return user, nil
		}
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(user); err == nil {
		s.cache.Set(ctx, cacheKey, data, userCacheTTL)
	}

	return user, nil
}

func userCacheKey(username string) string {
	return fmt.Sprintf("user:%s", username)
}
