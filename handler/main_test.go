// handler/main_test.go
package handler_test

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/falcol/authen-api/config"
	"github.com/falcol/authen-api/handler"
	"github.com/falcol/authen-api/logger"
	"github.com/falcol/authen-api/model"
	"github.com/falcol/authen-api/repository"
	"github.com/falcol/authen-api/router"
	"github.com/falcol/authen-api/service"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// memoryUserRepo is an in-memory IUserRepository for handler tests.
type memoryUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  []*model.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{}
}

func (r *memoryUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicateUser
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	stored := *user
	r.users = append(r.users, &stored)
	return nil
}

func (r *memoryUserRepo) GetByUsername(username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			found := *user
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryUserRepo) GetByUsernameOrEmail(username, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Username, username) || strings.EqualFold(user.Email, email) {
			found := *user
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

// nopCache is an always-miss ICacheClient.
type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string) *redis.StringCmd {
	return redis.NewStringResult("", redis.Nil)
}
func (nopCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}
func (nopCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return redis.NewIntResult(0, nil)
}

type testEnv struct {
	router http.Handler
	repo   *memoryUserRepo
	auth   *service.AuthService
	tokens *service.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Algorithm = "HS256"
	cfg.JWT.AccessKey = "test-access-secret"
	cfg.JWT.RefreshKey = "test-refresh-secret"
	cfg.JWT.AccessTokenExpiresIn = 30
	cfg.JWT.RefreshTokenExpiresIn = 60

	repo := newMemoryUserRepo()
	auth := service.NewAuthService(repo)
	tokens, err := service.NewTokenService(cfg)
	assert.NoError(t, err)
	sessions := service.NewSessionService(auth, tokens, repo, nopCache{})
	users := service.NewUserService(repo, auth, nopCache{})
	authHandler := handler.NewAuthHandler(sessions, users)

	return &testEnv{
		router: router.NewRouter(authHandler, sessions),
		repo:   repo,
		auth:   auth,
		tokens: tokens,
	}
}

func (e *testEnv) createUser(t *testing.T, username, email, password string, active bool) *model.User {
	t.Helper()
	hashed, err := e.auth.HashPassword(password)
	assert.NoError(t, err)
	user := &model.User{
		Username: username,
		Email:    email,
		Password: hashed,
		IsActive: active,
	}
	assert.NoError(t, e.repo.Create(user))
	return user
}
