// file: service/auth_service.go

package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/falcol/authen-api/logger"
	"github.com/falcol/authen-api/model"
	"github.com/falcol/authen-api/repository"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown username and for a wrong
// password alike. Collapsing both into one outcome keeps the login endpoint
// from leaking which usernames exist.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// AuthService verifies credentials against stored password hashes.
type AuthService struct {
	userRepo repository.IUserRepository
}

func NewAuthService(userRepo repository.IUserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash reports whether password matches hash. A malformed hash
// is just a non-match, never an error.
func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Authenticate resolves username (exact, case-sensitive match) and verifies
// password against the stored hash. Returns ErrInvalidCredentials on any
// credential failure; storage faults are propagated wrapped so callers can
// tell a broken database from a bad password.
func (s *AuthService) Authenticate(username, password string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("could not look up user: %w", err)
	}

	if !s.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
