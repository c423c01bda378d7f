// file: service/token_service.go

package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/falcol/authen-api/config"
	"github.com/falcol/authen-api/logger"
	"github.com/falcol/authen-api/model"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every decode failure: bad signature, wrong key,
// malformed payload, missing exp, or expiry in the past. Callers never
// learn which one it was.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService signs and verifies the JWTs this service issues. Access and
// refresh tokens are signed with two independent HMAC keys, so a token of
// one kind can never be presented as the other.
type TokenService struct {
	method     jwt.SigningMethod
	accessKey  []byte
	refreshKey []byte

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// NewTokenService builds a TokenService from the loaded configuration.
// Only HMAC algorithms are accepted: both keys are opaque shared secrets.
func NewTokenService(cfg *config.Config) (*TokenService, error) {
	method := jwt.GetSigningMethod(cfg.JWT.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown JWT algorithm %q", cfg.JWT.Algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported JWT algorithm %q: only the HS family is supported", cfg.JWT.Algorithm)
	}
	if cfg.JWT.AccessKey == "" || cfg.JWT.RefreshKey == "" {
		return nil, errors.New("both JWT signing keys must be configured")
	}

	return &TokenService{
		method:          method,
		accessKey:       []byte(cfg.JWT.AccessKey),
		refreshKey:      []byte(cfg.JWT.RefreshKey),
		AccessTokenTTL:  time.Duration(cfg.JWT.AccessTokenExpiresIn) * time.Minute,
		RefreshTokenTTL: time.Duration(cfg.JWT.RefreshTokenExpiresIn) * time.Minute,
	}, nil
}

func (s *TokenService) key(kind model.TokenKind) []byte {
	if kind == model.RefreshToken {
		return s.refreshKey
	}
	return s.accessKey
}

// Encode mints a signed token for subject, expiring ttl from now, bound to
// the signing key of kind.
func (s *TokenService) Encode(subject string, ttl time.Duration, kind model.TokenKind) (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}

	token := jwt.NewWithClaims(s.method, claims)
	tokenString, err := token.SignedString(s.key(kind))
	if err != nil {
		logger.Log.WithError(err).WithField("subject", subject).Error("Failed to sign token")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, nil
}

// Decode verifies tokenString against the key for kind and returns its
// claims. Expiry is checked against the wall clock on every call; a token
// that was valid when issued still fails here once its exp has passed.
func (s *TokenService) Decode(tokenString string, kind model.TokenKind) (*model.Claims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.key(kind), nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &model.Claims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
