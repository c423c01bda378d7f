// file: model/token.go

package model

import "time"

// TokenKind selects which signing key a token is bound to. A token minted
// with one kind never verifies under the other kind's key.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// TokenPair is the response value returned by login and refresh. It is
// never stored server-side.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Claims is the decoded payload of a verified token.
type Claims struct {
	Subject   string    `json:"sub"`
	ExpiresAt time.Time `json:"exp"`
}
