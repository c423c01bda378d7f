// handler/auth_handler_test.go
package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/falcol/authen-api/model"

	"github.com/stretchr/testify/assert"
)

func postForm(t *testing.T, env *testEnv, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func postJSON(t *testing.T, env *testEnv, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	assert.NoError(t, err)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func loginForm(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "aVerySecurePassword", true)
	env.createUser(t, "bob", "bob@example.com", "aVerySecurePassword", false)

	t.Run("success returns a bearer pair", func(t *testing.T) {
		rr := postForm(t, env, "/api/auth/token", loginForm("alice", "aVerySecurePassword"))

		assert.Equal(t, http.StatusOK, rr.Code)

		var pair model.TokenPair
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pair))
		assert.Equal(t, "bearer", pair.TokenType)

		claims, err := env.tokens.Decode(pair.AccessToken, model.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
	})

	t.Run("wrong password and unknown user return identical responses", func(t *testing.T) {
		wrongPass := postForm(t, env, "/api/auth/token", loginForm("alice", "not-the-password"))
		unknown := postForm(t, env, "/api/auth/token", loginForm("nobody", "aVerySecurePassword"))

		assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrongPass.Body.String(), unknown.Body.String())
		assert.Equal(t, "Bearer", wrongPass.Header().Get("WWW-Authenticate"))
	})

	t.Run("inactive user", func(t *testing.T) {
		rr := postForm(t, env, "/api/auth/token", loginForm("bob", "aVerySecurePassword"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "inactive user")
	})

	t.Run("missing fields", func(t *testing.T) {
		rr := postForm(t, env, "/api/auth/token", url.Values{"username": {"alice"}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "aVerySecurePassword", true)

	login := postForm(t, env, "/api/auth/token", loginForm("alice", "aVerySecurePassword"))
	assert.Equal(t, http.StatusOK, login.Code)
	var pair model.TokenPair
	assert.NoError(t, json.Unmarshal(login.Body.Bytes(), &pair))

	t.Run("success echoes the same refresh token", func(t *testing.T) {
		rr := postJSON(t, env, "/api/auth/refresh-token", model.RefreshRequest{RefreshToken: pair.RefreshToken})

		assert.Equal(t, http.StatusOK, rr.Code)

		var refreshed model.TokenPair
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &refreshed))
		assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
		assert.Equal(t, "bearer", refreshed.TokenType)

		claims, err := env.tokens.Decode(refreshed.AccessToken, model.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
	})

	t.Run("tampered refresh token", func(t *testing.T) {
		rr := postJSON(t, env, "/api/auth/refresh-token", model.RefreshRequest{RefreshToken: pair.RefreshToken + "x"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid refresh token")
	})

	t.Run("access token is not accepted as a refresh token", func(t *testing.T) {
		rr := postJSON(t, env, "/api/auth/refresh-token", model.RefreshRequest{RefreshToken: pair.AccessToken})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing token field", func(t *testing.T) {
		rr := postJSON(t, env, "/api/auth/refresh-token", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@example.com", "aVerySecurePassword", true)
	env.createUser(t, "bob", "bob@example.com", "aVerySecurePassword", false)

	getMe := func(authHeader string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("GET", "/api/auth/users/me", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("valid token returns profile without password", func(t *testing.T) {
		token, err := env.tokens.Encode("alice", time.Minute, model.AccessToken)
		assert.NoError(t, err)

		rr := getMe("Bearer " + token)

		assert.Equal(t, http.StatusOK, rr.Code)
		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "alice", body["username"])
		assert.NotContains(t, body, "password")
	})

	t.Run("missing header", func(t *testing.T) {
		rr := getMe("")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		rr := getMe("Token abc")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := env.tokens.Encode("alice", -time.Minute, model.AccessToken)
		assert.NoError(t, err)

		rr := getMe("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("refresh token rejected on protected route", func(t *testing.T) {
		token, err := env.tokens.Encode("alice", time.Minute, model.RefreshToken)
		assert.NoError(t, err)

		rr := getMe("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown subject", func(t *testing.T) {
		token, err := env.tokens.Encode("ghost", time.Minute, model.AccessToken)
		assert.NoError(t, err)

		rr := getMe("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		token, err := env.tokens.Encode("bob", time.Minute, model.AccessToken)
		assert.NoError(t, err)

		rr := getMe("Bearer " + token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	payload := func() *model.RegisterRequest {
		return &model.RegisterRequest{
			Username:        "alice",
			Email:           "Alice@Example.COM",
			FullName:        "Alice Liddell",
			Password:        "aVerySecurePassword",
			PasswordConfirm: "aVerySecurePassword",
		}
	}

	t.Run("success returns 201 without password and lowercases email", func(t *testing.T) {
		rr := postJSON(t, env, "/api/auth/register", payload())

		assert.Equal(t, http.StatusCreated, rr.Code)
		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "alice@example.com", body["email"])
		assert.Equal(t, true, body["is_active"])
		assert.NotContains(t, body, "password")

		// The new account can log in right away.
		login := postForm(t, env, "/api/auth/token", loginForm("alice", "aVerySecurePassword"))
		assert.Equal(t, http.StatusOK, login.Code)
	})

	t.Run("duplicate username is a conflict regardless of case", func(t *testing.T) {
		req := payload()
		req.Username = "ALICE"
		req.Email = "other@example.com"

		rr := postJSON(t, env, "/api/auth/register", req)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("duplicate email is a conflict regardless of case", func(t *testing.T) {
		req := payload()
		req.Username = "someoneelse"
		req.Email = "ALICE@example.com"

		rr := postJSON(t, env, "/api/auth/register", req)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("password mismatch", func(t *testing.T) {
		req := payload()
		req.Username = "carol"
		req.Email = "carol@example.com"
		req.PasswordConfirm = "differentPassword"

		rr := postJSON(t, env, "/api/auth/register", req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "passwords do not match")
	})

	t.Run("short password fails validation", func(t *testing.T) {
		req := payload()
		req.Username = "dave"
		req.Email = "dave@example.com"
		req.Password = "short"
		req.PasswordConfirm = "short"

		rr := postJSON(t, env, "/api/auth/register", req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
