package handler

import (
	"encoding/json"
	"net/http"

	"github.com/falcol/authen-api/common"
	"github.com/falcol/authen-api/logger"
	"github.com/falcol/authen-api/model"
	"github.com/falcol/authen-api/service"
)

type AuthHandler struct {
	sessions *service.SessionService
	users    *service.UserService
}

func NewAuthHandler(sessions *service.SessionService, users *service.UserService) *AuthHandler {
	return &AuthHandler{sessions: sessions, users: users}
}

// Login handles the request to exchange a username/password form for a
// token pair.
// @Summary      Log in for an access token
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200  {object}  model.TokenPair
// @Router       /api/auth/token [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	if err := r.ParseForm(); err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid form data", err)
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		return common.NewAppError(http.StatusBadRequest, "username and password are required", nil)
	}

	pair, err := h.sessions.Login(username, password)
	if err != nil {
		switch err {
		case service.ErrInvalidCredentials:
			w.Header().Set("WWW-Authenticate", "Bearer")
			return common.NewAppError(http.StatusUnauthorized, service.ErrInvalidCredentials.Error(), nil)
		case service.ErrInactiveUser:
			return common.NewAppError(http.StatusBadRequest, service.ErrInactiveUser.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not process login", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(pair)
	return nil
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself is returned unchanged.
// @Summary      Refresh the access token
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RefreshRequest  true  "Refresh token"
// @Success      200  {object}  model.TokenPair
// @Router       /api/auth/refresh-token [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	pair, err := h.sessions.Refresh(req.RefreshToken)
	if err != nil {
		if err == service.ErrInvalidRefreshToken {
			return common.NewAppError(http.StatusBadRequest, service.ErrInvalidRefreshToken.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not refresh token", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(pair)
	return nil
}

// Me returns the profile of the user resolved by AuthMiddleware.
// @Summary      Get the current user
// @Produce      json
// @Success      200  {object}  model.User
// @Security     BearerAuth
// @Router       /api/auth/users/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := r.Context().Value(CurrentUserKey).(*model.User)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user in request context", nil)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(user)
	return nil
}

// Register creates a new user account.
// @Summary      Register a new user
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterRequest  true  "New user"
// @Success      201  {object}  model.User
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	logger.Log.WithField("username", req.Username).Info("Register request received")

	user, err := h.users.Register(&req)
	if err != nil {
		switch err {
		case service.ErrUserExists:
			return common.NewAppError(http.StatusConflict, service.ErrUserExists.Error(), nil)
		case service.ErrPasswordMismatch:
			return common.NewAppError(http.StatusBadRequest, service.ErrPasswordMismatch.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not create user", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
	return nil
}
