package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/falcol/authen-api/common"
	"github.com/falcol/authen-api/service"
)

type contextKey string

const CurrentUserKey contextKey = "currentUser"

// AuthMiddleware extracts the bearer token, resolves it to an active user
// through the session service and stores the user in the request context.
func AuthMiddleware(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				appErr := common.NewAppError(http.StatusUnauthorized, "Authorization header is required", nil)
				appErr.Send(w)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				appErr := common.NewAppError(http.StatusUnauthorized, "Invalid authorization header format", nil)
				appErr.Send(w)
				return
			}

			user, err := sessions.CurrentUser(headerParts[1])
			if err != nil {
				var appErr *common.AppError
				switch err {
				case service.ErrInactiveUser:
					appErr = common.NewAppError(http.StatusBadRequest, service.ErrInactiveUser.Error(), nil)
				case service.ErrCouldNotValidate:
					appErr = common.NewAppError(http.StatusUnauthorized, service.ErrCouldNotValidate.Error(), nil)
				default:
					appErr = common.NewAppError(http.StatusInternalServerError, "Could not resolve user", err)
				}
				if appErr.Code == http.StatusUnauthorized {
					w.Header().Set("WWW-Authenticate", "Bearer")
				}
				appErr.Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
