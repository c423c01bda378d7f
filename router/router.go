package router

import (
	"net/http"

	"github.com/falcol/authen-api/handler"
	"github.com/falcol/authen-api/service"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/falcol/authen-api/docs"
)

func NewRouter(authHandler *handler.AuthHandler, sessions *service.SessionService) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handler.HealthCheck)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.Handle("/api/auth/token", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("/api/auth/refresh-token", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("/api/auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))

	requireUser := handler.AuthMiddleware(sessions)
	mux.Handle("/api/auth/users/me", requireUser(handler.ErrorHandlingMiddleware(authHandler.Me)))

	return mux
}
