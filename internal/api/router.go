package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gwi.com/project-chat/internal/metrics"
)

func NewRouter(apiHandler *APIHandler, m *metrics.Metrics, logger *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger.Named("http")))
	r.Use(m.Middleware)
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(corsHandler(allowedOrigins))

	r.Get("/", apiHandler.RootHandler)
	r.Get("/test", apiHandler.DiagnosticsHandler)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Post("/auth/login", apiHandler.LoginHandler)

	r.Post("/projects", apiHandler.CreateProjectHandler)
	r.Get("/projects", apiHandler.ListProjectsHandler)

	r.Post("/chats", apiHandler.CreateChatHandler)
	r.Get("/chats", apiHandler.ListChatsHandler)

	r.Post("/messages", apiHandler.PostMessageHandler)
	r.Get("/messages", apiHandler.ListMessagesHandler)

	r.Post("/assistant/complete", apiHandler.CompleteHandler)

	return r
}
