package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gwi.com/project-chat/internal/core"
	"gwi.com/project-chat/internal/store"
)

type APIHandler struct {
	userService      *core.UserService
	chatService      *core.ChatService
	assistantService *core.AssistantService
	diagnostics      *core.Diagnostics
	validate         *validator.Validate
	logger           *zap.Logger
}

func NewAPIHandler(us *core.UserService, cs *core.ChatService, as *core.AssistantService, d *core.Diagnostics, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		userService:      us,
		chatService:      cs,
		assistantService: as,
		diagnostics:      d,
		validate:         newValidator(),
		logger:           logger.Named("api"),
	}
}

// newValidator reports fields by their JSON (or query) name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// Request bodies. Required strings are pointers so that a missing field is
// rejected while an empty one is accepted.

type LoginRequest struct {
	Name      *string `json:"name" validate:"required"`
	Email     *string `json:"email" validate:"required"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type CreateProjectRequest struct {
	Name        *string `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

type CreateChatRequest struct {
	ProjectID *string `json:"project_id" validate:"required"`
	Title     *string `json:"title" validate:"required"`
}

type PostMessageRequest struct {
	ChatID  *string `json:"chat_id" validate:"required"`
	Role    *string `json:"role" validate:"required"`
	Content *string `json:"content" validate:"required"`
}

type CompleteRequest struct {
	ChatID *string `json:"chat_id" validate:"required"`
	Prompt *string `json:"prompt" validate:"required"`
}

type ownerQuery struct {
	UserID string `query:"user_id" validate:"required"`
}

type projectQuery struct {
	UserID    string `query:"user_id" validate:"required"`
	ProjectID string `query:"project_id" validate:"required"`
}

type chatQuery struct {
	UserID string `query:"user_id" validate:"required"`
	ChatID string `query:"chat_id" validate:"required"`
}

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Backend ready"})
}

func (h *APIHandler) DiagnosticsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.diagnostics.Report(r.Context()))
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID, err := h.userService.Login(r.Context(), *req.Name, *req.Email, req.AvatarURL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]store.UserID{"user_id": userID})
}

func (h *APIHandler) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	q := ownerQuery{UserID: r.URL.Query().Get("user_id")}
	if !h.check(w, q) {
		return
	}
	var req CreateProjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	projectID, err := h.chatService.CreateProject(r.Context(), store.UserID(q.UserID), *req.Name, req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]store.ProjectID{"project_id": projectID})
}

func (h *APIHandler) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	q := ownerQuery{UserID: r.URL.Query().Get("user_id")}
	if !h.check(w, q) {
		return
	}

	projects, err := h.chatService.ListProjects(r.Context(), store.UserID(q.UserID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]store.Project{"projects": projects})
}

func (h *APIHandler) CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	q := ownerQuery{UserID: r.URL.Query().Get("user_id")}
	if !h.check(w, q) {
		return
	}
	var req CreateChatRequest
	if !h.decode(w, r, &req) {
		return
	}

	chatID, err := h.chatService.CreateChat(r.Context(), store.UserID(q.UserID), *req.ProjectID, *req.Title)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]store.ChatID{"chat_id": chatID})
}

func (h *APIHandler) ListChatsHandler(w http.ResponseWriter, r *http.Request) {
	q := projectQuery{UserID: r.URL.Query().Get("user_id"), ProjectID: r.URL.Query().Get("project_id")}
	if !h.check(w, q) {
		return
	}

	chats, err := h.chatService.ListChats(r.Context(), store.UserID(q.UserID), q.ProjectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]store.Chat{"chats": chats})
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	q := ownerQuery{UserID: r.URL.Query().Get("user_id")}
	if !h.check(w, q) {
		return
	}
	var req PostMessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	messageID, err := h.chatService.PostMessage(r.Context(), store.UserID(q.UserID), *req.ChatID, *req.Role, *req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]store.MessageID{"message_id": messageID})
}

func (h *APIHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	q := chatQuery{UserID: r.URL.Query().Get("user_id"), ChatID: r.URL.Query().Get("chat_id")}
	if !h.check(w, q) {
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), store.UserID(q.UserID), q.ChatID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]store.Message{"messages": messages})
}

func (h *APIHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	q := ownerQuery{UserID: r.URL.Query().Get("user_id")}
	if !h.check(w, q) {
		return
	}
	var req CompleteRequest
	if !h.decode(w, r, &req) {
		return
	}

	reply, err := h.assistantService.Complete(r.Context(), store.UserID(q.UserID), *req.ChatID, *req.Prompt)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// decode reads a JSON body into dst and validates it. On failure it writes
// a 400 and returns false.
func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: unexpected data after JSON object")
		return false
	}
	return h.check(w, dst)
}

func (h *APIHandler) check(w http.ResponseWriter, v any) bool {
	err := h.validate.Struct(v)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
		writeDetail(w, http.StatusBadRequest, strings.Join(msgs, "; "))
		return false
	}
	writeDetail(w, http.StatusBadRequest, err.Error())
	return false
}

// writeError maps service errors to a status and a short detail. Internal
// errors are logged and never echoed to the caller.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidID):
		writeDetail(w, http.StatusBadRequest, "Invalid ID")
	case errors.Is(err, core.ErrProjectNotFound):
		writeDetail(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, core.ErrChatNotFound):
		writeDetail(w, http.StatusNotFound, "Chat not found")
	case errors.Is(err, core.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, core.ErrUnavailable):
		writeDetail(w, http.StatusInternalServerError, "Database not configured")
	default:
		h.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
