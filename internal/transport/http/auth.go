package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/brunomoyse/tsb-service/internal/lib/logger"
	"github.com/brunomoyse/tsb-service/internal/model"

	"github.com/google/uuid"
)

type ctxKey int

const userIDKey ctxKey = iota

// UserIDFromContext возвращает id пользователя, положенный Authenticate
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// Authenticate пропускает только запросы с валидным "Authorization: Bearer <access token>"
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !found || raw == "" {
			h.respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := h.deps.Tokens.ParseAccess(raw)
		if err != nil {
			h.log.Debug("rejected access token", logger.Err(err))
			h.respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req model.SignUpRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.deps.Auth.SignUp(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req model.SignInRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.deps.Auth.SignIn(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, pair)
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.deps.Auth.Refresh(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, pair)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := h.deps.Auth.Me(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}
