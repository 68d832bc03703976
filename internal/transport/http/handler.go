package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brunomoyse/tsb-service/internal/lib/locale"
	"github.com/brunomoyse/tsb-service/internal/lib/logger"
	"github.com/brunomoyse/tsb-service/internal/lib/token"
	"github.com/brunomoyse/tsb-service/internal/model"
	"github.com/brunomoyse/tsb-service/internal/repository/postgres"
	"github.com/brunomoyse/tsb-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// максимальный размер тела запроса
const maxBodyBytes = 1 << 20

// CatalogReader определяет интерфейс для сервиса, который отдаёт каталог
// Это позволяет хэндлеру не зависеть от конкретной реализации сервиса
type CatalogReader interface {
	GetProductsGroupedByCategory(ctx context.Context, locale, search string) ([]model.CategoryWithProducts, error)
}

// Authenticator отвечает за регистрацию, вход и профиль
type Authenticator interface {
	SignUp(ctx context.Context, req model.SignUpRequest) (model.User, error)
	SignIn(ctx context.Context, req model.SignInRequest) (model.TokenPair, error)
	Refresh(ctx context.Context, req model.RefreshRequest) (model.TokenPair, error)
	Me(ctx context.Context, userID uuid.UUID) (model.User, error)
}

// OrderManager создаёт и читает заказы текущего пользователя
type OrderManager interface {
	CreateOrder(ctx context.Context, req model.OrderRequest) (model.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (model.Order, error)
}

// AccessTokenParser проверяет access-токен из заголовка Authorization
type AccessTokenParser interface {
	ParseAccess(token string) (uuid.UUID, error)
}

// Deps собирает зависимости хэндлера; Metrics может быть nil
type Deps struct {
	Catalog CatalogReader
	Auth    Authenticator
	Orders  OrderManager
	Tokens  AccessTokenParser
	Locales *locale.Resolver
	Metrics http.Handler
}

// Handler обрабатывает HTTP-запросы
type Handler struct {
	deps   Deps
	log    *slog.Logger
	router chi.Router
}

// NewHandler создает новый экземпляр Handler
func NewHandler(deps Deps, log *slog.Logger) *Handler {
	h := &Handler{
		deps:   deps,
		log:    log,
		router: chi.NewRouter(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP делает Handler совместимым с http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// registerRoutes регистрирует все эндпоинты
func (h *Handler) registerRoutes() {
	r := h.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions, http.MethodHead,
		},
		AllowedHeaders: []string{"Authorization", "Accept", "Content-Type"},
		MaxAge:         3600,
	}))

	// liveness для балансировщика
	r.Head("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if h.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.deps.Metrics)
	}

	r.Get("/products", h.getProducts)

	r.Post("/sign-up", h.signUp)
	r.Post("/sign-in", h.signIn)
	r.Post("/refresh-token", h.refreshToken)

	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Get("/me", h.me)
		r.Post("/orders", h.createOrder)
		r.Get("/orders/{id}", h.getOrder)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		h.respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		h.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// decodeJSON читает тело запроса; неизвестные поля игнорируются
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// handleServiceError переводит ошибки сервисного слоя в HTTP-статусы
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		h.respondError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, token.ErrInvalidToken):
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, postgres.ErrUserExists):
		h.respondError(w, http.StatusConflict, "user already exists")
	case errors.Is(err, postgres.ErrOrderNotFound):
		h.respondError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, postgres.ErrUserNotFound):
		h.respondError(w, http.StatusNotFound, "user not found")
	default:
		h.log.Error("internal server error",
			logger.Err(err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal JSON response", logger.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(response)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
