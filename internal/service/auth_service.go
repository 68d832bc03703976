package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brunomoyse/tsb-service/internal/lib/logger"
	"github.com/brunomoyse/tsb-service/internal/model"
	"github.com/brunomoyse/tsb-service/internal/repository/postgres"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrValidation оборачивает ошибки validator; транспорт отвечает 400
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials не различает "нет такого email" и "неверный пароль"
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService отвечает за регистрацию, вход и обновление токенов
type AuthService struct {
	users  UserRepository
	tokens TokenIssuer
	log    *slog.Logger
	cost   int
}

// NewAuthService создает новый экземпляр сервиса авторизации
func NewAuthService(users UserRepository, tokens TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log,
		cost:   bcrypt.DefaultCost,
	}
}

// SignUp регистрирует пользователя; пароль хранится только в виде bcrypt-хэша
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (model.User, error) {
	const op = "service.AuthService.SignUp"
	log := s.log.With(slog.String("op", op))

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.Validate(); err != nil {
		return model.User{}, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		log.Error("failed to hash password", logger.Err(err))
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user := model.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		if !errors.Is(err, postgres.ErrUserExists) {
			log.Error("failed to save user", logger.Err(err))
		}
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// SignIn проверяет email и пароль и выдаёт пару токенов
func (s *AuthService) SignIn(ctx context.Context, req model.SignInRequest) (model.TokenPair, error) {
	const op = "service.AuthService.SignIn"
	log := s.log.With(slog.String("op", op))

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.Validate(); err != nil {
		return model.TokenPair{}, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return model.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to load user", logger.Err(err))
		return model.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		log.Error("failed to issue tokens", logger.Err(err))
		return model.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("user signed in", slog.String("user_id", user.ID.String()))
	return pair, nil
}

// Refresh обменивает действующий refresh-токен на новую пару
// пользователь должен по-прежнему существовать
func (s *AuthService) Refresh(ctx context.Context, req model.RefreshRequest) (model.TokenPair, error) {
	const op = "service.AuthService.Refresh"

	if err := req.Validate(); err != nil {
		return model.TokenPair{}, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}

	userID, err := s.tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return model.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return model.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.tokens.Issue(userID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// Me возвращает профиль текущего пользователя
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (model.User, error) {
	const op = "service.AuthService.Me"

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
