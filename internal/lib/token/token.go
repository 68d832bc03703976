package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/brunomoyse/tsb-service/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrInvalidToken возвращается, если токен не прошёл проверку
var ErrInvalidToken = errors.New("invalid token")

// Claims полезная нагрузка токена, sub хранит id пользователя
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет пары access/refresh токенов (HS256)
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewManager создает новый экземпляр менеджера токенов
func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue выпускает новую пару токенов для пользователя
func (m *Manager) Issue(userID uuid.UUID) (model.TokenPair, error) {
	const op = "lib.token.Manager.Issue"

	access, err := m.sign(userID, TypeAccess, m.accessTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := m.sign(userID, TypeRefresh, m.refreshTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseAccess проверяет access-токен и возвращает id пользователя
func (m *Manager) ParseAccess(token string) (uuid.UUID, error) {
	return m.parse(token, TypeAccess)
}

// ParseRefresh проверяет refresh-токен; access-токен здесь не принимается
func (m *Manager) ParseRefresh(token string) (uuid.UUID, error) {
	return m.parse(token, TypeRefresh)
}

func (m *Manager) sign(userID uuid.UUID, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) parse(raw, wantType string) (uuid.UUID, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.TokenType != wantType {
		return uuid.Nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, wantType, claims.TokenType)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject: %w", ErrInvalidToken, err)
	}

	return userID, nil
}
