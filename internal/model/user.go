package model

import (
	"time"

	"github.com/google/uuid"
)

// User представляет зарегистрированного пользователя, хэш пароля наружу не отдаётся
type User struct {
	ID              uuid.UUID  `json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	PasswordHash    string     `json:"-"`
}

// SignUpRequest тело запроса регистрации
type SignUpRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// SignInRequest тело запроса входа
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest тело запроса обновления токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair пара токенов, которую получает клиент
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Validate проверяет поля запроса регистрации
func (r *SignUpRequest) Validate() error {
	return validate.Struct(r)
}

// Validate проверяет поля запроса входа
func (r *SignInRequest) Validate() error {
	return validate.Struct(r)
}

// Validate проверяет поля запроса обновления
func (r *RefreshRequest) Validate() error {
	return validate.Struct(r)
}
