package model

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	OrderStatusOpen = "open"
)

// Order представляет заказ пользователя вместе с позициями
type Order struct {
	ID               uuid.UUID   `json:"id"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	UserID           uuid.UUID   `json:"user_id"`
	PaymentMode      *string     `json:"payment_mode"`
	MolliePaymentID  *string     `json:"mollie_payment_id"`
	MolliePaymentURL *string     `json:"mollie_payment_url"`
	Status           string      `json:"status"`
	Items            []OrderItem `json:"items"`
}

// OrderItem одна позиция заказа (таблица order_product)
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int32     `json:"quantity" validate:"required,gt=0"`
}

// OrderRequest — входные данные для создания заказа
// приходят либо из HTTP (user_id берётся из токена), либо из кафки
// теги validate используются для проверки корректности данных при получении
type OrderRequest struct {
	UserID      uuid.UUID   `json:"user_id" validate:"required"`
	PaymentMode string      `json:"payment_mode" validate:"omitempty,max=64"`
	Items       []OrderItem `json:"items" validate:"required,gt=0,dive"`
}

var validate = validator.New()

// Validate проверяет корректность структуры OrderRequest на основе тегов validate
func (o *OrderRequest) Validate() error {
	return validate.Struct(o)
}
