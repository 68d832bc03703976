package http

import (
	"net/http"

	"github.com/brunomoyse/tsb-service/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// createOrderBody тело POST /orders; пользователь берётся из токена, а не из тела
type createOrderBody struct {
	PaymentMode string            `json:"payment_mode"`
	Items       []model.OrderItem `json:"items"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var body createOrderBody
	if !h.decodeJSON(w, r, &body) {
		return
	}

	order, err := h.deps.Orders.CreateOrder(r.Context(), model.OrderRequest{
		UserID:      userID,
		PaymentMode: body.PaymentMode,
		Items:       body.Items,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	// извлекаем id из URL
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.deps.Orders.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, order)
}
