package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brunomoyse/tsb-service/internal/lib/logger"
	"github.com/brunomoyse/tsb-service/internal/model"
	"github.com/brunomoyse/tsb-service/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]model.Order
	err    error
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(_ context.Context, userID, orderID uuid.UUID) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.UserID != userID {
		return model.Order{}, postgres.ErrOrderNotFound
	}
	return o, nil
}

func newOrderFixture() (*OrderService, *fakeOrderRepo) {
	repo := &fakeOrderRepo{orders: make(map[uuid.UUID]model.Order)}
	return NewOrderService(repo, logger.Discard()), repo
}

func validOrderRequest() model.OrderRequest {
	return model.OrderRequest{
		UserID:      uuid.New(),
		PaymentMode: "online",
		Items: []model.OrderItem{
			{ProductID: uuid.New(), Quantity: 2},
			{ProductID: uuid.New(), Quantity: 1},
		},
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	svc, repo := newOrderFixture()
	req := validOrderRequest()

	order, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, req.UserID, order.UserID)
	assert.Equal(t, model.OrderStatusOpen, order.Status)
	require.NotNil(t, order.PaymentMode)
	assert.Equal(t, "online", *order.PaymentMode)
	assert.Equal(t, req.Items, order.Items)
	assert.False(t, order.CreatedAt.IsZero())
	assert.Contains(t, repo.orders, order.ID)
}

func TestOrderService_CreateOrderWithoutPaymentMode(t *testing.T) {
	svc, _ := newOrderFixture()
	req := validOrderRequest()
	req.PaymentMode = ""

	order, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, order.PaymentMode)
}

func TestOrderService_CreateOrderValidation(t *testing.T) {
	svc, repo := newOrderFixture()

	noItems := validOrderRequest()
	noItems.Items = nil
	zeroQty := validOrderRequest()
	zeroQty.Items[0].Quantity = 0
	noUser := validOrderRequest()
	noUser.UserID = uuid.Nil

	for name, req := range map[string]model.OrderRequest{
		"no items": noItems, "zero quantity": zeroQty, "no user": noUser,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, repo.orders)
}

func TestOrderService_CreateOrderRepositoryFailure(t *testing.T) {
	svc, repo := newOrderFixture()
	repo.err = errors.New("tx aborted")

	_, err := svc.CreateOrder(context.Background(), validOrderRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tx aborted")
}

func TestOrderService_GetOrderIsScopedToUser(t *testing.T) {
	svc, _ := newOrderFixture()
	order, err := svc.CreateOrder(context.Background(), validOrderRequest())
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), order.UserID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.GetOrder(context.Background(), uuid.New(), order.ID)
	assert.ErrorIs(t, err, postgres.ErrOrderNotFound)

	_, err = svc.GetOrder(context.Background(), order.UserID, uuid.New())
	assert.ErrorIs(t, err, postgres.ErrOrderNotFound)
}

func TestOrderService_CreateOrderMergesDuplicateProducts(t *testing.T) {
	svc, _ := newOrderFixture()
	productID := uuid.New()
	other := uuid.New()
	req := validOrderRequest()
	req.Items = []model.OrderItem{
		{ProductID: productID, Quantity: 1},
		{ProductID: other, Quantity: 4},
		{ProductID: productID, Quantity: 2},
	}

	order, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []model.OrderItem{
		{ProductID: productID, Quantity: 3},
		{ProductID: other, Quantity: 4},
	}, order.Items)
}
