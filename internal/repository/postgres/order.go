package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/brunomoyse/tsb-service/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository инкапсулирует логику работы с заказами в БД
type OrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository создает новый экземпляр репозитория
func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder сохраняет заказ и его позиции в рамках одной транзакции
// created_at/updated_at заполняются базой и возвращаются в order
func (r *OrderRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	const op = "repository.postgres.order.CreateOrder"

	// начинаем транзакцию
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	// гарантируем откат транзакции в случае любой ошибки
	defer tx.Rollback(ctx)

	// 1. Вставка в таблицу orders
	sql, args, err := psql.Insert("orders").
		Columns("id", "user_id", "payment_mode", "status").
		Values(order.ID, order.UserID, order.PaymentMode, order.Status).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build orders insert query: %w", op, err)
	}
	if err := tx.QueryRow(ctx, sql, args...).Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("%s: failed to insert into orders: %w", op, err)
	}

	// 2. Вставка позиций одним запросом
	if len(order.Items) > 0 {
		insert := psql.Insert("order_product").Columns("order_id", "product_id", "quantity")
		for _, item := range order.Items {
			insert = insert.Values(order.ID, item.ProductID, item.Quantity)
		}
		sql, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("%s: failed to build order_product insert query: %w", op, err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("%s: failed to insert into order_product: %w", op, err)
		}
	}

	// если все прошло успешно, подтверждаем транзакцию
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: failed to commit: %w", op, err)
	}
	return nil
}

// GetOrderByID извлекает один заказ пользователя вместе с позициями
// чужой заказ для вызывающего неотличим от несуществующего
func (r *OrderRepository) GetOrderByID(ctx context.Context, userID, orderID uuid.UUID) (model.Order, error) {
	const op = "repository.postgres.order.GetOrderByID"

	// 1. Получаем основные данные заказа одним запросом
	sql, args, err := psql.
		Select("id", "created_at", "updated_at", "user_id", "payment_mode",
			"mollie_payment_id", "mollie_payment_url", "status").
		From("orders").
		Where("id = ? AND user_id = ?", orderID, userID).
		ToSql()
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to build order query: %w", op, err)
	}

	var order model.Order
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.UserID, &order.PaymentMode,
		&order.MolliePaymentID, &order.MolliePaymentURL, &order.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		return model.Order{}, fmt.Errorf("%s: failed to query order: %w", op, err)
	}

	// 2. Получаем все позиции этого заказа
	rows, err := r.db.Query(ctx,
		`SELECT product_id, quantity FROM order_product WHERE order_id = $1 ORDER BY product_id`,
		orderID,
	)
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to query items: %w", op, err)
	}
	defer rows.Close()

	order.Items = []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return model.Order{}, fmt.Errorf("%s: failed to scan item row: %w", op, err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return model.Order{}, fmt.Errorf("%s: failed to read item rows: %w", op, err)
	}

	return order, nil
}
