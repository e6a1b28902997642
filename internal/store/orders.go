package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

type OrderLine struct {
	ID        uuid.UUID `json:"id"`
	ProductID int64     `json:"product_id"`
	Quantity  float64   `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

type Order struct {
	ID        uuid.UUID   `json:"id"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderLine `json:"items"`
}

// CreateOrder commits an order transactionally: unit prices are read from the
// catalog inside the same transaction, so the stored total reflects catalog
// prices at commit time. This is the explicit commit step: nothing in the
// streaming pipeline writes order state.
func (s *Store) CreateOrder(ctx context.Context, items []OrderItemInput) (Order, error) {
	if len(items) == 0 {
		return Order{}, fmt.Errorf("order has no items")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	order := Order{
		ID:        uuid.New(),
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}

	for _, item := range items {
		var unitPrice float64
		err := tx.QueryRow(ctx, `SELECT price FROM products WHERE id = $1`, item.ProductID).Scan(&unitPrice)
		if err != nil {
			return Order{}, fmt.Errorf("price lookup for product %d: %w", item.ProductID, err)
		}
		order.Items = append(order.Items, OrderLine{
			ID:        uuid.New(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
		})
		order.Total += unitPrice * item.Quantity
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, total, status, created_at)
		VALUES ($1, $2, $3, $4)`,
		order.ID, order.Total, order.Status, order.CreatedAt,
	)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			line.ID, order.ID, line.ProductID, line.Quantity, line.UnitPrice,
		)
		if err != nil {
			return Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit: %w", err)
	}

	return order, nil
}
