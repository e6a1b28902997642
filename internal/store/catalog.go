package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Product is the read-only catalog projection served to the API and to the
// assistant's prompt context.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	InStock     int     `json:"in_stock"`
}

const productColumns = `id, name, coalesce(description, ''), category, coalesce(subcategory, ''),
	unit, price, coalesce(image_url, ''), in_stock`

// ListProducts returns the full catalog in stable id order. Every caller that
// needs "store iteration order" (context building, marker resolution) relies
// on this ordering.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// SearchProductsByName returns products whose name contains term,
// case-insensitively, in stable id order.
func (s *Store) SearchProductsByName(ctx context.Context, term string) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id`, term)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Subcategory,
			&p.Unit, &p.Price, &p.ImageURL, &p.InStock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return products, nil
}
