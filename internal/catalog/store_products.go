package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reelpost/internal/services"
)

const productColumns = "id, product_key, title, description, price, commission_rate, rating, category, image_url, product_url, status, created_at, updated_at"

// UpsertProduct inserts a product or refreshes its listing fields when the
// product key already exists. Status and timestamps of existing rows are
// preserved except updated_at.
func (s *Store) UpsertProduct(ctx context.Context, p *Product) (*Product, error) {
	if p == nil {
		return nil, errors.New("product is nil")
	}
	if p.ProductKey == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "upsert product", "product key is empty", nil)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	status := p.Status
	if status == "" {
		status = ProductPending
	}

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO products (
            product_key, title, description, price, commission_rate, rating,
            category, image_url, product_url, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(product_key) DO UPDATE SET
            title = excluded.title,
            description = excluded.description,
            price = excluded.price,
            commission_rate = excluded.commission_rate,
            rating = excluded.rating,
            category = excluded.category,
            image_url = excluded.image_url,
            product_url = excluded.product_url,
            updated_at = excluded.updated_at`,
		p.ProductKey,
		p.Title,
		nullableString(p.Description),
		p.Price,
		p.CommissionRate,
		p.Rating,
		nullableString(p.Category),
		nullableString(p.ImageURL),
		nullableString(p.ProductURL),
		status,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert product: %w", err)
	}
	return s.ProductByKey(ctx, p.ProductKey)
}

// ProductByKey fetches a product by its platform identifier.
func (s *Store) ProductByKey(ctx context.Context, key string) (*Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE product_key = ?`, key)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "product lookup", key, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts returns products filtered by status set (or all products when
// no status is provided), ordered by creation time.
func (s *Store) ListProducts(ctx context.Context, statuses ...ProductStatus) ([]*Product, error) {
	baseQuery := `SELECT ` + productColumns + ` FROM products`
	orderClause := ` ORDER BY created_at, id`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// UpdateProductStatus transitions a product to the given status.
func (s *Store) UpdateProductStatus(ctx context.Context, key string, status ProductStatus) error {
	if _, ok := productStatuses[status]; !ok {
		return services.Wrap(services.ErrValidation, "catalog", "update product status", string(status), nil)
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE products SET status = ?, updated_at = ? WHERE product_key = ?`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		key,
	)
	if err != nil {
		return fmt.Errorf("update product status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "catalog", "update product status", key, nil)
	}
	return nil
}

func scanProduct(scanner interface{ Scan(dest ...any) error }) (*Product, error) {
	var (
		id          int64
		key         string
		title       string
		description sql.NullString
		price       float64
		commission  float64
		rating      float64
		category    sql.NullString
		imageURL    sql.NullString
		productURL  sql.NullString
		statusStr   string
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(
		&id, &key, &title, &description, &price, &commission, &rating,
		&category, &imageURL, &productURL, &statusStr, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}

	product := &Product{
		ID:             id,
		ProductKey:     key,
		Title:          title,
		Description:    description.String,
		Price:          price,
		CommissionRate: commission,
		Rating:         rating,
		Category:       category.String,
		ImageURL:       imageURL.String,
		ProductURL:     productURL.String,
		Status:         ProductStatus(statusStr),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		product.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		product.UpdatedAt = updated
	}
	return product, nil
}
