package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

// ErrProductNotFound is returned when a write targets a missing product
var ErrProductNotFound = errors.New("product not found")

const productColumns = `id, name, category, price, description, image_url, images, tags, reviews, created_at, updated_at`

// ListProducts returns the whole catalog ordered by name
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT "+productColumns+" FROM products ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a product by ID
func (s *Store) GetProduct(ctx context.Context, id models.ProductID) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a product, assigning an id when it has none
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = models.ProductID(uuid.NewString())
	}

	query := `
		INSERT INTO products (id, name, category, price, description, image_url, images, tags, reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	row := s.db.QueryRowxContext(ctx, query,
		p.ID.String(), p.Name, p.Category, p.Price, p.Description, p.ImageURL, p.ImageList, p.Tags, p.Reviews)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProduct applies a partial update
func (s *Store) UpdateProduct(ctx context.Context, id models.ProductID, upd models.ProductUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	query, args := productUpdateQuery(id, upd)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return expectRow(res, id)
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id models.ProductID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectRow(res, id)
}

// SeedProducts inserts every product under a fresh id in one transaction
func (s *Store) SeedProducts(ctx context.Context, products []models.Product) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO products (id, name, category, price, description, image_url, images, tags, reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return fmt.Errorf("failed to prepare seed: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		_, err := stmt.ExecContext(ctx,
			uuid.NewString(), p.Name, p.Category, p.Price, p.Description, p.ImageURL, p.ImageList, p.Tags, p.Reviews)
		if err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
	}

	return tx.Commit()
}

// AppendReview adds a review to the end of the product's list in a single
// statement
func (s *Store) AppendReview(ctx context.Context, id models.ProductID, review models.Review) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET reviews = reviews || $1::jsonb, updated_at = NOW() WHERE id = $2",
		models.ReviewList{review}, id.String())
	if err != nil {
		return fmt.Errorf("failed to append review: %w", err)
	}
	return expectRow(res, id)
}

// EditReviews applies edit to the product's reviews while holding the row lock
func (s *Store) EditReviews(ctx context.Context, id models.ProductID, edit models.ReviewEdit) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var reviews models.ReviewList
	err = tx.GetContext(ctx, &reviews, "SELECT reviews FROM products WHERE id = $1 FOR UPDATE", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to lock reviews: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE products SET reviews = $1, updated_at = NOW() WHERE id = $2",
		edit(reviews), id.String())
	if err != nil {
		return fmt.Errorf("failed to edit reviews: %w", err)
	}

	return tx.Commit()
}

func productUpdateQuery(id models.ProductID, upd models.ProductUpdate) (string, []interface{}) {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Category != nil {
		set("category", *upd.Category)
	}
	if upd.Price != nil {
		set("price", *upd.Price)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.ImageURL != nil {
		set("image_url", *upd.ImageURL)
	}
	if upd.Images != nil {
		set("images", *upd.Images)
	}
	if upd.Tags != nil {
		set("tags", *upd.Tags)
	}
	if upd.Reviews != nil {
		set("reviews", *upd.Reviews)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id.String())
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args
}

func expectRow(res sql.Result, id models.ProductID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return nil
}
