package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProductID is an opaque product identifier. Bundled products carry numeric
// ids and remote documents carry string ids; both decode to the same form.
type ProductID string

// UnmarshalJSON accepts both JSON strings and JSON numbers
func (id *ProductID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid product id %s: %w", b, err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string {
	return string(id)
}

// Product represents an artwork in the catalog
type Product struct {
	ID          ProductID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Category    string          `db:"category" json:"category"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Description string          `db:"description" json:"description"`
	ImageURL    string          `db:"image_url" json:"image_url"`
	ImageList   StringList      `db:"images" json:"images,omitempty"`
	Tags        StringList      `db:"tags" json:"tags"`
	Reviews     ReviewList      `db:"reviews" json:"reviews,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Images returns the gallery, falling back to the primary image
func (p Product) Images() []string {
	if len(p.ImageList) > 0 {
		return p.ImageList
	}
	if p.ImageURL == "" {
		return nil
	}
	return []string{p.ImageURL}
}

// Clone returns a copy that shares no slices with p
func (p Product) Clone() Product {
	c := p
	if p.ImageList != nil {
		c.ImageList = append(StringList(nil), p.ImageList...)
	}
	if p.Tags != nil {
		c.Tags = append(StringList(nil), p.Tags...)
	}
	if p.Reviews != nil {
		c.Reviews = append(ReviewList(nil), p.Reviews...)
	}
	return c
}

// ProductDraft is the payload for creating a product
type ProductDraft struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Images      StringList      `json:"images,omitempty"`
	Tags        StringList      `json:"tags"`
}

// Product builds a catalog entry from the draft
func (d ProductDraft) Product(id ProductID) Product {
	return Product{
		ID:          id,
		Name:        d.Name,
		Category:    d.Category,
		Price:       d.Price,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		ImageList:   d.Images,
		Tags:        d.Tags,
	}
}

// ProductUpdate is a partial update; nil fields are left untouched
type ProductUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Images      *StringList      `json:"images,omitempty"`
	Tags        *StringList      `json:"tags,omitempty"`
	Reviews     *ReviewList      `json:"reviews,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Category == nil && u.Price == nil && u.Description == nil &&
		u.ImageURL == nil && u.Images == nil && u.Tags == nil && u.Reviews == nil
}

// Apply returns p with the non-nil fields of u merged in
func (u ProductUpdate) Apply(p Product) Product {
	p = p.Clone()
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.Images != nil {
		p.ImageList = append(StringList(nil), (*u.Images)...)
	}
	if u.Tags != nil {
		p.Tags = append(StringList(nil), (*u.Tags)...)
	}
	if u.Reviews != nil {
		p.Reviews = append(ReviewList(nil), (*u.Reviews)...)
	}
	return p
}

// Review statuses
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
)

// Valid reports whether s is a known review status
func (s ReviewStatus) Valid() bool {
	return s == ReviewStatusPending || s == ReviewStatusApproved
}

// Review is a patron review attached to a product
type Review struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Rating int          `json:"rating"`
	Text   string       `json:"text"`
	Date   string       `json:"date"`
	Status ReviewStatus `json:"status"`
}

// CartItem pairs a product with a quantity
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns unit price times quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StringList is stored as a JSONB array
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// ReviewList is stored as a JSONB array
type ReviewList []Review

// ReviewEdit rewrites a product's review list. It runs against the latest
// stored list, so it must not capture a list read earlier.
type ReviewEdit func(ReviewList) ReviewList

func (l ReviewList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *ReviewList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}

// Order represents a placed checkout
type Order struct {
	ID             int64           `db:"id" json:"id"`
	SessionID      string          `db:"session_id" json:"session_id"`
	CustomerEmail  string          `db:"customer_email" json:"customer_email"`
	CustomerName   string          `db:"customer_name" json:"customer_name"`
	Address        string          `db:"address" json:"address"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status         string          `db:"status" json:"status"`
	IdempotencyKey string          `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderItem represents a line of an order
type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   ProductID       `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
}

// Order statuses
const (
	OrderStatusPlaced = "PLACED"
)
