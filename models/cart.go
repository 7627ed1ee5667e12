// models/cart.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one line of an account cart. At most one item exists per
// (user, productId) pair; quantity changes never duplicate rows.
type CartItem struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Price     float64            `json:"price" bson:"price"`
	Product   *ProductSnapshot   `json:"product,omitempty" bson:"product,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// GuestCartItem is one line of an anonymous cart held in Redis. The ID is
// client-visible and generated when the item is added; the product snapshot
// is denormalized so the storefront can render the cart without extra
// lookups.
type GuestCartItem struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     float64          `json:"price"`
	Product   *ProductSnapshot `json:"product,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ProductSnapshot is the denormalized slice of a product a cart line keeps.
type ProductSnapshot struct {
	ID       string  `json:"id" bson:"id"`
	Name     string  `json:"name" bson:"name"`
	ImageURL string  `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Price    float64 `json:"price" bson:"price"`
}

// Cart request models
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartMergeSummary reports the outcome of merging a guest cart into an
// account cart at login. Failures are per-item and non-fatal.
type CartMergeSummary struct {
	Merged   int      `json:"merged"`
	Added    int      `json:"added"`
	Failed   int      `json:"failed"`
	Skipped  bool     `json:"skipped,omitempty"` // server cart unavailable, guest cart left untouched
	Failures []string `json:"failures,omitempty"`
}
