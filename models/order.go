// models/order.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses
const (
	OrderStatusPlaced     = "placed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order is a checkout snapshot of the account cart. Line prices are copied
// at placement time and never re-read from the catalog.
type Order struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	Number     string             `json:"number" bson:"number"`
	Items      []OrderItem        `json:"items" bson:"items"`
	Total      float64            `json:"total" bson:"total"`
	Status     string             `json:"status" bson:"status"`
	Address    *ShippingAddress   `json:"address,omitempty" bson:"address,omitempty"`
	PickupCode string             `json:"pickupCode,omitempty" bson:"pickupCode,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Name      string             `json:"name" bson:"name"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Price     float64            `json:"price" bson:"price"`
}

type CheckoutRequest struct {
	// AddressID selects an entry from the user's address book; empty means
	// in-store pickup, for which a pickup code is issued.
	AddressID string `json:"address_id,omitempty"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=placed processing shipped delivered cancelled"`
}
