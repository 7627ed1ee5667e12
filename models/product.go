// models/product.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. WholesalePrice is only revealed to accounts
// with wholesale access.
type Product struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name"`
	NameAr         string             `json:"nameAr,omitempty" bson:"nameAr,omitempty"`
	Description    string             `json:"description,omitempty" bson:"description,omitempty"`
	Category       string             `json:"category" bson:"category"`
	SKU            string             `json:"sku" bson:"sku"`
	Barcode        string             `json:"barcode,omitempty" bson:"barcode,omitempty"`
	Price          float64            `json:"price" bson:"price"`
	WholesalePrice float64            `json:"wholesalePrice,omitempty" bson:"wholesalePrice,omitempty"`
	Stock          int                `json:"stock" bson:"stock"`
	ImageURL       string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	RequiresRx     bool               `json:"requiresRx" bson:"requiresRx"`
	SupplierID     primitive.ObjectID `json:"supplierId,omitempty" bson:"supplierId,omitempty"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Snapshot returns the denormalized slice of the product cart lines keep.
// Wholesale buyers snapshot the wholesale price.
func (p *Product) Snapshot(wholesale bool) *ProductSnapshot {
	price := p.Price
	if wholesale && p.WholesalePrice > 0 {
		price = p.WholesalePrice
	}
	return &ProductSnapshot{
		ID:       p.ID.Hex(),
		Name:     p.Name,
		ImageURL: p.ImageURL,
		Price:    price,
	}
}

type ProductRequest struct {
	Name           string  `json:"name" validate:"required"`
	NameAr         string  `json:"name_ar,omitempty"`
	Description    string  `json:"description,omitempty"`
	Category       string  `json:"category" validate:"required"`
	SKU            string  `json:"sku" validate:"required"`
	Barcode        string  `json:"barcode,omitempty"`
	Price          float64 `json:"price" validate:"required,gt=0"`
	WholesalePrice float64 `json:"wholesale_price,omitempty" validate:"omitempty,gt=0"`
	Stock          int     `json:"stock" validate:"min=0"`
	ImageURL       string  `json:"image_url,omitempty"`
	RequiresRx     bool    `json:"requires_rx,omitempty"`
	SupplierID     string  `json:"supplier_id,omitempty"`
}

type StockAdjustmentRequest struct {
	// Delta may be negative; the resulting stock is clamped server-side
	// and never drops below zero.
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason,omitempty"`
}
