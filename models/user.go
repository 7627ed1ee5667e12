// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account types
const (
	AccountTypeRetail    = "retail"
	AccountTypeWholesale = "wholesale"
)

// User model
type User struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email           string             `json:"email" bson:"email"`
	Password        string             `json:"password,omitempty" bson:"password"`
	FullName        string             `json:"fullName" bson:"fullName"`
	Phone           string             `json:"phone,omitempty" bson:"phone,omitempty"`
	UserType        string             `json:"userType" bson:"userType"`       // "customer", "admin"
	AccountType     string             `json:"accountType" bson:"accountType"` // "retail", "wholesale"
	WholesaleAccess bool               `json:"wholesaleAccess" bson:"wholesaleAccess"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	LastActivityAt  time.Time          `json:"lastActivityAt" bson:"lastActivityAt"`
	FCMToken        string             `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	Addresses       []ShippingAddress  `json:"addresses,omitempty" bson:"addresses,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ShippingAddress is one entry of a user's address book. Addresses live on
// the user document so they are always scoped to the owning account.
type ShippingAddress struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Label     string             `json:"label" bson:"label"`
	Recipient string             `json:"recipient" bson:"recipient"`
	Phone     string             `json:"phone" bson:"phone"`
	City      string             `json:"city" bson:"city"`
	District  string             `json:"district,omitempty" bson:"district,omitempty"`
	Street    string             `json:"street" bson:"street"`
	Notes     string             `json:"notes,omitempty" bson:"notes,omitempty"`
	IsDefault bool               `json:"isDefault" bson:"isDefault"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// AuthRequest models
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	// GuestID ties an anonymous cart to the login so it can be merged
	// into the account cart.
	GuestID string `json:"guest_id,omitempty"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	// GuestID, when present, receives the account cart so a guest-mode
	// session can continue after logout.
	GuestID string `json:"guest_id,omitempty"`
}

type AddressRequest struct {
	Label     string `json:"label" validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	City      string `json:"city" validate:"required"`
	District  string `json:"district,omitempty"`
	Street    string `json:"street" validate:"required"`
	Notes     string `json:"notes,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
