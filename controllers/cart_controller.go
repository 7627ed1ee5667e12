// controllers/cart_controller.go
package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/config"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/repositories"
)

// guestIDHeader carries the anonymous cart identity for guest endpoints
const guestIDHeader = "X-Guest-ID"

// CartController handles both the account cart and the anonymous guest cart
type CartController struct {
	DB     *mongo.Client
	Carts  *repositories.CartRepository
	Guests *repositories.GuestCartRepository
	logger *log.Logger
}

func NewCartController(db *mongo.Client, carts *repositories.CartRepository, guests *repositories.GuestCartRepository) *CartController {
	return &CartController{
		DB:     db,
		Carts:  carts,
		Guests: guests,
		logger: log.New(os.Stdout, "[CART] ", log.LstdFlags),
	}
}

func (cc *CartController) userID(c echo.Context) (primitive.ObjectID, error) {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return primitive.NilObjectID, errors.New("not authenticated")
	}
	return primitive.ObjectIDFromHex(claims.UserID)
}

// lookupProduct loads the product an item refers to and prices it for the
// caller's account type.
func (cc *CartController) lookupProduct(ctx context.Context, id string, wholesale bool) (*models.Product, *models.ProductSnapshot, error) {
	productID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, errors.New("invalid product id")
	}

	var product models.Product
	err = config.GetCollection(cc.DB, "products").
		FindOne(ctx, bson.M{"_id": productID, "isActive": true}).
		Decode(&product)
	if err != nil {
		return nil, nil, errors.New("product not found")
	}

	return &product, product.Snapshot(wholesale), nil
}

// GetCart returns the authenticated user's cart with a computed total
func (cc *CartController) GetCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := cc.userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	items, err := cc.Carts.Items(ctx, userID)
	if err != nil {
		cc.logger.Printf("Failed to load cart for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load cart",
		})
	}

	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Cart retrieved successfully",
		Data: map[string]interface{}{
			"items": items,
			"total": total,
			"count": len(items),
		},
	})
}

// AddItem puts a product in the account cart. Adding a product that is
// already there sums quantities instead of creating a second row.
func (cc *CartController) AddItem(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := cc.userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	var req models.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	claims := middleware.GetUserFromToken(c)
	wholesale := claims != nil && claims.WholesaleAccess

	product, snapshot, err := cc.lookupProduct(ctx, req.ProductID, wholesale)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: err.Error(),
		})
	}
	if product.Stock < req.Quantity {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Not enough stock available",
		})
	}

	now := time.Now()
	item := models.CartItem{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  req.Quantity,
		Price:     snapshot.Price,
		Product:   snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := cc.Carts.Add(ctx, item); err != nil {
		cc.logger.Printf("Failed to add cart item for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to add item to cart",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Item added to cart",
	})
}

// UpdateItem changes the quantity of one cart row
func (cc *CartController) UpdateItem(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := cc.userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid cart item id",
		})
	}

	var req models.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	// Ownership check before touching the row
	if _, err := cc.Carts.Item(ctx, userID, itemID); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Cart item not found",
		})
	}

	if err := cc.Carts.SetQuantity(ctx, itemID, req.Quantity); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update cart item",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Cart item updated",
	})
}

// RemoveItem deletes one row from the account cart
func (cc *CartController) RemoveItem(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := cc.userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid cart item id",
		})
	}

	if err := cc.Carts.Remove(ctx, userID, itemID); err != nil {
		if errors.Is(err, repositories.ErrCartItemNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Cart item not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to remove cart item",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Cart item removed",
	})
}

// ClearCart empties the account cart
func (cc *CartController) ClearCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := cc.userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	if err := cc.Carts.Clear(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to clear cart",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Cart cleared",
	})
}

// CreateGuestSession issues a fresh guest id for an anonymous shopper
func (cc *CartController) CreateGuestSession(c echo.Context) error {
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Guest session created",
		Data: map[string]string{
			"guest_id": uuid.NewString(),
		},
	})
}

func (cc *CartController) guestID(c echo.Context) (string, error) {
	id := c.Request().Header.Get(guestIDHeader)
	if id == "" {
		return "", errors.New("missing " + guestIDHeader + " header")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", errors.New("invalid guest id")
	}
	return id, nil
}

// GetGuestCart returns the anonymous cart for the guest id in the header
func (cc *CartController) GetGuestCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	guestID, err := cc.guestID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	items, err := cc.Guests.Items(ctx, guestID)
	if err != nil {
		if errors.Is(err, repositories.ErrGuestCartUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, models.Response{
				Status:  http.StatusServiceUnavailable,
				Message: "Guest carts are temporarily unavailable",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load guest cart",
		})
	}

	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Guest cart retrieved successfully",
		Data: map[string]interface{}{
			"items": items,
			"total": total,
			"count": len(items),
		},
	})
}

// AddGuestItem adds a product to the anonymous cart, summing quantities on
// a repeat product just like the account cart does.
func (cc *CartController) AddGuestItem(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	guestID, err := cc.guestID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	var req models.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	// Guests always see retail prices
	_, snapshot, err := cc.lookupProduct(ctx, req.ProductID, false)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: err.Error(),
		})
	}

	now := time.Now()
	items, err := cc.Guests.AddItem(ctx, guestID, models.GuestCartItem{
		ID:        uuid.NewString(),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Price:     snapshot.Price,
		Product:   snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrGuestCartUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, models.Response{
				Status:  http.StatusServiceUnavailable,
				Message: "Guest carts are temporarily unavailable",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to add item to guest cart",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Item added to guest cart",
		Data:    map[string]interface{}{"items": items},
	})
}

// UpdateGuestItem changes the quantity of one guest cart row
func (cc *CartController) UpdateGuestItem(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	guestID, err := cc.guestID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	var req models.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	items, err := cc.Guests.UpdateItem(ctx, guestID, c.Param("id"), req.Quantity)
	if err != nil {
		return cc.guestMutationError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Guest cart item updated",
		Data:    map[string]interface{}{"items": items},
	})
}

// RemoveGuestItem deletes one row from the guest cart
func (cc *CartController) RemoveGuestItem(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	guestID, err := cc.guestID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	items, err := cc.Guests.RemoveItem(ctx, guestID, c.Param("id"))
	if err != nil {
		return cc.guestMutationError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Guest cart item removed",
		Data:    map[string]interface{}{"items": items},
	})
}

func (cc *CartController) guestMutationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repositories.ErrCartItemNotFound):
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Cart item not found",
		})
	case errors.Is(err, repositories.ErrGuestCartUnavailable):
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Guest carts are temporarily unavailable",
		})
	default:
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update guest cart",
		})
	}
}
