// controllers/order_controller.go
package controllers

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/config"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/repositories"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/utils"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/websocket"
)

// OrderController turns carts into orders and tracks them through the
// fulfilment pipeline.
type OrderController struct {
	DB     *mongo.Client
	Carts  *repositories.CartRepository
	Hub    *websocket.Hub
	logger *log.Logger
}

func NewOrderController(db *mongo.Client, carts *repositories.CartRepository, hub *websocket.Hub) *OrderController {
	return &OrderController{
		DB:     db,
		Carts:  carts,
		Hub:    hub,
		logger: log.New(os.Stdout, "[ORDER] ", log.LstdFlags),
	}
}

func (oc *OrderController) userID(c echo.Context) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	return id, err == nil
}

// Checkout converts the current cart into an order. Stock is taken item by
// item; if any product cannot cover its quantity the whole checkout fails
// and the stock already taken is put back.
func (oc *OrderController) Checkout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, ok := oc.userID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	var req models.CheckoutRequest
	_ = c.Bind(&req)

	items, err := oc.Carts.Items(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load cart",
		})
	}
	if len(items) == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Cart is empty",
		})
	}

	var address *models.ShippingAddress
	if req.AddressID != "" {
		address, err = oc.resolveAddress(ctx, userID, req.AddressID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
	}

	products := config.GetCollection(oc.DB, "products")
	var taken []models.OrderItem
	var total float64

	rollback := func() {
		for _, it := range taken {
			_, rerr := products.UpdateOne(ctx,
				bson.M{"_id": it.ProductID},
				bson.M{"$inc": bson.M{"stock": it.Quantity}})
			if rerr != nil {
				oc.logger.Printf("Stock rollback for %s failed: %v", it.ProductID.Hex(), rerr)
			}
		}
	}

	for _, item := range items {
		result := products.FindOneAndUpdate(ctx,
			bson.M{"_id": item.ProductID, "isActive": true, "stock": bson.M{"$gte": item.Quantity}},
			bson.M{"$inc": bson.M{"stock": -item.Quantity}},
		)
		var product models.Product
		if err := result.Decode(&product); err != nil {
			rollback()
			name := item.ProductID.Hex()
			if item.Product != nil {
				name = item.Product.Name
			}
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: fmt.Sprintf("Not enough stock for %s", name),
			})
		}

		taken = append(taken, models.OrderItem{
			ProductID: item.ProductID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
		total += item.Price * float64(item.Quantity)
	}

	now := time.Now()
	order := models.Order{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		Number:     fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), now.UnixNano()%10000),
		Items:      taken,
		Total:      total,
		Status:     models.OrderStatusPlaced,
		Address:    address,
		PickupCode: primitive.NewObjectID().Hex(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := config.GetCollection(oc.DB, "orders").InsertOne(ctx, order); err != nil {
		rollback()
		oc.logger.Printf("Failed to insert order for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to place order",
		})
	}

	if err := oc.Carts.Clear(ctx, userID); err != nil {
		oc.logger.Printf("Failed to clear cart after checkout for %s: %v", userID.Hex(), err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Order placed successfully",
		Data:    order,
	})
}

func (oc *OrderController) resolveAddress(ctx context.Context, userID primitive.ObjectID, addressID string) (*models.ShippingAddress, error) {
	id, err := primitive.ObjectIDFromHex(addressID)
	if err != nil {
		return nil, fmt.Errorf("invalid address id")
	}

	var user models.User
	err = config.GetCollection(oc.DB, "users").
		FindOne(ctx, bson.M{"_id": userID}).
		Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("account not found")
	}

	for i := range user.Addresses {
		if user.Addresses[i].ID == id {
			return &user.Addresses[i], nil
		}
	}
	return nil, fmt.Errorf("address not found")
}

// MyOrders lists the caller's orders, newest first
func (oc *OrderController) MyOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, ok := oc.userID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection(oc.DB, "orders").
		Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load orders",
		})
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode orders",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data:    orders,
	})
}

// GetOrder returns one of the caller's orders
func (oc *OrderController) GetOrder(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, ok := oc.userID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	var order models.Order
	err = config.GetCollection(oc.DB, "orders").
		FindOne(ctx, bson.M{"_id": orderID, "userId": userID}).
		Decode(&order)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Order not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Order retrieved successfully",
		Data:    order,
	})
}

// PickupQR renders the order's pickup code as a QR PNG for the pharmacy
// counter to scan.
func (oc *OrderController) PickupQR(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, ok := oc.userID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	var order models.Order
	err = config.GetCollection(oc.DB, "orders").
		FindOne(ctx, bson.M{"_id": orderID, "userId": userID}).
		Decode(&order)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Order not found",
		})
	}
	if order.PickupCode == "" {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Order has no pickup code",
		})
	}

	code, err := qr.Encode(order.PickupCode, qr.M, qr.Auto)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}
	code, err = barcode.Scale(code, 256, 256)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to encode QR code",
		})
	}

	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// ListOrders is the back-office view over all orders with an optional
// status filter.
func (oc *OrderController) ListOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	collection := config.GetCollection(oc.DB, "orders")
	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load orders",
		})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load orders",
		})
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode orders",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Orders retrieved successfully",
		Data: map[string]interface{}{
			"orders": orders,
			"total":  total,
			"page":   page,
			"limit":  limit,
		},
	})
}

// UpdateOrderStatus moves an order along the pipeline and notifies the
// customer.
func (oc *OrderController) UpdateOrderStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	var req models.OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid order status",
		})
	}

	result := config.GetCollection(oc.DB, "orders").FindOneAndUpdate(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var order models.Order
	if err := result.Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Order not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update order",
		})
	}

	title := "Order update"
	message := fmt.Sprintf("Your order %s is now %s", order.Number, order.Status)
	if err := utils.SaveNotification(oc.DB, order.UserID, title, message, models.NotificationTypeOrderStatus, map[string]interface{}{
		"order_id": order.ID.Hex(),
		"status":   order.Status,
	}); err != nil {
		oc.logger.Printf("Failed to save order notification: %v", err)
	}
	if oc.Hub != nil {
		if err := oc.Hub.NotifyOrderStatus(order.UserID, order); err != nil {
			oc.logger.Printf("WebSocket push for order %s skipped: %v", order.Number, err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Order status updated",
		Data:    order,
	})
}
