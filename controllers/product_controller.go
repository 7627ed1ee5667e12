// controllers/product_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/config"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/utils"
)

// ProductController serves the catalog and its back-office management
type ProductController struct {
	DB     *mongo.Client
	logger *log.Logger
}

func NewProductController(db *mongo.Client) *ProductController {
	return &ProductController{
		DB:     db,
		logger: log.New(os.Stdout, "[PRODUCT] ", log.LstdFlags),
	}
}

// hideWholesalePricing blanks the wholesale price for callers who have not
// been granted wholesale access.
func hideWholesalePricing(c echo.Context, products []models.Product) []models.Product {
	claims := middleware.GetUserFromToken(c)
	if claims != nil && claims.WholesaleAccess {
		return products
	}
	for i := range products {
		products[i].WholesalePrice = 0
	}
	return products
}

// ListProducts returns the active catalog with optional category and text
// filters.
func (pc *ProductController) ListProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"isActive": true}
	if category := utils.SanitizeInput(c.QueryParam("category")); category != "" {
		filter["category"] = category
	}
	if q := utils.SanitizeInput(c.QueryParam("q")); q != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": q, "$options": "i"}},
			{"nameAr": bson.M{"$regex": q, "$options": "i"}},
		}
	}

	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	collection := config.GetCollection(pc.DB, "products")
	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load products",
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
			Message: "Failed to load products",
		})
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode products",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Products retrieved successfully",
		Data: map[string]interface{}{
			"products": hideWholesalePricing(c, products),
			"total":    total,
			"page":     page,
			"limit":    limit,
		},
	})
}

// GetProduct returns one active product
func (pc *ProductController) GetProduct(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid product id",
		})
	}

	var product models.Product
	err = config.GetCollection(pc.DB, "products").
		FindOne(ctx, bson.M{"_id": id, "isActive": true}).
		Decode(&product)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Product not found",
		})
	}

	products := hideWholesalePricing(c, []models.Product{product})
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product retrieved successfully",
		Data:    products[0],
	})
}

// CreateProduct adds a catalog entry (admin only)
func (pc *ProductController) CreateProduct(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.ProductRequest
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

	product := models.Product{
		ID:             primitive.NewObjectID(),
		Name:           utils.SanitizeInput(req.Name),
		NameAr:         utils.SanitizeInput(req.NameAr),
		Description:    utils.SanitizeInput(req.Description),
		Category:       utils.SanitizeInput(req.Category),
		SKU:            utils.SanitizeInput(req.SKU),
		Barcode:        utils.SanitizeInput(req.Barcode),
		Price:          req.Price,
		WholesalePrice: req.WholesalePrice,
		Stock:          req.Stock,
		ImageURL:       req.ImageURL,
		RequiresRx:     req.RequiresRx,
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if req.SupplierID != "" {
		supplierID, err := primitive.ObjectIDFromHex(req.SupplierID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid supplier id",
			})
		}
		product.SupplierID = supplierID
	}

	if _, err := config.GetCollection(pc.DB, "products").InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "A product with this SKU already exists",
			})
		}
		pc.logger.Printf("Failed to create product: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create product",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Product created successfully",
		Data:    product,
	})
}

// UpdateProduct edits a catalog entry (admin only)
func (pc *ProductController) UpdateProduct(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid product id",
		})
	}

	var req models.ProductRequest
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

	update := bson.M{
		"name":           utils.SanitizeInput(req.Name),
		"nameAr":         utils.SanitizeInput(req.NameAr),
		"description":    utils.SanitizeInput(req.Description),
		"category":       utils.SanitizeInput(req.Category),
		"sku":            utils.SanitizeInput(req.SKU),
		"barcode":        utils.SanitizeInput(req.Barcode),
		"price":          req.Price,
		"wholesalePrice": req.WholesalePrice,
		"stock":          req.Stock,
		"imageUrl":       req.ImageURL,
		"requiresRx":     req.RequiresRx,
		"updatedAt":      time.Now(),
	}
	if req.SupplierID != "" {
		supplierID, serr := primitive.ObjectIDFromHex(req.SupplierID)
		if serr != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid supplier id",
			})
		}
		update["supplierId"] = supplierID
	}

	result, err := config.GetCollection(pc.DB, "products").
		UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "A product with this SKU already exists",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update product",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Product not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product updated successfully",
	})
}

// DeleteProduct deactivates a product. Rows stay behind so old orders and
// carts keep resolving.
func (pc *ProductController) DeleteProduct(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid product id",
		})
	}

	result, err := config.GetCollection(pc.DB, "products").
		UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
			"isActive":  false,
			"updatedAt": time.Now(),
		}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete product",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Product not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product deleted successfully",
	})
}

// AdjustStock applies a signed stock delta and records the movement for
// audit. Stock never goes below zero.
func (pc *ProductController) AdjustStock(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid product id",
		})
	}

	var req models.StockAdjustmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A non-zero delta is required",
		})
	}

	filter := bson.M{"_id": id}
	if req.Delta < 0 {
		// Guard against draining below zero
		filter["stock"] = bson.M{"$gte": -req.Delta}
	}

	collection := config.GetCollection(pc.DB, "products")
	result := collection.FindOneAndUpdate(ctx, filter,
		bson.M{
			"$inc": bson.M{"stock": req.Delta},
			"$set": bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var product models.Product
	if err := result.Decode(&product); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Product not found or insufficient stock",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to adjust stock",
		})
	}

	adminID := middleware.GetUserIDFromToken(c)
	movement := bson.M{
		"productId": id,
		"delta":     req.Delta,
		"reason":    utils.SanitizeInput(req.Reason),
		"adminId":   adminID,
		"stock":     product.Stock,
		"createdAt": time.Now(),
	}
	if _, err := config.GetCollection(pc.DB, "stock_movements").InsertOne(ctx, movement); err != nil {
		pc.logger.Printf("Failed to record stock movement for %s: %v", id.Hex(), err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Stock adjusted successfully",
		Data: map[string]interface{}{
			"product_id": id.Hex(),
			"stock":      product.Stock,
		},
	})
}
