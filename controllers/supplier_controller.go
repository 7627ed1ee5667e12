// controllers/supplier_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/config"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/utils"
)

// SupplierController manages the pharmacy's supplier registry (admin only)
type SupplierController struct {
	DB *mongo.Client
}

func NewSupplierController(db *mongo.Client) *SupplierController {
	return &SupplierController{DB: db}
}

func (sc *SupplierController) ListSuppliers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := config.GetCollection(sc.DB, "suppliers").
		Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load suppliers",
		})
	}
	defer cursor.Close(ctx)

	var suppliers []models.Supplier
	if err := cursor.All(ctx, &suppliers); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode suppliers",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Suppliers retrieved successfully",
		Data:    suppliers,
	})
}

func (sc *SupplierController) CreateSupplier(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.SupplierRequest
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

	supplier := models.Supplier{
		ID:            primitive.NewObjectID(),
		Name:          utils.SanitizeInput(req.Name),
		ContactPerson: utils.SanitizeInput(req.ContactPerson),
		Phone:         utils.SanitizeInput(req.Phone),
		Email:         utils.SanitizeInput(req.Email),
		Address:       utils.SanitizeInput(req.Address),
		IsActive:      true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if _, err := config.GetCollection(sc.DB, "suppliers").InsertOne(ctx, supplier); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create supplier",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Supplier created successfully",
		Data:    supplier,
	})
}

func (sc *SupplierController) UpdateSupplier(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid supplier id",
		})
	}

	var req models.SupplierRequest
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

	result, err := config.GetCollection(sc.DB, "suppliers").
		UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
			"name":          utils.SanitizeInput(req.Name),
			"contactPerson": utils.SanitizeInput(req.ContactPerson),
			"phone":         utils.SanitizeInput(req.Phone),
			"email":         utils.SanitizeInput(req.Email),
			"address":       utils.SanitizeInput(req.Address),
			"updatedAt":     time.Now(),
		}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update supplier",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Supplier not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Supplier updated successfully",
	})
}

func (sc *SupplierController) DeleteSupplier(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid supplier id",
		})
	}

	result, err := config.GetCollection(sc.DB, "suppliers").
		UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
			"isActive":  false,
			"updatedAt": time.Now(),
		}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete supplier",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Supplier not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Supplier deleted successfully",
	})
}
