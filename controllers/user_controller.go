// controllers/user_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/config"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/repositories"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/utils"
)

// UserController serves the account profile and address book
type UserController struct {
	DB    *mongo.Client
	Users *repositories.UserRepository
}

func NewUserController(db *mongo.Client) *UserController {
	return &UserController{
		DB:    db,
		Users: repositories.NewUserRepository(db),
	}
}

func (uc *UserController) currentUserID(c echo.Context) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	return id, err == nil
}

// GetProfile returns the authenticated user's account
func (uc *UserController) GetProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, ok := uc.currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	user, err := uc.Users.ByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Account not found",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}

// UpdateFCMToken stores the device token push notifications go to
func (uc *UserController) UpdateFCMToken(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, ok := uc.currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	var req struct {
		FCMToken string `json:"fcm_token" validate:"required"`
	}
	if err := c.Bind(&req); err != nil || req.FCMToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "FCM token is required",
		})
	}

	_, err := config.GetCollection(uc.DB, "users").
		UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
			"fcmToken":  req.FCMToken,
			"updatedAt": time.Now(),
		}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update FCM token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "FCM token updated",
	})
}

// ListAddresses returns the caller's saved shipping addresses
func (uc *UserController) ListAddresses(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, ok := uc.currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	user, err := uc.Users.ByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Account not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Addresses retrieved successfully",
		Data:    user.Addresses,
	})
}

// AddAddress appends a shipping address to the account. A new default
// clears the flag on every other address.
func (uc *UserController) AddAddress(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, ok := uc.currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	var req models.AddressRequest
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

	address := models.ShippingAddress{
		ID:        primitive.NewObjectID(),
		Label:     utils.SanitizeInput(req.Label),
		Recipient: utils.SanitizeInput(req.Recipient),
		Phone:     utils.SanitizeInput(req.Phone),
		City:      utils.SanitizeInput(req.City),
		District:  utils.SanitizeInput(req.District),
		Street:    utils.SanitizeInput(req.Street),
		Notes:     utils.SanitizeInput(req.Notes),
		IsDefault: req.IsDefault,
		CreatedAt: time.Now(),
	}

	collection := config.GetCollection(uc.DB, "users")
	if req.IsDefault {
		_, err := collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
			"$set": bson.M{"addresses.$[].isDefault": false},
		})
		if err != nil && err != mongo.ErrNoDocuments {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to save address",
			})
		}
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"addresses": address},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil || result.MatchedCount == 0 {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save address",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Address added successfully",
		Data:    address,
	})
}

// RemoveAddress deletes one shipping address
func (uc *UserController) RemoveAddress(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, ok := uc.currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid address id",
		})
	}

	result, err := config.GetCollection(uc.DB, "users").
		UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
			"$pull": bson.M{"addresses": bson.M{"_id": addressID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to remove address",
		})
	}
	if result.ModifiedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Address not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Address removed successfully",
	})
}
