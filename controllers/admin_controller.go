// controllers/admin_controller.go
package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/repositories"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/services"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/utils"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/websocket"
)

// AdminController handles the back office: admin sign-in and the wholesale
// review queue.
type AdminController struct {
	DB       *mongo.Client
	Users    *repositories.UserRepository
	Requests *repositories.WholesaleRepository
	Hub      *websocket.Hub
	logger   *log.Logger
}

func NewAdminController(db *mongo.Client, hub *websocket.Hub) *AdminController {
	return &AdminController{
		DB:       db,
		Users:    repositories.NewUserRepository(db),
		Requests: repositories.NewWholesaleRepository(db),
		Hub:      hub,
		logger:   log.New(os.Stdout, "[ADMIN] ", log.LstdFlags),
	}
}

// AdminLogin authenticates back-office staff. Customer accounts are turned
// away here even with a correct password.
func (a *AdminController) AdminLogin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	user, err := a.Users.ByEmail(ctx, email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}
	if err := utils.CheckPassword(req.Password, user.Password); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}
	if user.UserType != "admin" {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Admin access required",
		})
	}

	accessToken, refreshToken, err := middleware.GenerateJWT(
		user.ID.Hex(), user.Email, user.UserType, user.AccountType, user.WholesaleAccess,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate session",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"user":          user,
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
	})
}

// GetWholesaleQueue lists upgrade requests for review, newest first,
// paginated, defaulting to the pending ones.
func (a *AdminController) GetWholesaleQueue(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := c.QueryParam("status")
	if status == "" {
		status = models.WholesaleStatusPending
	}
	switch status {
	case models.WholesaleStatusPending, models.WholesaleStatusApproved, models.WholesaleStatusRejected:
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid status filter",
		})
	}

	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	entries, total, err := a.Requests.PendingPage(ctx, status, page, limit)
	if err != nil {
		a.logger.Printf("Failed to load wholesale queue: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load wholesale requests",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Wholesale requests retrieved",
		Data: map[string]interface{}{
			"requests": entries,
			"total":    total,
			"page":     page,
			"limit":    limit,
		},
	})
}

// DecideRequest approves or rejects one pending request. Approval also
// flips the customer's account to wholesale; both paths notify the
// customer through every channel we have.
func (a *AdminController) DecideRequest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requestID := c.Param("id")
	if !services.ValidRequestID(requestID) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request id",
		})
	}

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}
	adminID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token subject",
		})
	}

	var req models.WholesaleDecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Status must be approved or rejected",
		})
	}

	reason := ""
	if req.Status == models.WholesaleStatusRejected {
		reason = services.DefaultRejectionReason(utils.SanitizeInput(req.RejectionReason))
	}

	decided, err := a.Requests.MarkDecision(ctx, requestID, req.Status, reason, adminID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrAlreadyProcessed):
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Request has already been processed",
			})
		case errors.Is(err, repositories.ErrRequestNotFound):
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Wholesale request not found",
			})
		default:
			a.logger.Printf("Failed to decide request %s: %v", requestID, err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to process decision",
			})
		}
	}

	approved := req.Status == models.WholesaleStatusApproved
	if approved {
		if err := a.Requests.GrantWholesaleAccess(ctx, decided.UserID); err != nil {
			a.logger.Printf("Failed to grant wholesale access to %s: %v", decided.UserID.Hex(), err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Request approved but account upgrade failed",
			})
		}
	}

	// Notifications are fire and forget; a failed push never undoes a
	// recorded decision.
	if user, uerr := a.Users.ByID(ctx, decided.UserID); uerr == nil {
		go utils.NotifyWholesaleDecision(a.DB, *user, approved, reason)
	}
	if a.Hub != nil {
		if err := a.Hub.NotifyWholesaleDecision(decided.UserID, approved, services.StatusViewOf(decided)); err != nil {
			a.logger.Printf("WebSocket push for request %s skipped: %v", requestID, err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Decision recorded",
		Data:    decided,
	})
}

// DeleteRequest removes a request from the system along with its stored
// documents.
func (a *AdminController) DeleteRequest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requestID := c.Param("id")
	if !services.ValidRequestID(requestID) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request id",
		})
	}

	deleted, err := a.Requests.Delete(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Wholesale request not found",
			})
		}
		a.logger.Printf("Failed to delete request %s: %v", requestID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete request",
		})
	}

	for _, url := range []string{
		deleted.IDDocumentURL,
		deleted.CommercialDocumentURL,
		deleted.IDDocumentThumbURL,
		deleted.CommercialDocThumbURL,
	} {
		if url == "" {
			continue
		}
		if err := utils.DeleteStoredFile(url); err != nil {
			a.logger.Printf("Failed to remove document %s: %v", url, err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Wholesale request deleted",
	})
}

// GetWholesaleCustomers lists every account that currently holds wholesale
// access.
func (a *AdminController) GetWholesaleCustomers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customers, err := a.Requests.ApprovedCustomers(ctx)
	if err != nil {
		a.logger.Printf("Failed to load wholesale customers: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load wholesale customers",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Wholesale customers retrieved",
		Data: map[string]interface{}{
			"customers": customers,
			"count":     len(customers),
		},
	})
}
