// controllers/wholesale_controller.go
package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/repositories"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/services"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/utils"
)

// WholesaleController handles the customer side of the wholesale upgrade
// workflow: submitting a request and checking its status.
type WholesaleController struct {
	DB       *mongo.Client
	Requests *repositories.WholesaleRepository
	logger   *log.Logger
}

func NewWholesaleController(db *mongo.Client) *WholesaleController {
	return &WholesaleController{
		DB:       db,
		Requests: repositories.NewWholesaleRepository(db),
		logger:   log.New(os.Stdout, "[WHOLESALE] ", log.LstdFlags),
	}
}

// SubmitRequest accepts the multipart upgrade form. Validation happens in
// full before any file is written or any document inserted, so a rejected
// submission leaves no trace.
func (wc *WholesaleController) SubmitRequest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token subject",
		})
	}
	if claims.WholesaleAccess {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Account already has wholesale access",
		})
	}

	submission := services.Submission{
		CompanyName:        utils.SanitizeInput(c.FormValue("company_name")),
		CommercialRegister: utils.SanitizeInput(c.FormValue("commercial_register")),
		TaxNumber:          utils.SanitizeInput(c.FormValue("tax_number")),
	}

	var idData, commercialData []byte
	var idMIME, commercialMIME string

	if fh, ferr := c.FormFile("id_document"); ferr == nil {
		data, mime, rerr := utils.ReadDocument(fh)
		if rerr == nil {
			idData, idMIME = data, mime
		}
		submission.IDDocument = services.SubmissionDocument{
			Present: true,
			Size:    fh.Size,
			MIME:    mime,
		}
	}
	if fh, ferr := c.FormFile("commercial_document"); ferr == nil {
		data, mime, rerr := utils.ReadDocument(fh)
		if rerr == nil {
			commercialData, commercialMIME = data, mime
		}
		submission.CommercialDocument = services.SubmissionDocument{
			Present: true,
			Size:    fh.Size,
			MIME:    mime,
		}
	}

	if fieldErrs := services.ValidateSubmission(submission); len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    map[string]interface{}{"errors": fieldErrs},
		})
	}
	if idData == nil || commercialData == nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Could not read uploaded documents",
		})
	}

	idURL, err := utils.SaveDocument(idData, idMIME, "wholesale")
	if err != nil {
		wc.logger.Printf("Failed to store id document for %s: %v", claims.UserID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store documents",
		})
	}
	commercialURL, err := utils.SaveDocument(commercialData, commercialMIME, "wholesale")
	if err != nil {
		wc.logger.Printf("Failed to store commercial document for %s: %v", claims.UserID, err)
		_ = utils.DeleteStoredFile(idURL)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store documents",
		})
	}

	// Thumbnails are best effort; the admin queue falls back to the
	// original document when one is missing.
	idThumb, err := utils.MakeDocumentThumbnail(idData, idMIME, "wholesale")
	if err != nil {
		wc.logger.Printf("Thumbnail for id document failed: %v", err)
	}
	commercialThumb, err := utils.MakeDocumentThumbnail(commercialData, commercialMIME, "wholesale")
	if err != nil {
		wc.logger.Printf("Thumbnail for commercial document failed: %v", err)
	}

	req := models.WholesaleRequest{
		ID:                       services.NewRequestID(),
		UserID:                   userID,
		CompanyName:              submission.CompanyName,
		CommercialRegisterNumber: submission.CommercialRegister,
		TaxNumber:                submission.TaxNumber,
		IDDocumentURL:            idURL,
		CommercialDocumentURL:    commercialURL,
		IDDocumentThumbURL:       idThumb,
		CommercialDocThumbURL:    commercialThumb,
		Status:                   models.WholesaleStatusPending,
		CreatedAt:                time.Now(),
	}

	if err := wc.Requests.Insert(ctx, req); err != nil {
		utils.DeleteStoredFiles(idURL, commercialURL, idThumb, commercialThumb)

		if errors.Is(err, repositories.ErrDuplicatePending) {
			// A pending request already exists; the outcome for the
			// customer is the same as a fresh submission.
			existing, lerr := wc.Requests.LatestByUser(ctx, userID)
			view := models.WholesaleStatusView{Status: models.WholesaleStatusPending}
			if lerr == nil && existing != nil {
				view = services.StatusViewOf(existing)
			}
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "A wholesale request is already under review",
				Data:    view,
			})
		}

		wc.logger.Printf("Failed to insert wholesale request for %s: %v", claims.UserID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to submit request",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Wholesale request submitted successfully",
		Data:    services.StatusViewOf(&req),
	})
}

// GetMyRequest reports the caller's current upgrade status. A user with no
// request on file gets not_found with a 200, and a status lookup failure
// degrades to not_found rather than blocking the storefront.
func (wc *WholesaleController) GetMyRequest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token subject",
		})
	}

	req, err := wc.Requests.LatestByUser(ctx, userID)
	if err != nil {
		wc.logger.Printf("Status lookup for %s failed, reporting not_found: %v", claims.UserID, err)
		req = nil
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Wholesale status retrieved",
		Data:    services.StatusViewOf(req),
	})
}
