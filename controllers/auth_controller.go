// controllers/auth_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/config"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/repositories"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/services"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/utils"
)

const (
	maxLoginAttempts     = 5
	loginLockoutDuration = 30 * time.Minute
)

// AuthController contains authentication logic
type AuthController struct {
	DB       *mongo.Client
	Users    *repositories.UserRepository
	CartSync *services.CartSyncService
	logger   *log.Logger

	loginAttempts map[string]struct {
		count       int
		lastAttempt time.Time
	}
	loginAttemptsMu sync.RWMutex
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client, cartSync *services.CartSyncService) *AuthController {
	ac := &AuthController{
		DB:       db,
		Users:    repositories.NewUserRepository(db),
		CartSync: cartSync,
		logger:   log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
		loginAttempts: make(map[string]struct {
			count       int
			lastAttempt time.Time
		}),
	}

	go ac.startLoginAttemptCleanupRoutine()

	return ac
}

func (ac *AuthController) startLoginAttemptCleanupRoutine() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		ac.loginAttemptsMu.Lock()
		for key, attempt := range ac.loginAttempts {
			if time.Since(attempt.lastAttempt) > loginLockoutDuration {
				delete(ac.loginAttempts, key)
			}
		}
		ac.loginAttemptsMu.Unlock()
	}
}

func (ac *AuthController) isLockedOut(key string) bool {
	ac.loginAttemptsMu.RLock()
	defer ac.loginAttemptsMu.RUnlock()
	attempt, ok := ac.loginAttempts[key]
	if !ok {
		return false
	}
	return attempt.count >= maxLoginAttempts && time.Since(attempt.lastAttempt) < loginLockoutDuration
}

func (ac *AuthController) recordFailedAttempt(key string) {
	ac.loginAttemptsMu.Lock()
	defer ac.loginAttemptsMu.Unlock()
	attempt := ac.loginAttempts[key]
	attempt.count++
	attempt.lastAttempt = time.Now()
	ac.loginAttempts[key] = attempt
}

func (ac *AuthController) clearAttempts(key string) {
	ac.loginAttemptsMu.Lock()
	defer ac.loginAttemptsMu.Unlock()
	delete(ac.loginAttempts, key)
}

// Signup registers a new retail customer account
func (ac *AuthController) Signup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.SignupRequest
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

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	phone := ""
	if req.Phone != "" {
		phone, err = utils.SanitizePhone(req.Phone)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number",
			})
		}
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	now := time.Now()
	user := models.User{
		ID:              primitive.NewObjectID(),
		Email:           email,
		Password:        hashed,
		FullName:        utils.SanitizeInput(req.FullName),
		Phone:           phone,
		UserType:        "customer",
		AccountType:     models.AccountTypeRetail,
		WholesaleAccess: false,
		IsActive:        true,
		LastActivityAt:  now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	collection := config.GetCollection(ac.DB, "users")
	if _, err := collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "An account with this email already exists",
			})
		}
		ac.logger.Printf("Failed to create user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	accessToken, refreshToken, err := middleware.GenerateJWT(
		user.ID.Hex(), user.Email, user.UserType, user.AccountType, user.WholesaleAccess,
	)
	if err != nil {
		ac.logger.Printf("Failed to generate tokens for new user %s: %v", user.ID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Account created but login failed, please sign in",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Account created successfully",
		Data: map[string]interface{}{
			"user":          user,
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
	})
}

// Login authenticates a customer and, when a guest id is supplied, folds the
// guest cart into the account cart before responding.
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if req.Password == "" || (req.Email == "" && req.Phone == "") {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email or phone and password are required",
		})
	}

	var user *models.User
	var err error
	var lockoutKey string

	if req.Email != "" {
		email, serr := utils.SanitizeEmail(req.Email)
		if serr != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid email address",
			})
		}
		lockoutKey = email
		if ac.isLockedOut(lockoutKey) {
			return c.JSON(http.StatusTooManyRequests, models.Response{
				Status:  http.StatusTooManyRequests,
				Message: "Too many failed attempts, please try again later",
			})
		}
		user, err = ac.Users.ByEmail(ctx, email)
	} else {
		phone, serr := utils.SanitizePhone(req.Phone)
		if serr != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number",
			})
		}
		lockoutKey = phone
		if ac.isLockedOut(lockoutKey) {
			return c.JSON(http.StatusTooManyRequests, models.Response{
				Status:  http.StatusTooManyRequests,
				Message: "Too many failed attempts, please try again later",
			})
		}
		user, err = ac.Users.ByPhone(ctx, phone)
	}

	if err != nil {
		ac.recordFailedAttempt(lockoutKey)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	if err := utils.CheckPassword(req.Password, user.Password); err != nil {
		ac.recordFailedAttempt(lockoutKey)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}
	ac.clearAttempts(lockoutKey)

	accessToken, refreshToken, err := middleware.GenerateJWT(
		user.ID.Hex(), user.Email, user.UserType, user.AccountType, user.WholesaleAccess,
	)
	if err != nil {
		ac.logger.Printf("Failed to generate tokens for %s: %v", user.ID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate session",
		})
	}

	data := map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	}

	// The cart merge runs after authentication succeeds and can never turn
	// a successful login into a failure.
	if req.GuestID != "" && ac.CartSync != nil && user.UserType == "customer" {
		summary, mergeErr := ac.CartSync.MergeOnLogin(ctx, user.ID, req.GuestID)
		if mergeErr != nil {
			ac.logger.Printf("Cart merge for user %s skipped: %v", user.ID.Hex(), mergeErr)
		}
		data["cart_merge"] = summary
	}

	user.Password = ""
	data["user"] = user

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    data,
	})
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (ac *AuthController) RefreshToken(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.RefreshTokenRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Refresh token is required",
		})
	}

	claims, err := middleware.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired refresh token",
		})
	}
	if middleware.IsTokenBlacklisted(req.RefreshToken) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Refresh token has been revoked",
		})
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token subject",
		})
	}

	// Claims like wholesale access may have changed since the token was
	// issued, so re-read the user instead of copying the old claims.
	user, err := ac.Users.ByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Account no longer exists",
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

	// One-time use: the old refresh token dies with the exchange
	if claims.ExpiresAt > 0 {
		middleware.BlacklistToken(req.RefreshToken, time.Unix(claims.ExpiresAt, 0))
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token refreshed",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
	})
}

// Logout revokes the current access token and writes the account cart back
// to the guest store when a guest id is supplied.
func (ac *AuthController) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	var req models.LogoutRequest
	// Body is optional; logout with no body is still a logout
	_ = c.Bind(&req)

	if req.GuestID != "" && ac.CartSync != nil {
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err == nil {
			if err := ac.CartSync.WriteBackOnLogout(ctx, userID, req.GuestID); err != nil {
				ac.logger.Printf("Cart write-back for user %s failed: %v", claims.UserID, err)
			}
		}
	}

	authHeader := c.Request().Header.Get("Authorization")
	if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader && token != "" {
		expiry := time.Now().Add(middleware.AccessTokenTTL)
		if claims.ExpiresAt > 0 {
			expiry = time.Unix(claims.ExpiresAt, 0)
		}
		middleware.BlacklistToken(token, expiry)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// ValidateToken reports whether the presented access token is still good
// and returns the identity baked into it.
func (ac *AuthController) ValidateToken(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token is valid",
		Data: map[string]interface{}{
			"user_id":          claims.UserID,
			"email":            claims.Email,
			"user_type":        claims.UserType,
			"account_type":     claims.AccountType,
			"wholesale_access": claims.WholesaleAccess,
			"expires_at":       claims.ExpiresAt,
		},
	})
}
