package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/controllers"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
)

// RegisterAuthRoutes sets up authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	// Public
	e.POST("/api/auth/register", authController.Signup)
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/refresh", authController.RefreshToken)

	// Authenticated
	auth := e.Group("/api/auth", middleware.JWTMiddleware())
	auth.POST("/logout", authController.Logout)
	auth.GET("/validate", authController.ValidateToken)
}
