package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/controllers"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
)

// RegisterUserRoutes sets up the account profile, address book and
// notification feed.
func RegisterUserRoutes(e *echo.Echo, userController *controllers.UserController, notificationController *controllers.NotificationController) {
	users := e.Group("/api/users", middleware.JWTMiddleware())
	users.GET("/me", userController.GetProfile)
	users.PUT("/me/fcm-token", userController.UpdateFCMToken)
	users.GET("/addresses", userController.ListAddresses)
	users.POST("/addresses", userController.AddAddress)
	users.DELETE("/addresses/:id", userController.RemoveAddress)

	notifications := e.Group("/api/notifications", middleware.JWTMiddleware())
	notifications.GET("", notificationController.ListNotifications)
	notifications.PUT("/:id/read", notificationController.MarkRead)
}
