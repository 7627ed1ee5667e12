package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/controllers"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
)

// RegisterCartRoutes sets up the account cart and the anonymous guest cart
func RegisterCartRoutes(e *echo.Echo, cartController *controllers.CartController) {
	// Guest cart, identified by the X-Guest-ID header
	e.POST("/api/cart/guest", cartController.CreateGuestSession)
	e.GET("/api/cart/guest/items", cartController.GetGuestCart)
	e.POST("/api/cart/guest/items", cartController.AddGuestItem)
	e.PUT("/api/cart/guest/items/:id", cartController.UpdateGuestItem)
	e.DELETE("/api/cart/guest/items/:id", cartController.RemoveGuestItem)

	// Account cart
	cart := e.Group("/api/cart", middleware.JWTMiddleware())
	cart.GET("", cartController.GetCart)
	cart.DELETE("", cartController.ClearCart)
	cart.POST("/items", cartController.AddItem)
	cart.PUT("/items/:id", cartController.UpdateItem)
	cart.DELETE("/items/:id", cartController.RemoveItem)
}
