package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/controllers"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
)

// RegisterOrderRoutes sets up the customer-facing order endpoints
func RegisterOrderRoutes(e *echo.Echo, orderController *controllers.OrderController) {
	orders := e.Group("/api/orders", middleware.JWTMiddleware())
	orders.POST("", orderController.Checkout)
	orders.GET("", orderController.MyOrders)
	orders.GET("/:id", orderController.GetOrder)
	orders.GET("/:id/pickup-code", orderController.PickupQR)
}
