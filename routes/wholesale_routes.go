package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/controllers"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
)

// RegisterWholesaleRoutes sets up the customer side of the wholesale
// upgrade workflow.
func RegisterWholesaleRoutes(e *echo.Echo, wholesaleController *controllers.WholesaleController) {
	wholesale := e.Group("/api/wholesale", middleware.JWTMiddleware())
	wholesale.POST("/requests", wholesaleController.SubmitRequest)
	wholesale.GET("/requests", wholesaleController.GetMyRequest)
}
