package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/controllers"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
)

// RegisterCatalogRoutes sets up the public product catalog. The optional
// JWT lets signed-in wholesale customers see their pricing; anonymous
// callers pass straight through.
func RegisterCatalogRoutes(e *echo.Echo, productController *controllers.ProductController) {
	catalog := e.Group("/api/products", middleware.OptionalJWTMiddleware())
	catalog.GET("", productController.ListProducts)
	catalog.GET("/:id", productController.GetProduct)
}
