package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/controllers"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
)

// RegisterAdminRoutes sets up the back office: wholesale review, catalog
// management, supplier registry and order fulfilment.
func RegisterAdminRoutes(e *echo.Echo, adminController *controllers.AdminController, productController *controllers.ProductController, orderController *controllers.OrderController, supplierController *controllers.SupplierController) {
	e.POST("/api/admin/login", adminController.AdminLogin)

	admin := e.Group("/api/admin", middleware.JWTMiddleware(), middleware.RequireUserType("admin"))

	// Wholesale review queue
	admin.GET("/wholesale-requests", adminController.GetWholesaleQueue)
	admin.PUT("/wholesale-requests/:id/status", adminController.DecideRequest)
	admin.DELETE("/wholesale-requests/:id", adminController.DeleteRequest)
	admin.GET("/wholesale-customers", adminController.GetWholesaleCustomers)

	// Catalog management
	admin.POST("/products", productController.CreateProduct)
	admin.PUT("/products/:id", productController.UpdateProduct)
	admin.DELETE("/products/:id", productController.DeleteProduct)
	admin.PUT("/products/:id/stock", productController.AdjustStock)

	// Suppliers
	admin.GET("/suppliers", supplierController.ListSuppliers)
	admin.POST("/suppliers", supplierController.CreateSupplier)
	admin.PUT("/suppliers/:id", supplierController.UpdateSupplier)
	admin.DELETE("/suppliers/:id", supplierController.DeleteSupplier)

	// Orders
	admin.GET("/orders", orderController.ListOrders)
	admin.PUT("/orders/:id/status", orderController.UpdateOrderStatus)
}
