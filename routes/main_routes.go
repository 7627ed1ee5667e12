package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/controllers"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/repositories"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/services"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/websocket"
)

// SetupRoutes configures all API routes by calling individual route
// registration functions.
func SetupRoutes(e *echo.Echo, db *mongo.Client, redisClient *redis.Client, hub *websocket.Hub) {
	carts := repositories.NewCartRepository(db)
	guests := repositories.NewGuestCartRepository(redisClient)
	cartSync := services.NewCartSyncService(carts, guests)

	authController := controllers.NewAuthController(db, cartSync)
	cartController := controllers.NewCartController(db, carts, guests)
	wholesaleController := controllers.NewWholesaleController(db)
	adminController := controllers.NewAdminController(db, hub)
	productController := controllers.NewProductController(db)
	orderController := controllers.NewOrderController(db, carts, hub)
	userController := controllers.NewUserController(db)
	notificationController := controllers.NewNotificationController(db)

	RegisterAuthRoutes(e, authController)
	RegisterCartRoutes(e, cartController)
	RegisterWholesaleRoutes(e, wholesaleController)
	RegisterAdminRoutes(e, adminController, productController, orderController, controllers.NewSupplierController(db))
	RegisterCatalogRoutes(e, productController)
	RegisterOrderRoutes(e, orderController)
	RegisterUserRoutes(e, userController, notificationController)
	RegisterWebSocketRoutes(e, hub)
}
