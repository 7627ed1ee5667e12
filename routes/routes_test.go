package routes

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/controllers"
)

// registerAll wires every route group with zero-value controllers. Handlers
// are never invoked; the test only inspects the resulting route table.
func registerAll() *echo.Echo {
	e := echo.New()
	RegisterAuthRoutes(e, &controllers.AuthController{})
	RegisterCartRoutes(e, &controllers.CartController{})
	RegisterWholesaleRoutes(e, &controllers.WholesaleController{})
	RegisterAdminRoutes(e, &controllers.AdminController{}, &controllers.ProductController{}, &controllers.OrderController{}, &controllers.SupplierController{})
	RegisterCatalogRoutes(e, &controllers.ProductController{})
	RegisterOrderRoutes(e, &controllers.OrderController{})
	RegisterUserRoutes(e, &controllers.UserController{}, &controllers.NotificationController{})
	return e
}

func TestRouteSurface(t *testing.T) {
	e := registerAll()

	registered := make(map[string]bool)
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	want := []string{
		http.MethodPost + " /api/auth/register",
		http.MethodPost + " /api/auth/login",
		http.MethodPost + " /api/auth/refresh",
		http.MethodPost + " /api/auth/logout",
		http.MethodGet + " /api/auth/validate",
		http.MethodPost + " /api/wholesale/requests",
		http.MethodGet + " /api/wholesale/requests",
		http.MethodGet + " /api/admin/wholesale-requests",
		http.MethodPut + " /api/admin/wholesale-requests/:id/status",
		http.MethodDelete + " /api/admin/wholesale-requests/:id",
		http.MethodGet + " /api/admin/wholesale-customers",
		http.MethodPut + " /api/admin/products/:id/stock",
		http.MethodGet + " /api/cart",
		http.MethodPost + " /api/cart/items",
		http.MethodPost + " /api/cart/guest",
		http.MethodGet + " /api/orders/:id/pickup-code",
		http.MethodGet + " /api/users/me",
		http.MethodGet + " /api/users/addresses",
		http.MethodPost + " /api/users/addresses",
		http.MethodDelete + " /api/users/addresses/:id",
	}
	for _, w := range want {
		if !registered[w] {
			t.Errorf("route %s not registered", w)
		}
	}
}
