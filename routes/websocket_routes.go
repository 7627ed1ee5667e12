package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/websocket"
)

// RegisterWebSocketRoutes exposes the notification socket. Connections may
// arrive anonymous and authenticate in-band with an AUTH message.
func RegisterWebSocketRoutes(e *echo.Echo, hub *websocket.Hub) {
	e.GET("/ws", func(c echo.Context) error {
		userID := primitive.NilObjectID
		if id := middleware.GetUserIDFromToken(c); id != "" {
			if parsed, err := primitive.ObjectIDFromHex(id); err == nil {
				userID = parsed
			}
		}
		return websocket.HandleWebSocket(c, hub, userID)
	}, middleware.OptionalJWTMiddleware())
}
