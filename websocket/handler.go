package websocket

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection and keeps the client registered
// until it disconnects. Clients that arrive without a token can authenticate
// later with an "AUTH:<token>" text message.
func HandleWebSocket(c echo.Context, hub *Hub, userID primitive.ObjectID) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		UserID:        userID,
		Conn:          conn,
		Authenticated: userID != primitive.NilObjectID,
	}

	hub.register <- client

	if client.Authenticated {
		conn.WriteJSON(Notification{
			Type:    "connected",
			Message: "WebSocket connection established",
			UserID:  userID.Hex(),
		})
	} else {
		conn.WriteJSON(Notification{
			Type:         "connected",
			Message:      "WebSocket connection established. Please authenticate to receive notifications.",
			RequiresAuth: true,
		})
	}

	go func() {
		defer func() {
			hub.unregister <- client
		}()

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				break
			}

			if messageType != websocket.TextMessage {
				continue
			}
			messageStr := string(message)
			if !strings.HasPrefix(messageStr, "AUTH:") {
				continue
			}

			token := strings.TrimPrefix(messageStr, "AUTH:")
			authedID, err := authenticateToken(token)
			if err != nil {
				conn.WriteJSON(Notification{
					Type:         "auth_response",
					Message:      "Authentication failed: " + err.Error(),
					RequiresAuth: true,
				})
				continue
			}

			hub.AuthenticateClient(client, authedID)
			conn.WriteJSON(Notification{
				Type:    "auth_response",
				Message: "Authenticated successfully",
				UserID:  authedID.Hex(),
			})
		}
	}()

	return nil
}

// authenticateToken validates an access token sent over the socket and
// returns the user it belongs to.
func authenticateToken(tokenString string) (primitive.ObjectID, error) {
	if middleware.IsTokenBlacklisted(tokenString) {
		return primitive.NilObjectID, errTokenRevoked
	}

	claims := &middleware.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigning
		}
		return []byte(middleware.GetJWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, errTokenInvalid
	}
	if claims.Refresh {
		return primitive.NilObjectID, errTokenInvalid
	}

	return primitive.ObjectIDFromHex(claims.UserID)
}

var (
	errTokenRevoked      = &websocketAuthError{"token has been revoked"}
	errTokenInvalid      = &websocketAuthError{"invalid token"}
	errUnexpectedSigning = &websocketAuthError{"unexpected signing method"}
)

type websocketAuthError struct{ msg string }

func (e *websocketAuthError) Error() string { return e.msg }
