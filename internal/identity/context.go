package identity

import (
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys shared with the auth middleware.
const (
	TokenKey       = "user"
	AccessTokenKey = "access_token"
)

var ErrNoIdentity = errors.New("identity: no verified token in context")

// Identity is the authenticated caller as read from the access token.
type Identity struct {
	UserID   uint
	Username string
	// TokenID is the jti claim; revocation is keyed on it.
	TokenID string
}

// FromContext reads the claims the JWT middleware stored for this request.
func FromContext(c *fiber.Ctx) (Identity, error) {
	token, ok := c.Locals(TokenKey).(*jwt.Token)
	if !ok || token == nil {
		return Identity{}, ErrNoIdentity
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("identity: unexpected claims type")
	}

	// JSON numbers decode as float64.
	id, ok := claims["id"].(float64)
	if !ok || id <= 0 || id > math.MaxUint32 || id != math.Trunc(id) {
		return Identity{}, errors.New("identity: missing id claim")
	}
	username, _ := claims["username"].(string)
	tokenID, _ := claims["jti"].(string)

	return Identity{UserID: uint(id), Username: username, TokenID: tokenID}, nil
}

// SetAccessToken keeps the raw bearer token for handlers that act on it.
func SetAccessToken(c *fiber.Ctx, token string) {
	c.Locals(AccessTokenKey, token)
}

func AccessToken(c *fiber.Ctx) string {
	token, _ := c.Locals(AccessTokenKey).(string)
	return token
}
