package identity

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, locals func(c *fiber.Ctx), check func(c *fiber.Ctx)) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		locals(c)
		check(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		want    Identity
		wantErr bool
	}{
		{name: "valid", claims: jwt.MapClaims{"id": float64(7), "username": "minji"}, want: Identity{UserID: 7, Username: "minji"}},
		{name: "with jti", claims: jwt.MapClaims{"id": float64(7), "jti": "abc"}, want: Identity{UserID: 7, TokenID: "abc"}},
		{name: "missing id", claims: jwt.MapClaims{"username": "minji"}, wantErr: true},
		{name: "string id", claims: jwt.MapClaims{"id": "7"}, wantErr: true},
		{name: "fractional id", claims: jwt.MapClaims{"id": 7.5}, wantErr: true},
		{name: "zero id", claims: jwt.MapClaims{"id": float64(0)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t,
				func(c *fiber.Ctx) { c.Locals(TokenKey, &jwt.Token{Claims: tt.claims}) },
				func(c *fiber.Ctx) {
					got, err := FromContext(c)
					if tt.wantErr {
						assert.Error(t, err)
						return
					}
					assert.NoError(t, err)
					assert.Equal(t, tt.want, got)
				})
		})
	}
}

func TestFromContext_NoToken(t *testing.T) {
	run(t, func(*fiber.Ctx) {}, func(c *fiber.Ctx) {
		_, err := FromContext(c)
		assert.ErrorIs(t, err, ErrNoIdentity)
		assert.Empty(t, AccessToken(c))
	})
}

func TestAccessToken(t *testing.T) {
	run(t,
		func(c *fiber.Ctx) { SetAccessToken(c, "abc.def.ghi") },
		func(c *fiber.Ctx) { assert.Equal(t, "abc.def.ghi", AccessToken(c)) })
}
