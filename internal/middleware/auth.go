package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/studymate/auth-backend/internal/dto"
	"github.com/studymate/auth-backend/internal/identity"
)

const (
	msgMissingHeader = "Authorization header가 필요합니다."
	msgRevoked       = "이 토큰은 더 이상 유효하지 않습니다."
	msgExpired       = "토큰이 만료되었습니다."
	msgInvalid       = "유효하지 않은 토큰입니다."
	msgServerError   = "서버 오류가 발생했습니다."
)

// RevocationChecker reports whether the access token with the given jti was
// logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTProtected rejects requests without a live access token. Revocation is
// checked after the signature, on the verified jti, because one signature has
// several base64url spellings and the raw bearer string is not a stable key.
func JWTProtected(secret []byte, revocations RevocationChecker) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwt.SigningMethodHS256.Alg(), Key: secret},
		ContextKey: identity.TokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			id, err := identity.FromContext(c)
			if err != nil || id.TokenID == "" {
				return unauthorized(c, msgInvalid)
			}

			revoked, err := revocations.IsRevoked(c.UserContext(), id.TokenID)
			if err != nil {
				slog.Error("revocation lookup failed", "error", err, "user_id", id.UserID, "request_id", c.Locals("requestid"))
				return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: msgServerError})
			}
			if revoked {
				return unauthorized(c, msgRevoked)
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return unauthorized(c, msgExpired)
			}
			return unauthorized(c, msgInvalid)
		},
	})

	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c, msgMissingHeader)
		}
		identity.SetAccessToken(c, token)
		return verify(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: message})
}
