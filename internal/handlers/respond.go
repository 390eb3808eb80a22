package handlers

import (
	"errors"
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/studymate/auth-backend/internal/dto"
	"github.com/studymate/auth-backend/internal/identity"
	"github.com/studymate/auth-backend/internal/services"
)

const msgBadBody = "잘못된 요청 형식입니다."

// statusFor is the single place service error kinds become HTTP statuses.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindAuthentication:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the {success:false, message} envelope for err. Server
// side failures are logged and reported; their causes never reach the client.
func respondError(c *fiber.Ctx, err error) error {
	var se *services.Error
	if !errors.As(err, &se) {
		se = &services.Error{Kind: services.KindInternal, Message: services.ErrInternal.Message, Err: err}
	}

	status := statusFor(se.Kind)
	if status >= fiber.StatusInternalServerError {
		attrs := []any{
			"error", err,
			"kind", se.Kind.String(),
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
		}
		if id, idErr := identity.FromContext(c); idErr == nil {
			attrs = append(attrs, "user_id", id.UserID)
		}
		slog.Error("request failed", attrs...)

		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}

	return c.Status(status).JSON(dto.ErrorResponse{Message: se.Message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: message})
}
