package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studymate/auth-backend/internal/dto"
	"github.com/studymate/auth-backend/internal/identity"
	"github.com/studymate/auth-backend/internal/services"
)

// UserHandler serves the account self-service endpoints under /api/user.
type UserHandler struct {
	sessions *services.SessionService
}

func NewUserHandler(sessions *services.SessionService) *UserHandler {
	return &UserHandler{sessions: sessions}
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return respondError(c, services.ErrUnauthorized)
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgBadBody)
	}

	if err := h.sessions.ChangePassword(c.UserContext(), id.UserID, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "회원 정보가 수정되었습니다. 다시 로그인해주세요."})
}

func (h *UserHandler) GetUsername(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return respondError(c, services.ErrUnauthorized)
	}

	user, err := h.sessions.UserInfo(c.UserContext(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UsernameResponse{Success: true, Username: user.Username})
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return respondError(c, services.ErrUnauthorized)
	}

	// OAuth-only accounts may send no body at all.
	var req dto.DeleteAccountRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, msgBadBody)
		}
	}

	if err := h.sessions.DeleteAccount(c.UserContext(), id.UserID, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "회원 탈퇴가 완료되었습니다."})
}
