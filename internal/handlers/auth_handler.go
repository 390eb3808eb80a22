package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studymate/auth-backend/internal/dto"
	"github.com/studymate/auth-backend/internal/identity"
	"github.com/studymate/auth-backend/internal/services"
)

type AuthHandler struct {
	sessions     *services.SessionService
	oauth        *services.OAuthService
	verification *services.VerificationService
}

func NewAuthHandler(sessions *services.SessionService, oauth *services.OAuthService, verification *services.VerificationService) *AuthHandler {
	return &AuthHandler{sessions: sessions, oauth: oauth, verification: verification}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgBadBody)
	}

	resp, err := h.sessions.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// NaverLogin is the Naver OAuth redirect target.
func (h *AuthHandler) NaverLogin(c *fiber.Ctx) error {
	return h.oauthLogin(c, services.ProviderNaver)
}

// KakaoLogin is the Kakao OAuth redirect target.
func (h *AuthHandler) KakaoLogin(c *fiber.Ctx) error {
	return h.oauthLogin(c, services.ProviderKakao)
}

func (h *AuthHandler) oauthLogin(c *fiber.Ctx, provider string) error {
	resp, err := h.oauth.Login(c.UserContext(), provider, c.Query("code"), c.Query("state"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) SendCode(c *fiber.Ctx) error {
	var req dto.SendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgBadBody)
	}

	if err := h.verification.Send(c.UserContext(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "인증 코드가 전송되었습니다."})
}

func (h *AuthHandler) VerifyCode(c *fiber.Ctx) error {
	var req dto.VerifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgBadBody)
	}

	username, err := h.verification.Verify(c.UserContext(), req.Email, req.AuthCode)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.VerifyCodeResponse{
		Success:  true,
		Message:  "인증이 완료되었습니다.",
		Username: username,
	})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgBadBody)
	}

	if err := h.sessions.ResetPassword(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "비밀번호가 재설정되었습니다."})
}

func (h *AuthHandler) CheckUsername(c *fiber.Ctx) error {
	var req dto.CheckUsernameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgBadBody)
	}

	available, err := h.sessions.CheckUsername(c.UserContext(), req.Username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{Success: true, Available: available})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgBadBody)
	}

	user, err := h.sessions.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{
		Success: true,
		Message: "회원가입이 완료되었습니다.",
		User:    *user,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgBadBody)
	}

	resp, err := h.sessions.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) UserInfo(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return respondError(c, services.ErrUnauthorized)
	}

	user, err := h.sessions.UserInfo(c.UserContext(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UserInfoResponse{Success: true, Username: user.Username, User: *user})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c.UserContext(), identity.AccessToken(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "로그아웃되었습니다."})
}
