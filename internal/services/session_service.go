package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/studymate/auth-backend/internal/dto"
	"github.com/studymate/auth-backend/internal/models"
	"github.com/studymate/auth-backend/internal/repository"
)

// CodeConsumer checks and spends an email verification code.
type CodeConsumer interface {
	Verify(ctx context.Context, email, code string) (string, error)
	Consume(ctx context.Context, email, code string) error
}

type SessionServiceConfig struct {
	RotateRefresh bool
}

// SessionService owns the password account lifecycle and the
// Anonymous -> Authenticated -> Refreshed* -> LoggedOut session states.
type SessionService struct {
	users       UserStore
	hasher      *PasswordHasher
	tokens      *TokenIssuer
	revocations *RevocationList
	codes       CodeConsumer
	cfg         SessionServiceConfig

	dummyOnce sync.Once
	dummyHash string
}

func NewSessionService(
	users UserStore,
	hasher *PasswordHasher,
	tokens *TokenIssuer,
	revocations *RevocationList,
	codes CodeConsumer,
	cfg SessionServiceConfig,
) *SessionService {
	return &SessionService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		codes:       codes,
		cfg:         cfg,
	}
}

func (s *SessionService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if req.Username == "" || req.Password == "" || req.Name == "" ||
		req.Birthdate == "" || req.PhoneNumber == "" || req.Email == "" {
		return nil, validationError("모든 필드를 입력해주세요.")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, validationError("올바른 이메일 주소를 입력해주세요.")
	}
	birthDate, err := time.Parse(time.DateOnly, req.Birthdate)
	if err != nil {
		return nil, validationError("생년월일 형식이 올바르지 않습니다. (YYYY-MM-DD)")
	}

	if reservedUsername(req.Username) {
		return nil, ErrUsernameReserved
	}
	taken, err := s.users.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, internalError(err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, asServiceError(err)
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: &hash,
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		BirthDate:    &birthDate,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, internalError(err)
	}

	slog.Info("user registered", "user_id", user.ID, "action", "register")
	return publicUser(&user), nil
}

func (s *SessionService) CheckUsername(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, validationError("아이디를 입력해주세요")
	}
	if reservedUsername(username) {
		return false, nil
	}
	taken, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return false, internalError(err)
	}
	return !taken, nil
}

// Login checks the password and starts a new session. Unknown usernames and
// wrong passwords fail identically, including the bcrypt work done.
func (s *SessionService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, validationError("아이디와 비밀번호를 입력해주세요.")
	}

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(req.Password, s.dummyDigest())
			return nil, ErrInvalidCredentials
		}
		return nil, internalError(err)
	}

	if !user.HasPassword() || !s.hasher.Verify(req.Password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.StartSession(ctx, user)
	if err != nil {
		return nil, err
	}
	slog.Info("user logged in", "user_id", user.ID, "action", "login")
	return resp, nil
}

// StartSession issues an access/refresh pair and persists the refresh-token
// hash, replacing whatever session the user had before.
func (s *SessionService) StartSession(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return nil, internalError(err)
	}
	refreshToken, err := s.rotateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *publicUser(user),
	}, nil
}

func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	if refreshToken == "" {
		return nil, validationError("Refresh Token이 제공되지 않았습니다.")
	}

	claims, err := s.tokens.Verify(refreshToken, RefreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh.withCause(err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, internalError(err)
	}
	if user.RefreshToken == nil || !s.hasher.VerifyToken(refreshToken, *user.RefreshToken) {
		slog.Warn("refresh token mismatch", "user_id", user.ID, "action", "refresh")
		return nil, ErrInvalidRefresh
	}

	accessToken, err := s.tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return nil, internalError(err)
	}

	nextRefresh := refreshToken
	if s.cfg.RotateRefresh {
		if nextRefresh, err = s.rotateRefreshToken(ctx, user); err != nil {
			return nil, err
		}
	}

	return &dto.RefreshResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: nextRefresh,
	}, nil
}

// Logout revokes the presented access token until its natural expiry and
// drops the stored refresh-token hash.
func (s *SessionService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.Verify(accessToken, AccessToken)
	if err != nil {
		return ErrUnauthorized.withCause(err)
	}

	if claims.ID == "" {
		return ErrUnauthorized
	}

	if err := s.revocations.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		return internalError(err)
	}
	if err := s.users.SetRefreshToken(ctx, claims.UserID, nil); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return internalError(err)
	}

	slog.Info("user logged out", "user_id", claims.UserID, "action", "logout")
	return nil
}

func (s *SessionService) UserInfo(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return publicUser(user), nil
}

// ChangePassword requires the current password. A non-empty email is stored
// alongside the new password.
func (s *SessionService) ChangePassword(ctx context.Context, userID uint, req *dto.UpdateUserRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return validationError("현재 비밀번호와 새 비밀번호를 입력해주세요.")
	}
	email := strings.TrimSpace(req.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return validationError("올바른 이메일 주소를 입력해주세요.")
		}
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPassword() {
		return ErrNoPassword
	}
	if !s.hasher.Verify(req.CurrentPassword, *user.PasswordHash) {
		return ErrCurrentPassword
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return asServiceError(err)
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return internalError(err)
	}
	if email != "" && email != user.Email {
		if err := s.users.SetEmail(ctx, user.ID, email); err != nil {
			return internalError(err)
		}
	}

	slog.Info("password changed", "user_id", user.ID, "action", "change_password")
	return nil
}

// DeleteAccount removes the user. Password accounts must confirm with the
// current password; OAuth-only accounts have none to confirm.
func (s *SessionService) DeleteAccount(ctx context.Context, userID uint, password string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.HasPassword() {
		if password == "" {
			return validationError("비밀번호를 입력해주세요.")
		}
		if !s.hasher.Verify(password, *user.PasswordHash) {
			return ErrCurrentPassword
		}
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return internalError(err)
	}

	slog.Info("account deleted", "user_id", user.ID, "action", "delete_account")
	return nil
}

// ResetPassword sets a new password for the account matching both email and
// username. The verification code is checked first and only spent once the
// new password is stored, so a failed write leaves the code usable.
func (s *SessionService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.AccountName())
	if email == "" || username == "" || req.AuthCode == "" || req.NewPassword == "" {
		return validationError("이메일, 아이디, 인증 코드, 새 비밀번호를 모두 입력해주세요.")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return internalError(err)
	}
	if !strings.EqualFold(user.Email, email) {
		return ErrUserNotFound
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return asServiceError(err)
	}
	if _, err := s.codes.Verify(ctx, email, req.AuthCode); err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return internalError(err)
	}
	if err := s.codes.Consume(ctx, email, req.AuthCode); err != nil {
		slog.Warn("verification code not spent after reset", "user_id", user.ID, "action", "reset_password", "error", err)
	}

	slog.Info("password reset", "user_id", user.ID, "action", "reset_password")
	return nil
}

func (s *SessionService) rotateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	refreshToken, err := s.tokens.IssueRefresh(user.ID, user.Username)
	if err != nil {
		return "", internalError(err)
	}
	hash, err := s.hasher.HashToken(refreshToken)
	if err != nil {
		return "", internalError(err)
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, &hash); err != nil {
		return "", internalError(err)
	}
	user.RefreshToken = &hash
	return refreshToken, nil
}

func (s *SessionService) findUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internalError(err)
	}
	return user, nil
}

func (s *SessionService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("studymate-dummy-password")
	})
	return s.dummyHash
}

// reservedUsername reports names in the provider_<id> space that OAuth sign-up
// assigns to social accounts.
func reservedUsername(username string) bool {
	lower := strings.ToLower(username)
	for _, provider := range []string{ProviderNaver, ProviderKakao} {
		if strings.HasPrefix(lower, provider+"_") {
			return true
		}
	}
	return false
}

func publicUser(u *models.User) *dto.UserResponse {
	return &dto.UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func asServiceError(err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internalError(err)
}
