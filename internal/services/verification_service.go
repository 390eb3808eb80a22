package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"time"

	mailer "github.com/studymate/auth-backend/internal/mail"
	"github.com/studymate/auth-backend/internal/models"
	"github.com/studymate/auth-backend/internal/repository"
)

const (
	codeMin  = 100000
	codeSpan = 900000
)

// VerificationService issues and checks 6-digit email codes used for
// sign-up, password reset and username recovery.
type VerificationService struct {
	codes  VerificationCodeStore
	users  UserStore
	sender mailer.Sender
	ttl    time.Duration
	now    func() time.Time
}

func NewVerificationService(codes VerificationCodeStore, users UserStore, sender mailer.Sender, ttl time.Duration) *VerificationService {
	return &VerificationService{
		codes:  codes,
		users:  users,
		sender: sender,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Send stores a fresh code and mails it. The row is written first so a
// delivered code is always verifiable; if delivery fails the row is removed.
func (s *VerificationService) Send(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return internalError(err)
	}

	vc := &models.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.codes.Create(ctx, vc); err != nil {
		return internalError(err)
	}

	err = s.sender.Send(ctx, mailer.Message{
		To:       email,
		Subject:  "StudyMate 인증 코드",
		TextBody: fmt.Sprintf("StudyMate 인증 코드: %s. 인증 코드는 %d분간 유효합니다.", code, int(s.ttl.Minutes())),
		Tag:      "verification-code",
	})
	if err != nil {
		if delErr := s.codes.Delete(ctx, vc.ID); delErr != nil {
			slog.Error("failed to remove undelivered verification code", "error", delErr, "action", "send_code")
		}
		return ErrMailDelivery.withCause(err)
	}
	return nil
}

// Verify checks (email, code) against unexpired rows without spending the
// code. It returns the username registered with email, or "" if none.
func (s *VerificationService) Verify(ctx context.Context, email, code string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	if _, err := s.find(ctx, email, code); err != nil {
		return "", err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", internalError(err)
	}
	return user.Username, nil
}

// Consume verifies the code and deletes it so it cannot be replayed.
func (s *VerificationService) Consume(ctx context.Context, email, code string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	vc, err := s.find(ctx, email, code)
	if err != nil {
		return err
	}
	if err := s.codes.Delete(ctx, vc.ID); err != nil {
		return internalError(err)
	}
	return nil
}

func (s *VerificationService) find(ctx context.Context, email, code string) (*models.VerificationCode, error) {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return nil, ErrInvalidCode
	}
	vc, err := s.codes.FindValid(ctx, email, code, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, internalError(err)
	}
	return vc, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", validationError("이메일은 필수 입력 항목입니다.")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationError("올바른 이메일 주소를 입력해주세요.")
	}
	return email, nil
}

// generateCode returns a uniform value in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
