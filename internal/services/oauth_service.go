package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/studymate/auth-backend/internal/dto"
	"github.com/studymate/auth-backend/internal/models"
	"github.com/studymate/auth-backend/internal/repository"
)

const maxUsernameAttempts = 3

// OAuthService signs users in through external providers, creating the
// local account on first use and linking the social profile every time.
type OAuthService struct {
	providers map[string]ProviderAdapter
	users     UserStore
	socials   SocialAccountStore
	sessions  *SessionService
}

func NewOAuthService(users UserStore, socials SocialAccountStore, sessions *SessionService, adapters ...ProviderAdapter) *OAuthService {
	providers := make(map[string]ProviderAdapter, len(adapters))
	for _, a := range adapters {
		providers[a.ProviderID()] = a
	}
	return &OAuthService{
		providers: providers,
		users:     users,
		socials:   socials,
		sessions:  sessions,
	}
}

func (s *OAuthService) Enabled(provider string) bool {
	_, ok := s.providers[provider]
	return ok
}

func (s *OAuthService) Login(ctx context.Context, provider, code, state string) (*dto.AuthResponse, error) {
	adapter, ok := s.providers[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}
	if strings.TrimSpace(code) == "" {
		return nil, validationError("Authorization Code가 제공되지 않았습니다.")
	}

	failure := &Error{Kind: KindUpstream, Message: adapter.Label() + " 로그인 중 오류가 발생했습니다."}

	profile, err := adapter.ResolveProfile(ctx, code, state)
	if err != nil {
		slog.Error("oauth provider failure", "provider", provider, "action", "oauth_login", "error", err)
		return nil, failure.withCause(err)
	}

	user, err := s.findOrCreateUser(ctx, provider, profile)
	if err != nil {
		return nil, internalError(err)
	}

	account := &models.SocialAccount{
		UserID:     user.ID,
		Provider:   provider,
		ProviderID: profile.ExternalID,
	}
	if profile.AvatarURL != "" {
		account.ProfileImageURL = &profile.AvatarURL
	}
	if err := s.socials.Upsert(ctx, account); err != nil {
		return nil, internalError(err)
	}

	resp, err := s.sessions.StartSession(ctx, user)
	if err != nil {
		return nil, err
	}
	slog.Info("oauth login", "provider", provider, "user_id", user.ID, "action", "oauth_login")
	return resp, nil
}

func (s *OAuthService) findOrCreateUser(ctx context.Context, provider string, profile ProviderProfile) (*models.User, error) {
	user, err := s.users.FindBySocial(ctx, provider, profile.ExternalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	base := provider + "_" + profile.ExternalID
	name := profile.DisplayName
	if name == "" {
		name = base
	}
	socialID := profile.ExternalID
	providerID := provider

	username := base
	for attempt := 0; ; attempt++ {
		user = &models.User{
			Username:       username,
			Name:           name,
			Email:          profile.Email,
			SocialProvider: &providerID,
			SocialID:       &socialID,
		}
		err = s.users.Create(ctx, user)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}

		// A concurrent first login for the same identity won the insert.
		existing, findErr := s.users.FindBySocial(ctx, provider, profile.ExternalID)
		if findErr == nil {
			return existing, nil
		}
		if !errors.Is(findErr, repository.ErrNotFound) {
			return nil, findErr
		}
		// Otherwise the name belongs to an unrelated account.
		if attempt == maxUsernameAttempts {
			return nil, err
		}
		username = base + "_" + uuid.NewString()[:8]
	}

	slog.Info("user created from oauth profile", "provider", provider, "user_id", user.ID, "action", "oauth_signup")
	return user, nil
}
