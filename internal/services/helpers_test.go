package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/studymate/auth-backend/internal/models"
	"github.com/studymate/auth-backend/internal/testutil"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
)

type fixture struct {
	users        *testutil.UserStore
	socials      *testutil.SocialAccountStore
	codes        *testutil.VerificationCodeStore
	invalid      *testutil.InvalidTokenStore
	mail         *testutil.MailRecorder
	hasher       *PasswordHasher
	tokens       *TokenIssuer
	revocations  *RevocationList
	verification *VerificationService
	sessions     *SessionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:   testutil.NewUserStore(),
		socials: testutil.NewSocialAccountStore(),
		codes:   testutil.NewVerificationCodeStore(),
		invalid: testutil.NewInvalidTokenStore(),
		mail:    &testutil.MailRecorder{},
		hasher:  NewPasswordHasher(bcrypt.MinCost),
	}

	var err error
	f.tokens, err = NewTokenIssuer(TokenIssuerConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	f.revocations = NewRevocationList(f.invalid, nil)
	f.verification = NewVerificationService(f.codes, f.users, f.mail, 10*time.Minute)
	f.sessions = NewSessionService(f.users, f.hasher, f.tokens, f.revocations, f.verification,
		SessionServiceConfig{RotateRefresh: true})
	return f
}

// seedUser stores a password account and returns it.
func (f *fixture) seedUser(t *testing.T, username, password, email string) *models.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return f.users.Put(models.User{
		Username:     username,
		PasswordHash: &hash,
		Name:         username,
		Email:        email,
	})
}

func (f *fixture) storedUser(t *testing.T, id uint) *models.User {
	t.Helper()
	u, err := f.users.FindByID(t.Context(), id)
	require.NoError(t, err)
	return u
}

// tokenID returns the jti of a token issued by the fixture.
func (f *fixture) tokenID(t *testing.T, accessToken string) string {
	t.Helper()
	claims, err := f.tokens.Verify(accessToken, AccessToken)
	require.NoError(t, err)
	return claims.ID
}
