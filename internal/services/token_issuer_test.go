package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  TokenIssuerConfig
	}{
		{"empty access", TokenIssuerConfig{RefreshSecret: "r", AccessTTL: time.Hour, RefreshTTL: time.Hour}},
		{"empty refresh", TokenIssuerConfig{AccessSecret: "a", AccessTTL: time.Hour, RefreshTTL: time.Hour}},
		{"same secrets", TokenIssuerConfig{AccessSecret: "s", RefreshSecret: "s", AccessTTL: time.Hour, RefreshTTL: time.Hour}},
		{"zero ttl", TokenIssuerConfig{AccessSecret: "a", RefreshSecret: "r", RefreshTTL: time.Hour}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenIssuer(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := newIssuer(t)

	access, err := issuer.IssueAccess(7, "minji")
	require.NoError(t, err)
	claims, err := issuer.Verify(access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "minji", claims.Username)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	refresh, err := issuer.IssueRefresh(7, "minji")
	require.NoError(t, err)
	claims, err = issuer.Verify(refresh, RefreshToken)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenIssuer_KindsAreNotInterchangeable(t *testing.T) {
	issuer := newIssuer(t)

	access, err := issuer.IssueAccess(7, "minji")
	require.NoError(t, err)
	refresh, err := issuer.IssueRefresh(7, "minji")
	require.NoError(t, err)

	_, err = issuer.Verify(access, RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = issuer.Verify(refresh, AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_SameSecondTokensDiffer(t *testing.T) {
	issuer := newIssuer(t)
	fixed := time.Now()
	issuer.now = func() time.Time { return fixed }

	a, err := issuer.IssueRefresh(7, "minji")
	require.NoError(t, err)
	b, err := issuer.IssueRefresh(7, "minji")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := newIssuer(t)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.IssueAccess(7, "minji")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token, AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_RejectsForgedTokens(t *testing.T) {
	issuer := newIssuer(t)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 7, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString([]byte("attacker"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: 7, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 7}).
		SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong key": wrongKey,
		"wrong alg": wrongAlg,
		"no expiry": noExpiry,
		"no id":     noID,
		"malformed": "a.b.c",
		"empty":     "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(token, AccessToken)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
