package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerification_SendPersistsAndMails(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f.verification.now = func() time.Time { return now }

	require.NoError(t, f.verification.Send(context.Background(), "minji@example.com"))

	codes := f.codes.All()
	require.Len(t, codes, 1)
	assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{5}$`), codes[0].Code)
	assert.Equal(t, now.Add(10*time.Minute), codes[0].ExpiresAt)

	msgs := f.mail.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "minji@example.com", msgs[0].To)
	assert.Contains(t, msgs[0].TextBody, codes[0].Code)
}

func TestVerification_SendFailureRemovesCode(t *testing.T) {
	f := newFixture(t)
	f.mail.Err = errors.New("smtp down")

	err := f.verification.Send(context.Background(), "minji@example.com")

	assert.ErrorIs(t, err, ErrMailDelivery)
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Empty(t, f.codes.All())
}

func TestVerification_SendRejectsBadAddress(t *testing.T) {
	f := newFixture(t)
	for _, email := range []string{"", "minji", "Minji <minji@example.com>"} {
		err := f.verification.Send(context.Background(), email)
		assert.Equal(t, KindValidation, KindOf(err), email)
	}
	assert.Empty(t, f.mail.Messages())
}

func TestVerification_Verify(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.verification.now = func() time.Time { return now }
	f.seedUser(t, "minji", "pass1234", "minji@example.com")

	require.NoError(t, f.verification.Send(context.Background(), "minji@example.com"))
	code := f.codes.All()[0].Code

	username, err := f.verification.Verify(context.Background(), "minji@example.com", code)
	require.NoError(t, err)
	assert.Equal(t, "minji", username)

	// Verify does not spend the code.
	_, err = f.verification.Verify(context.Background(), "minji@example.com", code)
	assert.NoError(t, err)

	_, err = f.verification.Verify(context.Background(), "other@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = f.verification.Verify(context.Background(), "minji@example.com", "12345")
	assert.ErrorIs(t, err, ErrInvalidCode)

	f.verification.now = func() time.Time { return now.Add(10 * time.Minute) }
	_, err = f.verification.Verify(context.Background(), "minji@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerification_VerifyUnknownEmailReturnsNoUsername(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.verification.Send(context.Background(), "new@example.com"))
	code := f.codes.All()[0].Code

	username, err := f.verification.Verify(context.Background(), "new@example.com", code)
	require.NoError(t, err)
	assert.Empty(t, username)
}

func TestVerification_ConsumeIsSingleUse(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.verification.Send(context.Background(), "minji@example.com"))
	require.NoError(t, f.verification.Send(context.Background(), "minji@example.com"))
	codes := f.codes.All()
	require.Len(t, codes, 2)

	require.NoError(t, f.verification.Consume(context.Background(), "minji@example.com", codes[0].Code))
	assert.ErrorIs(t, f.verification.Consume(context.Background(), "minji@example.com", codes[0].Code), ErrInvalidCode)
	assert.Len(t, f.codes.All(), 1)
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}
