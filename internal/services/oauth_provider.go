package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
)

// OAuth provider identifiers, stored in users.social_provider and
// social_accounts.provider.
const (
	ProviderNaver = "naver"
	ProviderKakao = "kakao"
)

var (
	ErrIncompleteProfile = errors.New("oauth: provider profile is missing required fields")
	ErrProviderResponse  = errors.New("oauth: unexpected provider response")
)

// ProviderAdapter hides one provider's token exchange and profile API.
type ProviderAdapter interface {
	// ProviderID is the stable identifier used for storage and logging.
	ProviderID() string
	// Label is the user-facing provider name.
	Label() string
	// ResolveProfile exchanges code for a provider token and loads the
	// normalized profile.
	ResolveProfile(ctx context.Context, code, state string) (ProviderProfile, error)
}

// ProviderProfile is the provider-neutral view of an external identity.
type ProviderProfile struct {
	ExternalID  string
	DisplayName string
	Email       string
	AvatarURL   string
}

const (
	attemptTimeout = 5 * time.Second
	retryDelay     = 200 * time.Millisecond
)

// withRetry runs op with a per-attempt deadline and retries it once when the
// failure looks transient.
func withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(retryDelay), 1), ctx)
	return backoff.Retry(func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		defer cancel()

		err := op(attemptCtx)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, bo)
}

type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.url, e.status)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= http.StatusInternalServerError
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return re.Response != nil && re.Response.StatusCode >= http.StatusInternalServerError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// exchangeCode trades an authorization code for a provider access token.
func exchangeCode(ctx context.Context, conf *oauth2.Config, client *http.Client, code string, opts ...oauth2.AuthCodeOption) (string, error) {
	var accessToken string
	err := withRetry(ctx, func(ctx context.Context) error {
		tok, err := conf.Exchange(context.WithValue(ctx, oauth2.HTTPClient, client), code, opts...)
		if err != nil {
			return fmt.Errorf("token exchange: %w", err)
		}
		accessToken = tok.AccessToken
		return nil
	})
	if err != nil {
		return "", err
	}
	if accessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrProviderResponse)
	}
	return accessToken, nil
}

// fetchProfile GETs url with the provider token as bearer credential and
// decodes the JSON body into out.
func fetchProfile(ctx context.Context, client *http.Client, url, accessToken string, out interface{}) error {
	return withRetry(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return &statusError{status: resp.StatusCode, url: url}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", ErrProviderResponse, err)
		}
		return nil
	})
}
