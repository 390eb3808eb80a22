package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	naverAuthURL    = "https://nid.naver.com/oauth2.0/authorize"
	naverTokenURL   = "https://nid.naver.com/oauth2.0/token"
	naverProfileURL = "https://openapi.naver.com/v1/nid/me"
)

type NaverConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides, empty means the public Naver endpoints.
	TokenURL   string
	ProfileURL string
}

type naverAdapter struct {
	conf       *oauth2.Config
	profileURL string
	httpClient *http.Client
}

func NewNaverAdapter(cfg NaverConfig) ProviderAdapter {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = naverTokenURL
	}
	profileURL := cfg.ProfileURL
	if profileURL == "" {
		profileURL = naverProfileURL
	}

	return &naverAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   naverAuthURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		profileURL: profileURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *naverAdapter) ProviderID() string { return ProviderNaver }

func (a *naverAdapter) Label() string { return "네이버" }

type naverProfileResponse struct {
	ResultCode string `json:"resultcode"`
	Message    string `json:"message"`
	Response   struct {
		ID           string `json:"id"`
		Nickname     string `json:"nickname"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		ProfileImage string `json:"profile_image"`
	} `json:"response"`
}

func (a *naverAdapter) ResolveProfile(ctx context.Context, code, state string) (ProviderProfile, error) {
	var opts []oauth2.AuthCodeOption
	if state != "" {
		opts = append(opts, oauth2.SetAuthURLParam("state", state))
	}

	accessToken, err := exchangeCode(ctx, a.conf, a.httpClient, code, opts...)
	if err != nil {
		return ProviderProfile{}, err
	}

	var body naverProfileResponse
	if err := fetchProfile(ctx, a.httpClient, a.profileURL, accessToken, &body); err != nil {
		return ProviderProfile{}, fmt.Errorf("fetch naver profile: %w", err)
	}
	if body.ResultCode != "00" {
		return ProviderProfile{}, fmt.Errorf("%w: naver resultcode %q (%s)", ErrProviderResponse, body.ResultCode, body.Message)
	}

	p := body.Response
	if p.ID == "" {
		return ProviderProfile{}, ErrIncompleteProfile
	}

	name := p.Nickname
	if name == "" {
		name = p.Name
	}
	return ProviderProfile{
		ExternalID:  p.ID,
		DisplayName: name,
		Email:       p.Email,
		AvatarURL:   p.ProfileImage,
	}, nil
}
