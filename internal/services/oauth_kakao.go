package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const (
	kakaoAuthURL    = "https://kauth.kakao.com/oauth/authorize"
	kakaoTokenURL   = "https://kauth.kakao.com/oauth/token"
	kakaoProfileURL = "https://kapi.kakao.com/v2/user/me"
)

type KakaoConfig struct {
	ClientID string
	// ClientSecret is optional for Kakao apps without client secret enabled.
	ClientSecret string
	RedirectURL  string

	TokenURL   string
	ProfileURL string
}

type kakaoAdapter struct {
	conf       *oauth2.Config
	profileURL string
	httpClient *http.Client
}

func NewKakaoAdapter(cfg KakaoConfig) ProviderAdapter {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = kakaoTokenURL
	}
	profileURL := cfg.ProfileURL
	if profileURL == "" {
		profileURL = kakaoProfileURL
	}

	return &kakaoAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   kakaoAuthURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		profileURL: profileURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *kakaoAdapter) ProviderID() string { return ProviderKakao }

func (a *kakaoAdapter) Label() string { return "카카오" }

type kakaoProfileResponse struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
}

func (a *kakaoAdapter) ResolveProfile(ctx context.Context, code, _ string) (ProviderProfile, error) {
	accessToken, err := exchangeCode(ctx, a.conf, a.httpClient, code)
	if err != nil {
		return ProviderProfile{}, err
	}

	var body kakaoProfileResponse
	if err := fetchProfile(ctx, a.httpClient, a.profileURL, accessToken, &body); err != nil {
		return ProviderProfile{}, fmt.Errorf("fetch kakao profile: %w", err)
	}
	if body.ID == 0 {
		return ProviderProfile{}, ErrIncompleteProfile
	}

	id := strconv.FormatInt(body.ID, 10)
	name := firstNonEmpty(body.KakaoAccount.Profile.Nickname, body.Properties.Nickname, ProviderKakao+"_"+id)
	avatar := firstNonEmpty(body.KakaoAccount.Profile.ProfileImageURL, body.Properties.ProfileImage)

	return ProviderProfile{
		ExternalID:  id,
		DisplayName: name,
		Email:       body.KakaoAccount.Email,
		AvatarURL:   avatar,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
