package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type KakaoAdapter struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	httpClient   *http.Client
}

func NewKakaoAdapter(clientID, clientSecret, redirectURL string) *KakaoAdapter {
	return &KakaoAdapter{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		httpClient:   http.DefaultClient,
	}
}

func (k *KakaoAdapter) Exchange(ctx context.Context, code string) (*Profile, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {k.ClientID},
		"client_secret": {k.ClientSecret},
		"redirect_uri":  {k.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://kauth.kakao.com/oauth/token", strings.NewReader(form.Encode()))
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("kakao token request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao token exchange failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("kakao token response: %w", err)
	}

	userReq, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://kapi.kakao.com/v2/user/me", nil)
	userReq.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	userResp, err := k.httpClient.Do(userReq)
	if err != nil {
		return nil, fmt.Errorf("kakao user request: %w", err)
	}
	defer userResp.Body.Close()

	raw, _ = io.ReadAll(userResp.Body)
	if userResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao user lookup failed: http=%d body=%s", userResp.StatusCode, string(raw))
	}

	var info struct {
		ID           int64 `json:"id"`
		KakaoAccount struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname        string `json:"nickname"`
				ProfileImageURL string `json:"profile_image_url"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("kakao user response: %w", err)
	}

	name := info.KakaoAccount.Profile.Nickname
	if name == "" {
		name = "익명"
	}

	return &Profile{
		Provider:   "kakao",
		ProviderID: strconv.FormatInt(info.ID, 10),
		Email:      info.KakaoAccount.Email,
		Name:       name,
		AvatarURL:  info.KakaoAccount.Profile.ProfileImageURL,
	}, nil
}
