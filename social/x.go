package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	xAccessTokenURL = "https://api.twitter.com/oauth/access_token"
	xCredentialsURL = "https://api.twitter.com/1.1/account/verify_credentials.json"
)

type xVerifier struct {
	client *http.Client
}

// NewXVerifier exchanges an X (Twitter) OAuth callback pair for the account
// profile. X may withhold the email; callers fall back to a generated one.
func NewXVerifier(client *http.Client) PairVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &xVerifier{client: client}
}

func (x *xVerifier) Verify(ctx context.Context, oauthToken, oauthVerifier string) (*Profile, error) {
	q := url.Values{}
	q.Set("oauth_token", oauthToken)
	q.Set("oauth_verifier", oauthVerifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, xAccessTokenURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("x access token call: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidCredential
	}

	params, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, ErrInvalidCredential
	}
	accessToken := params.Get("oauth_token")
	userID := params.Get("user_id")
	screenName := params.Get("screen_name")
	if accessToken == "" || userID == "" {
		return nil, ErrInvalidCredential
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, xCredentialsURL+"?include_email=true", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err = x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("x credentials call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidCredential
	}

	var data struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		PictureURL string `json:"profile_image_url_https"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, ErrInvalidCredential
	}

	email := data.Email
	verified := email != ""
	if email == "" {
		email = screenName + "@x-generated.com"
	}
	if data.Name == "" {
		data.Name = screenName
	}

	return &Profile{
		Email:         email,
		Name:          data.Name,
		Picture:       strings.Replace(data.PictureURL, "_normal", "", 1),
		SubjectID:     userID,
		EmailVerified: verified,
	}, nil
}
