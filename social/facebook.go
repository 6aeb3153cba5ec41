package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const facebookGraphURL = "https://graph.facebook.com/v20.0/me"

type facebookVerifier struct {
	client   *http.Client
	graphURL string
}

// NewFacebookVerifier resolves a Facebook access token through the Graph API.
func NewFacebookVerifier(client *http.Client) Verifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &facebookVerifier{client: client, graphURL: facebookGraphURL}
}

func (f *facebookVerifier) Verify(ctx context.Context, accessToken string) (*Profile, error) {
	q := url.Values{}
	q.Set("fields", "id,name,email,picture")
	q.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.graphURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook graph call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidCredential
	}

	var data struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, ErrInvalidCredential
	}
	if data.Email == "" {
		// Facebook only shares the email when the user granted it.
		return nil, ErrInvalidCredential
	}

	return &Profile{
		Email:         data.Email,
		Name:          data.Name,
		Picture:       data.Picture.Data.URL,
		SubjectID:     data.ID,
		EmailVerified: true,
	}, nil
}
