package social

import (
	"context"

	"google.golang.org/api/idtoken"
)

type googleVerifier struct {
	audience string
}

// NewGoogleVerifier validates Google ID tokens against Google's public keys.
// audience is the OAuth client id; empty skips the audience check.
func NewGoogleVerifier(audience string) Verifier {
	return &googleVerifier{audience: audience}
}

func (g *googleVerifier) Verify(ctx context.Context, credential string) (*Profile, error) {
	payload, err := idtoken.Validate(ctx, credential, g.audience)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrInvalidCredential
	}
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)

	return &Profile{
		Email:         email,
		Name:          name,
		Picture:       picture,
		SubjectID:     payload.Subject,
		EmailVerified: verified,
	}, nil
}
