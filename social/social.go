package social

import (
	"context"
	"errors"
)

// Profile is what every provider resolves a credential to.
type Profile struct {
	Email         string
	Name          string
	Picture       string
	SubjectID     string
	EmailVerified bool
}

// ErrInvalidCredential means the provider rejected or could not resolve the
// presented credential. Anything else is a transport failure.
var ErrInvalidCredential = errors.New("invalid provider credential")

// Verifier resolves a single opaque credential (Google id token, Facebook
// access token) to a profile.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Profile, error)
}

// PairVerifier covers X, whose callback hands back two values.
type PairVerifier interface {
	Verify(ctx context.Context, oauthToken, oauthVerifier string) (*Profile, error)
}
