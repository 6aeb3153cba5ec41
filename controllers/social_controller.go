package controllers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaultline/escrowbackend/apierrors"
	"github.com/vaultline/escrowbackend/auth"
	"github.com/vaultline/escrowbackend/config"
	"github.com/vaultline/escrowbackend/dto"
	"github.com/vaultline/escrowbackend/email"
	"github.com/vaultline/escrowbackend/models"
	"github.com/vaultline/escrowbackend/social"
	"github.com/vaultline/escrowbackend/stores"
)

func socialUserData(user *models.User) gin.H {
	name := user.Name
	if name == "" {
		name = localPart(user.Email)
	}
	return gin.H{
		"id":      user.ID.Hex(),
		"email":   user.Email,
		"name":    name,
		"role":    user.Role,
		"picture": user.Picture,
	}
}

func localPart(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i]
		}
	}
	return email
}

// resolveSocialLogin finds or creates the account for a verified provider
// profile. Admin accounts can never authenticate through a social provider.
func resolveSocialLogin(
	ctx context.Context,
	users stores.UserStore,
	mail email.Notifier,
	profile *social.Profile,
	role models.Role,
	setSubject func(user *models.User),
) (*models.User, *apierrors.Error) {

	user, err := users.FindByEmail(ctx, profile.Email)
	if err == nil {
		if user.Role == models.RoleAdmin {
			return nil, apierrors.Forbidden("Admin accounts cannot login through a social provider. Use standard login.")
		}
		return user, nil
	}

	user = &models.User{
		Email:         profile.Email,
		Name:          profile.Name,
		Picture:       profile.Picture,
		Role:          role,
		EmailVerified: profile.EmailVerified,
	}
	setSubject(user)

	if err := users.Create(ctx, user); err != nil {
		return nil, apierrors.Internal("Error processing social login")
	}

	// Welcome email only on first login.
	if profile.EmailVerified {
		if err := mail.SendWelcomeEmail(user.Email, user.Name); err != nil {
			log.Printf("failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	return user, nil
}

func respondSocialLogin(c *gin.Context, codec *auth.TokenCodec, cfg *config.Config, user *models.User) {
	token, err := codec.SignAccessTTL(user.ID.Hex(), user.Email, string(user.Role), cfg.SocialTokenTTL)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    socialUserData(user),
	})
}

// POST /auth/google
func GoogleLogin(users stores.UserStore, codec *auth.TokenCodec, mail email.Notifier, verifier social.Verifier, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.GoogleLoginDTO
		if err := c.ShouldBindJSON(&body); err != nil || body.Credential == "" {
			c.Error(apierrors.BadRequest("Google credential is required"))
			return
		}

		profile, err := verifier.Verify(c.Request.Context(), body.Credential)
		if err != nil {
			c.Error(apierrors.BadRequest("Invalid Google token"))
			return
		}

		user, apiErr := resolveSocialLogin(c.Request.Context(), users, mail, profile, models.RoleGoogle, func(u *models.User) {
			u.GoogleSub = profile.SubjectID
		})
		if apiErr != nil {
			c.Error(apiErr)
			return
		}

		respondSocialLogin(c, codec, cfg, user)
	}
}

// POST /auth/facebook
func FacebookLogin(users stores.UserStore, codec *auth.TokenCodec, mail email.Notifier, verifier social.Verifier, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.FacebookLoginDTO
		if err := c.ShouldBindJSON(&body); err != nil || body.AccessToken == "" {
			c.Error(apierrors.BadRequest("Facebook access token is required"))
			return
		}

		profile, err := verifier.Verify(c.Request.Context(), body.AccessToken)
		if err != nil {
			c.Error(apierrors.BadRequest("Invalid Facebook token"))
			return
		}

		user, apiErr := resolveSocialLogin(c.Request.Context(), users, mail, profile, models.RoleFacebook, func(u *models.User) {
			u.FacebookID = profile.SubjectID
		})
		if apiErr != nil {
			c.Error(apiErr)
			return
		}

		respondSocialLogin(c, codec, cfg, user)
	}
}

// POST /auth/x
func XLogin(users stores.UserStore, codec *auth.TokenCodec, mail email.Notifier, verifier social.PairVerifier, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.XLoginDTO
		if err := c.ShouldBindJSON(&body); err != nil || body.OAuthToken == "" || body.OAuthVerifier == "" {
			c.Error(apierrors.BadRequest("OAuth token and verifier are required"))
			return
		}

		profile, err := verifier.Verify(c.Request.Context(), body.OAuthToken, body.OAuthVerifier)
		if err != nil {
			c.Error(apierrors.BadRequest("Failed to authenticate with X"))
			return
		}

		user, apiErr := resolveSocialLogin(c.Request.Context(), users, mail, profile, models.RoleX, func(u *models.User) {
			u.XID = profile.SubjectID
		})
		if apiErr != nil {
			c.Error(apiErr)
			return
		}

		respondSocialLogin(c, codec, cfg, user)
	}
}
