package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaultline/escrowbackend/apierrors"
	"github.com/vaultline/escrowbackend/auth"
	"github.com/vaultline/escrowbackend/config"
	"github.com/vaultline/escrowbackend/dto"
	"github.com/vaultline/escrowbackend/email"
	"github.com/vaultline/escrowbackend/models"
	"github.com/vaultline/escrowbackend/stores"
	"github.com/vaultline/escrowbackend/utils"
)

// POST /auth/organization/signup
func OrganizationSignup(orgs stores.OrganizationStore, users stores.UserStore, tokens stores.AuthTokenStore, mail email.Notifier, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.OrganizationSignupDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Error(apierrors.BadRequest("Invalid request body"))
			return
		}
		if body.Email == "" || body.CompanyName == "" || body.Password == "" || body.ConfirmPassword == "" {
			c.Error(apierrors.BadRequest("All fields (email, company_name, password, confirm_password) are required"))
			return
		}
		if body.Password != body.ConfirmPassword {
			c.Error(apierrors.BadRequest("Passwords do not match"))
			return
		}
		if len(body.Password) < 6 {
			c.Error(apierrors.BadRequest("Password must be at least 6 characters"))
			return
		}

		org, err := stores.NewOrganization(body.Email, body.CompanyName, body.Password)
		if err != nil {
			c.Error(apierrors.BadRequest("Invalid email format"))
			return
		}

		ctx := c.Request.Context()

		if _, err := orgs.FindByEmail(ctx, org.Email); err == nil {
			c.Error(apierrors.Conflict("User already exists, please proceed to login"))
			return
		}
		if _, err := users.FindByEmail(ctx, org.Email); err == nil {
			c.Error(apierrors.Conflict("User already exists, please proceed to login"))
			return
		}

		if err := orgs.Create(ctx, org); err != nil {
			if errors.Is(err, stores.ErrDuplicate) {
				c.Error(apierrors.Conflict("User already exists, please proceed to login"))
				return
			}
			c.Error(err)
			return
		}

		rawToken, err := tokens.Issue(ctx, org.ID, models.TokenKindEmailVerify, cfg.VerifyTokenTTL)
		if err != nil {
			c.Error(err)
			return
		}
		if err := mail.SendVerificationEmail(org.Email, rawToken); err != nil {
			log.Printf("failed to send verification email to %s: %v", org.Email, err)
		}

		c.JSON(http.StatusCreated, gin.H{
			"status":  "success",
			"message": "Account is unverified! Verification email sent. Verify account to continue. Please note that token expires in 2 hours",
		})
	}
}

// POST /auth/organization/login
func OrganizationLogin(orgs stores.OrganizationStore, issuer *auth.Issuer, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" || body.Password == "" {
			c.Error(apierrors.BadRequest("Email and password are required"))
			return
		}

		ctx := c.Request.Context()

		org, err := orgs.FindByEmail(ctx, body.Email)
		if err != nil {
			c.Error(apierrors.NotFound("User not found"))
			return
		}

		if err := utils.CheckPassword(org.PasswordHash, body.Password); err != nil {
			c.Error(apierrors.Unauthorized("Invalid email or password"))
			return
		}

		if !org.EmailVerified {
			c.Error(apierrors.Forbidden("Please verify your email first"))
			return
		}

		pair, err := issuer.Issue(ctx, org.ID, org.Email, org.Role, c.GetHeader("User-Agent"))
		if err != nil {
			c.Error(err)
			return
		}

		utils.SetRefreshCookie(c, pair.RefreshToken, int(cfg.RefreshTTL.Seconds()))
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
			"user": gin.H{
				"id":           org.ID.Hex(),
				"email":        org.Email,
				"company_name": org.CompanyName,
				"role":         org.Role,
			},
		})
	}
}
