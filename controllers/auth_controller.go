package controllers

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"time"

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

func userData(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID.Hex(),
		"email":        user.Email,
		"role":         user.Role,
		"phone_number": user.PhoneNumber,
	}
}

// POST /auth/signup
func Signup(users stores.UserStore, orgs stores.OrganizationStore, tokens stores.AuthTokenStore, mail email.Notifier, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SignupDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Error(apierrors.BadRequest("Invalid request body"))
			return
		}

		if body.Email == "" || body.PhoneNumber == "" || body.Password == "" || body.ConfirmPassword == "" {
			c.Error(apierrors.BadRequest("All fields (email, phone_number, password, confirm_password) are required"))
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

		user, err := stores.NewLocalUser(body.Email, body.PhoneNumber, body.Password)
		if err != nil {
			c.Error(apierrors.BadRequest("Invalid email format"))
			return
		}

		ctx := c.Request.Context()

		// The email must be unused in both identity spaces.
		if _, err := users.FindByEmail(ctx, user.Email); err == nil {
			c.Error(apierrors.Conflict("User already exists, please proceed to login"))
			return
		}
		if _, err := orgs.FindByEmail(ctx, user.Email); err == nil {
			c.Error(apierrors.Conflict("User already exists, please proceed to login"))
			return
		}

		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, stores.ErrDuplicate) {
				c.Error(apierrors.Conflict("User already exists, please proceed to login"))
				return
			}
			c.Error(err)
			return
		}

		rawToken, err := tokens.Issue(ctx, user.ID, models.TokenKindEmailVerify, cfg.VerifyTokenTTL)
		if err != nil {
			c.Error(err)
			return
		}
		if err := mail.SendVerificationEmail(user.Email, rawToken); err != nil {
			log.Printf("failed to send verification email to %s: %v", user.Email, err)
		}

		c.JSON(http.StatusCreated, gin.H{
			"status":  "success",
			"message": "Account is unverified! Verification email sent. Verify account to continue. Please note that token expires in 2 hours",
		})
	}
}

// POST /auth/login
func Login(users stores.UserStore, issuer *auth.Issuer, mail email.Notifier, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" || body.Password == "" {
			c.Error(apierrors.BadRequest("Email and password are required"))
			return
		}

		ctx := c.Request.Context()

		user, err := users.FindByEmail(ctx, body.Email)
		if err != nil || user.PasswordHash == "" {
			c.Error(apierrors.NotFound("User not found"))
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
			c.Error(apierrors.Unauthorized("Invalid email or password"))
			return
		}

		if !user.EmailVerified {
			c.Error(apierrors.Forbidden("Please verify your email first"))
			return
		}

		// Admins take the OTP step-up path: no tokens until the code checks out.
		if user.Role == models.RoleAdmin {
			otp, err := utils.GenerateOTP(cfg.OTPDigits)
			if err != nil {
				c.Error(err)
				return
			}
			expiresAt := time.Now().UTC().Add(cfg.OTPTTL)
			user.OTP = otp
			user.OTPExpiresAt = &expiresAt
			if err := users.Update(ctx, user); err != nil {
				c.Error(err)
				return
			}

			if err := mail.SendOTPEmail(user.Email, otp); err != nil {
				log.Printf("failed to send OTP email to %s: %v", user.Email, err)
			}

			c.JSON(http.StatusOK, gin.H{
				"message":    "OTP sent to your email",
				"requireOTP": true,
				"user":       userData(user),
			})
			return
		}

		pair, err := issuer.IssueForLogin(ctx, user, c.GetHeader("User-Agent"))
		if err != nil {
			c.Error(err)
			return
		}

		utils.SetRefreshCookie(c, pair.RefreshToken, int(cfg.RefreshTTL.Seconds()))
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
			"user":         userData(user),
		})
	}
}

// POST /auth/verify-otp
func VerifyOTP(users stores.UserStore, issuer *auth.Issuer, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.VerifyOTPDTO
		if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" || body.OTP == "" {
			c.Error(apierrors.BadRequest("Email and otp are required"))
			return
		}

		ctx := c.Request.Context()

		user, err := users.FindByEmail(ctx, body.Email)
		if err != nil {
			c.Error(apierrors.Unauthorized("Invalid or expired OTP"))
			return
		}

		if user.OTP == "" || user.OTPExpiresAt == nil || time.Now().UTC().After(*user.OTPExpiresAt) {
			c.Error(apierrors.Unauthorized("Invalid or expired OTP"))
			return
		}
		if subtle.ConstantTimeCompare([]byte(user.OTP), []byte(body.OTP)) != 1 {
			c.Error(apierrors.Unauthorized("Invalid or expired OTP"))
			return
		}

		// Single use: clear the code before tokens go out.
		user.OTP = ""
		user.OTPExpiresAt = nil
		if err := users.Update(ctx, user); err != nil {
			c.Error(err)
			return
		}

		pair, err := issuer.IssueForLogin(ctx, user, c.GetHeader("User-Agent"))
		if err != nil {
			c.Error(err)
			return
		}

		utils.SetRefreshCookie(c, pair.RefreshToken, int(cfg.RefreshTTL.Seconds()))
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
			"user":         userData(user),
		})
	}
}

// POST /auth/refresh
func Refresh(codec *auth.TokenCodec, sessions stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, _ := c.Cookie("refreshToken")
		if refreshToken == "" {
			refreshToken = c.GetHeader("x-refresh-token")
		}
		if refreshToken == "" {
			c.Error(apierrors.Unauthorized("Missing refresh token"))
			return
		}

		claims, expired, err := codec.VerifyRefresh(refreshToken)
		if err != nil || expired || claims.SessionID == "" {
			c.Error(apierrors.Unauthorized("Invalid refresh token"))
			return
		}

		session, err := sessions.GetByID(c.Request.Context(), claims.SessionID)
		if err != nil || !session.Valid {
			c.Error(apierrors.Unauthorized("Invalid refresh token"))
			return
		}

		accessToken, err := codec.SignAccess(claims.UserID, claims.Email, claims.Role)
		if err != nil {
			c.Error(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
	}
}

// POST /auth/logout
func Logout(codec *auth.TokenCodec, sessions stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, _ := c.Cookie("refreshToken")
		utils.ClearRefreshCookie(c)

		// best effort revoke; an expired token still names its session
		if refreshToken != "" {
			claims, _, err := codec.VerifyRefresh(refreshToken)
			if err == nil && claims.SessionID != "" {
				if err := sessions.Revoke(c.Request.Context(), claims.SessionID); err != nil {
					log.Printf("failed to revoke session %s: %v", claims.SessionID, err)
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged out"})
	}
}

// POST /auth/forgot-password
func ForgotPassword(users stores.UserStore, tokens stores.AuthTokenStore, mail email.Notifier, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ForgotPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
			c.Error(apierrors.BadRequest("Email is required"))
			return
		}

		ctx := c.Request.Context()

		// The response never reveals whether the account exists.
		const genericMessage = "If the email exists, a reset link has been sent"

		user, err := users.FindByEmail(ctx, body.Email)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"status": "success", "message": genericMessage})
			return
		}

		rawToken, err := tokens.Issue(ctx, user.ID, models.TokenKindPasswordReset, cfg.ResetTokenTTL)
		if err != nil {
			c.Error(err)
			return
		}

		if err := mail.SendPasswordResetEmail(user.Email, rawToken); err != nil {
			log.Printf("failed to send password reset email to %s: %v", user.Email, err)
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "message": genericMessage})
	}
}

// POST /auth/reset-password
func ResetPassword(users stores.UserStore, tokens stores.AuthTokenStore, sessions stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ResetPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil || body.Token == "" || body.Password == "" {
			c.Error(apierrors.BadRequest("Token and password are required"))
			return
		}
		if len(body.Password) < 6 {
			c.Error(apierrors.BadRequest("Password must be at least 6 characters"))
			return
		}

		ctx := c.Request.Context()

		record, err := tokens.FindValid(ctx, body.Token, models.TokenKindPasswordReset)
		if err != nil {
			c.Error(apierrors.BadRequest("Invalid or expired reset token"))
			return
		}

		user, err := users.FindByID(ctx, record.Owner.Hex())
		if err != nil {
			c.Error(apierrors.NotFound("User not found"))
			return
		}

		// Consume first so the token can never authorize a second change.
		if err := tokens.Consume(ctx, record); err != nil {
			c.Error(apierrors.BadRequest("Invalid or expired reset token"))
			return
		}

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			c.Error(err)
			return
		}
		user.PasswordHash = hash
		if err := users.Update(ctx, user); err != nil {
			c.Error(err)
			return
		}

		if err := sessions.RevokeAllForUser(ctx, user.ID); err != nil {
			log.Printf("failed to revoke sessions for %s: %v", user.Email, err)
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Password reset successfully"})
	}
}

// GET /auth/verify-email?token=
func VerifyEmail(users stores.UserStore, orgs stores.OrganizationStore, tokens stores.AuthTokenStore, mail email.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := c.Query("token")
		if rawToken == "" {
			c.Error(apierrors.BadRequest("Invalid or missing token"))
			return
		}

		ctx := c.Request.Context()

		record, err := tokens.FindValid(ctx, rawToken, models.TokenKindEmailVerify)
		if err != nil {
			c.Error(apierrors.BadRequest("Invalid or expired verification token"))
			return
		}

		// The owner can live in either identity space.
		if user, err := users.FindByID(ctx, record.Owner.Hex()); err == nil {
			if user.EmailVerified {
				c.Error(apierrors.BadRequest("Email already verified"))
				return
			}
			user.EmailVerified = true
			if err := users.Update(ctx, user); err != nil {
				c.Error(err)
				return
			}
			if err := tokens.Consume(ctx, record); err != nil {
				log.Printf("failed to consume verification token: %v", err)
			}
			if err := mail.SendWelcomeEmail(user.Email, user.Name); err != nil {
				log.Printf("failed to send welcome email to %s: %v", user.Email, err)
			}
			c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Email verified successfully"})
			return
		}

		org, err := orgs.FindByID(ctx, record.Owner.Hex())
		if err != nil {
			c.Error(apierrors.NotFound("User not found"))
			return
		}
		if org.EmailVerified {
			c.Error(apierrors.BadRequest("Email already verified"))
			return
		}
		org.EmailVerified = true
		if err := orgs.Update(ctx, org); err != nil {
			c.Error(err)
			return
		}
		if err := tokens.Consume(ctx, record); err != nil {
			log.Printf("failed to consume verification token: %v", err)
		}
		if err := mail.SendWelcomeEmail(org.Email, org.CompanyName); err != nil {
			log.Printf("failed to send welcome email to %s: %v", org.Email, err)
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Email verified successfully"})
	}
}
