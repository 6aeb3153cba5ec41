package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaultline/escrowbackend/apierrors"
	"github.com/vaultline/escrowbackend/config"
	"github.com/vaultline/escrowbackend/dto"
	"github.com/vaultline/escrowbackend/middleware"
	"github.com/vaultline/escrowbackend/stores"
	"github.com/vaultline/escrowbackend/utils"
)

// POST /users/me/password
func ChangeMyPassword(users stores.UserStore, sessions stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeMyPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Error(apierrors.BadRequest("currentPassword and newPassword (min 8 characters) are required"))
			return
		}

		ctx := c.Request.Context()

		user, err := users.FindByID(ctx, middleware.UserID(c))
		if err != nil {
			c.Error(apierrors.Unauthorized("Invalid user"))
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.CurrentPassword); err != nil {
			c.Error(apierrors.Unauthorized("Current password is incorrect"))
			return
		}

		hash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			c.Error(err)
			return
		}
		user.PasswordHash = hash
		if err := users.Update(ctx, user); err != nil {
			c.Error(err)
			return
		}

		// A password change ends every live session for the account.
		if err := sessions.RevokeAllForUser(ctx, user.ID); err != nil {
			log.Printf("failed to revoke sessions for %s: %v", user.Email, err)
		}
		utils.ClearRefreshCookie(c)

		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Password changed"})
	}
}

// POST /users/me/picture
func UploadProfilePicture(users stores.UserStore, v *utils.FileValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("picture")
		if err != nil {
			c.Error(apierrors.BadRequest("picture file is required"))
			return
		}
		if _, err := v.ValidateFile(fileHeader); err != nil {
			c.Error(apierrors.BadRequest(err.Error()))
			return
		}

		ctx := c.Request.Context()

		user, err := users.FindByID(ctx, middleware.UserID(c))
		if err != nil {
			c.Error(apierrors.Unauthorized("Invalid user"))
			return
		}

		client, err := utils.NewGCSClient(ctx, cfg.CredentialsFile)
		if err != nil {
			c.Error(err)
			return
		}
		defer client.Close()

		publicURL, err := utils.UploadAvatarToGCS(ctx, client, cfg.GCSBucket, user.ID.Hex(), fileHeader)
		if err != nil {
			c.Error(err)
			return
		}

		user.Picture = publicURL
		if err := users.Update(ctx, user); err != nil {
			c.Error(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "picture": publicURL})
	}
}
