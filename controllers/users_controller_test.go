package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultline/escrowbackend/middleware"
	"github.com/vaultline/escrowbackend/models"
	"github.com/vaultline/escrowbackend/utils"
)

func newUsersRig(t *testing.T) *authRig {
	t.Helper()
	rig := newAuthRig(t)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	me := r.Group("/users/me")
	me.Use(middleware.Authenticate(rig.codec, rig.sessions), middleware.RequireUser())
	me.POST("/password", ChangeMyPassword(rig.users, rig.sessions))
	rig.router = r
	return rig
}

func (rig *authRig) bearerFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := rig.codec.SignAccess(user.ID.Hex(), user.Email, string(user.Role))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestChangeMyPasswordRequiresAuth(t *testing.T) {
	rig := newUsersRig(t)

	w := rig.post(t, "/users/me/password", gin.H{
		"currentPassword": "secret123",
		"newPassword":     "longersecret",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangeMyPasswordRotatesHashAndKillsSessions(t *testing.T) {
	rig := newUsersRig(t)
	user := rig.seedUser(t, "jane@example.com", "secret123", true)

	_, err := rig.sessions.Create(context.Background(), user.ID, "", models.RoleUser)
	require.NoError(t, err)

	w := rig.post(t, "/users/me/password", gin.H{
		"currentPassword": "secret123",
		"newPassword":     "longersecret",
	}, func(req *http.Request) {
		req.Header.Set("Authorization", rig.bearerFor(t, user))
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := rig.users.FindByID(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.NoError(t, utils.CheckPassword(stored.PasswordHash, "longersecret"))
	assert.Error(t, utils.CheckPassword(stored.PasswordHash, "secret123"))
	assert.Zero(t, rig.sessions.LiveCount())
}

func TestChangeMyPasswordWrongCurrent(t *testing.T) {
	rig := newUsersRig(t)
	user := rig.seedUser(t, "jane@example.com", "secret123", true)

	w := rig.post(t, "/users/me/password", gin.H{
		"currentPassword": "not-it",
		"newPassword":     "longersecret",
	}, func(req *http.Request) {
		req.Header.Set("Authorization", rig.bearerFor(t, user))
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Current password is incorrect", decode(t, w)["message"])
}

func TestChangeMyPasswordRejectsShortPassword(t *testing.T) {
	rig := newUsersRig(t)
	user := rig.seedUser(t, "jane@example.com", "secret123", true)

	w := rig.post(t, "/users/me/password", gin.H{
		"currentPassword": "secret123",
		"newPassword":     "short",
	}, func(req *http.Request) {
		req.Header.Set("Authorization", rig.bearerFor(t, user))
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
