package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultline/escrowbackend/auth"
	"github.com/vaultline/escrowbackend/middleware"
	"github.com/vaultline/escrowbackend/models"
	"github.com/vaultline/escrowbackend/stores"
)

func newOrgRig(t *testing.T) *authRig {
	t.Helper()
	rig := newAuthRig(t)
	issuer := auth.NewIssuer(rig.codec, rig.sessions, rig.users)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/auth/organization/signup", OrganizationSignup(rig.orgs, rig.users, rig.tokens, rig.mail, rig.cfg))
	r.POST("/auth/organization/login", OrganizationLogin(rig.orgs, issuer, rig.cfg))
	r.GET("/auth/verify-email", VerifyEmail(rig.users, rig.orgs, rig.tokens, rig.mail))
	rig.router = r
	return rig
}

func TestOrganizationSignupAndVerifyRoundTrip(t *testing.T) {
	rig := newOrgRig(t)

	w := rig.post(t, "/auth/organization/signup", gin.H{
		"email":            "ops@acme.com",
		"company_name":     "Acme Ltd",
		"password":         "secret123",
		"confirm_password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	org, err := rig.orgs.FindByEmail(context.Background(), "ops@acme.com")
	require.NoError(t, err)
	assert.False(t, org.EmailVerified)
	assert.Equal(t, models.RoleOrg, org.Role)

	raw := rig.mail.Verifications["ops@acme.com"]
	require.NotEmpty(t, raw)

	w = rig.get(t, "/auth/verify-email?token="+raw)
	require.Equal(t, http.StatusOK, w.Code)

	org, err = rig.orgs.FindByEmail(context.Background(), "ops@acme.com")
	require.NoError(t, err)
	assert.True(t, org.EmailVerified)
}

func TestOrganizationSignupRejectsEmailFromUserSpace(t *testing.T) {
	rig := newOrgRig(t)
	rig.seedUser(t, "ops@acme.com", "secret123", true)

	w := rig.post(t, "/auth/organization/signup", gin.H{
		"email":            "ops@acme.com",
		"company_name":     "Acme Ltd",
		"password":         "secret123",
		"confirm_password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists, please proceed to login", decode(t, w)["message"])
}

func TestOrganizationLoginIssuesPair(t *testing.T) {
	rig := newOrgRig(t)

	org, err := stores.NewOrganization("ops@acme.com", "Acme Ltd", "secret123")
	require.NoError(t, err)
	org.EmailVerified = true
	require.NoError(t, rig.orgs.Create(context.Background(), org))

	w := rig.post(t, "/auth/organization/login", gin.H{"email": "ops@acme.com", "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.NotEmpty(t, body["accessToken"])

	claims, _, err := rig.codec.VerifyAccess(body["accessToken"].(string))
	require.NoError(t, err)
	assert.Equal(t, "org", claims.Role)

	user := body["user"].(map[string]any)
	assert.Equal(t, "Acme Ltd", user["company_name"])
	assert.Equal(t, 1, rig.sessions.LiveCount())
}

func TestOrganizationLoginUnverified(t *testing.T) {
	rig := newOrgRig(t)

	org, err := stores.NewOrganization("ops@acme.com", "Acme Ltd", "secret123")
	require.NoError(t, err)
	require.NoError(t, rig.orgs.Create(context.Background(), org))

	w := rig.post(t, "/auth/organization/login", gin.H{"email": "ops@acme.com", "password": "secret123"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Please verify your email first", decode(t, w)["message"])
}
