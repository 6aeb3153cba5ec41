package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultline/escrowbackend/auth"
	"github.com/vaultline/escrowbackend/models"
	"github.com/vaultline/escrowbackend/testutil"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRig(accessTTL time.Duration) (*gin.Engine, *auth.TokenCodec, *testutil.SessionStore) {
	codec := auth.NewTokenCodec("access-secret", "refresh-secret", accessTTL, 14*24*time.Hour)
	sessions := testutil.NewSessionStore()

	r := gin.New()
	r.Use(Authenticate(codec, sessions))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": UserID(c), "role": Role(c)})
	})
	r.GET("/private", RequireUser(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/admin", RequireUser(), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, codec, sessions
}

func doGet(r *gin.Engine, path string, decorate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if decorate != nil {
		decorate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNoTokenLeavesRequestAnonymous(t *testing.T) {
	r, _, _ := newAuthRig(15 * time.Minute)

	w := doGet(r, "/whoami", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":"","role":""}`, w.Body.String())

	w = doGet(r, "/private", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidBearerTokenSetsIdentity(t *testing.T) {
	r, codec, _ := newAuthRig(15 * time.Minute)

	token, err := codec.SignAccess("64f0c3", "jane@example.com", "user")
	require.NoError(t, err)

	w := doGet(r, "/whoami", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":"64f0c3","role":"user"}`, w.Body.String())
	assert.Empty(t, w.Header().Get(RenewedAccessTokenHeader))
}

func TestAccessTokenFromCookie(t *testing.T) {
	r, codec, _ := newAuthRig(15 * time.Minute)

	token, err := codec.SignAccess("64f0c3", "jane@example.com", "user")
	require.NoError(t, err)

	w := doGet(r, "/private", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMalformedTokenNeverReachesRefresh(t *testing.T) {
	r, codec, sessions := newAuthRig(15 * time.Minute)

	sess, err := sessions.Create(context.Background(), bson.NewObjectID(), "", models.RoleUser)
	require.NoError(t, err)
	refresh, err := codec.SignRefresh("64f0c3", "user", sess.ID.Hex())
	require.NoError(t, err)

	w := doGet(r, "/whoami", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":"","role":""}`, w.Body.String())
	assert.Zero(t, sessions.GetCalls)
}

func TestExpiredAccessRenewedFromLiveSession(t *testing.T) {
	r, codec, sessions := newAuthRig(-time.Minute)

	userID := bson.NewObjectID()
	sess, err := sessions.Create(context.Background(), userID, "", models.RoleUser)
	require.NoError(t, err)

	expiredAccess, err := codec.SignAccess(userID.Hex(), "jane@example.com", "user")
	require.NoError(t, err)
	refresh, err := codec.SignRefresh(userID.Hex(), "user", sess.ID.Hex())
	require.NoError(t, err)

	w := doGet(r, "/private", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+expiredAccess)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	renewed := w.Header().Get(RenewedAccessTokenHeader)
	require.NotEmpty(t, renewed)
	claims, expired, err := codec.VerifyAccess(renewed)
	require.NoError(t, err)
	assert.True(t, expired) // rig signs with the expired TTL, claims still match
	assert.Equal(t, userID.Hex(), claims.UserID)
}

func TestRefreshFromHeaderWhenCookieMissing(t *testing.T) {
	r, codec, sessions := newAuthRig(-time.Minute)

	userID := bson.NewObjectID()
	sess, err := sessions.Create(context.Background(), userID, "", models.RoleUser)
	require.NoError(t, err)

	expiredAccess, err := codec.SignAccess(userID.Hex(), "jane@example.com", "user")
	require.NoError(t, err)
	refresh, err := codec.SignRefresh(userID.Hex(), "user", sess.ID.Hex())
	require.NoError(t, err)

	w := doGet(r, "/private", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+expiredAccess)
		req.Header.Set("x-refresh-token", refresh)
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRevokedSessionBlocksRenewal(t *testing.T) {
	r, codec, sessions := newAuthRig(-time.Minute)

	userID := bson.NewObjectID()
	sess, err := sessions.Create(context.Background(), userID, "", models.RoleUser)
	require.NoError(t, err)
	require.NoError(t, sessions.Revoke(context.Background(), sess.ID.Hex()))

	expiredAccess, err := codec.SignAccess(userID.Hex(), "jane@example.com", "user")
	require.NoError(t, err)
	refresh, err := codec.SignRefresh(userID.Hex(), "user", sess.ID.Hex())
	require.NoError(t, err)

	w := doGet(r, "/private", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+expiredAccess)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get(RenewedAccessTokenHeader))
}

func TestExpiredRefreshBlocksRenewal(t *testing.T) {
	codec := auth.NewTokenCodec("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	sessions := testutil.NewSessionStore()
	r := gin.New()
	r.Use(Authenticate(codec, sessions))
	r.GET("/private", RequireUser(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	userID := bson.NewObjectID()
	sess, err := sessions.Create(context.Background(), userID, "", models.RoleUser)
	require.NoError(t, err)

	expiredAccess, err := codec.SignAccess(userID.Hex(), "jane@example.com", "user")
	require.NoError(t, err)
	expiredRefresh, err := codec.SignRefresh(userID.Hex(), "user", sess.ID.Hex())
	require.NoError(t, err)

	w := doGet(r, "/private", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+expiredAccess)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: expiredRefresh})
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	r, codec, _ := newAuthRig(15 * time.Minute)

	token, err := codec.SignAccess("64f0c3", "jane@example.com", "user")
	require.NoError(t, err)

	w := doGet(r, "/admin", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, err := codec.SignAccess("64f0c3", "root@example.com", "admin")
	require.NoError(t, err)

	w = doGet(r, "/admin", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}
