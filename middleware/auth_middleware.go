// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vaultline/escrowbackend/auth"
	"github.com/vaultline/escrowbackend/models"
	"github.com/vaultline/escrowbackend/stores"
)

// RenewedAccessTokenHeader carries a silently re-issued access token back to
// the client; it should replace the one the client sent.
const RenewedAccessTokenHeader = "x-access-token"

// Authenticate resolves request identity without ever rejecting the request.
// A valid access token authenticates directly. An expired one (and only an
// expired one — forged or malformed tokens never reach the refresh path) is
// renewed from a refresh token whose session is still live. Everything else
// leaves the request anonymous for downstream guards to judge.
func Authenticate(codec *auth.TokenCodec, sessions stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := extractAccessToken(c)
		if accessToken == "" {
			c.Next()
			return
		}

		claims, expired, err := codec.VerifyAccess(accessToken)
		if err != nil {
			// Bad signature or malformed: no refresh attempt.
			c.Next()
			return
		}
		if !expired {
			setIdentity(c, claims)
			c.Next()
			return
		}

		refreshToken := extractRefreshToken(c)
		if refreshToken == "" {
			c.Next()
			return
		}

		rClaims, rExpired, err := codec.VerifyRefresh(refreshToken)
		if err != nil || rExpired || rClaims.SessionID == "" {
			c.Next()
			return
		}

		session, err := sessions.GetByID(c.Request.Context(), rClaims.SessionID)
		if err != nil || !session.Valid {
			c.Next()
			return
		}

		newAccess, err := codec.SignAccess(rClaims.UserID, rClaims.Email, rClaims.Role)
		if err != nil {
			c.Next()
			return
		}

		c.Header(RenewedAccessTokenHeader, newAccess)
		setIdentity(c, rClaims)
		c.Next()
	}
}

// RequireUser rejects anonymous requests. Run it after Authenticate.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"statusCode": http.StatusUnauthorized,
				"status":     "fail",
				"message":    "Authentication required",
			})
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[models.Role(Role(c))] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"statusCode": http.StatusForbidden,
				"status":     "fail",
				"message":    "Insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

func extractAccessToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("accessToken"); err == nil {
		return cookie
	}
	return ""
}

func extractRefreshToken(c *gin.Context) string {
	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie != "" {
		return cookie
	}
	return c.GetHeader("x-refresh-token")
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set("userID", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("role", claims.Role)
}

func UserID(c *gin.Context) string {
	v, ok := c.Get("userID")
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

func Role(c *gin.Context) string {
	v, ok := c.Get("role")
	if !ok {
		return ""
	}
	role, _ := v.(string)
	return role
}
