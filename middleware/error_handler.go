package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaultline/escrowbackend/apierrors"
)

// ErrorHandler is the single reporting path for handler failures. Handlers
// attach errors with c.Error and return; anything that is not an
// apierrors.Error is logged with its detail and surfaced as a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var apiErr *apierrors.Error
		if !errors.As(err, &apiErr) {
			log.Printf("unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			apiErr = apierrors.Internal("Something went wrong")
		} else if apiErr.StatusCode >= http.StatusInternalServerError {
			log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}

		c.JSON(apiErr.StatusCode, apiErr)
	}
}
