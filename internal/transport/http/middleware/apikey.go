package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pdfchat/internal/transport/http/response"
)

// APIKey rejects requests whose header does not carry the shared secret:
// 401 when the header is absent, 403 when it does not match.
func APIKey(headerName, secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		got := strings.TrimSpace(c.GetHeader(headerName))
		if got == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeMissingAPIKey, "Missing API Key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			response.Abort(c, http.StatusForbidden, response.CodeInvalidAPIKey, "Invalid API Key")
			return
		}
		c.Next()
	}
}
