package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Header names checked, in order, for the webhook credential.
const (
	WebhookTokenHeader  = "X-Ghl-Webhook-Token"
	AuthorizationHeader = "Authorization"
)

// WebhookTokenMiddleware rejects requests whose credential header does not
// contain secret.
//
// The check is a substring match so existing workflows that send the secret
// as "Bearer <secret>" or with extra decoration keep working. It also
// accepts any token that merely embeds the secret.
func WebhookTokenMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !TokenMatches(webhookToken(c), secret) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// TokenMatches reports whether token is non-empty and contains secret.
func TokenMatches(token, secret string) bool {
	return token != "" && strings.Contains(token, secret)
}

// webhookToken returns the dedicated token header, falling back to
// Authorization when it is absent or empty.
func webhookToken(c *gin.Context) string {
	if v := c.GetHeader(WebhookTokenHeader); v != "" {
		return v
	}
	return c.GetHeader(AuthorizationHeader)
}
