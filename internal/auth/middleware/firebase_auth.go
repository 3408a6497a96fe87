package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/shoplist-app/shoplist-backend/internal/auth"
)

// TokenVerifier verifies a Firebase ID token. *fbauth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// DeletedChecker reports whether an account has been soft-deleted.
type DeletedChecker interface {
	IsDeleted(ctx context.Context, uid string) (bool, error)
}

// FirebaseAuth validates Firebase ID tokens and extracts user info. Tokens
// of soft-deleted accounts are rejected: deletion cannot remove the
// identity-provider record, so enforcement happens here.
func FirebaseAuth(verifier TokenVerifier, deleted DeletedChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			c.Abort()
			return
		}

		decodedToken, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		if deleted != nil {
			isDeleted, err := deleted.IsDeleted(c.Request.Context(), decodedToken.UID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check account status"})
				c.Abort()
				return
			}
			if isDeleted {
				c.JSON(http.StatusForbidden, gin.H{"error": "this account has been deleted"})
				c.Abort()
				return
			}
		}

		c.Set(auth.CtxUID, decodedToken.UID)
		if email, ok := decodedToken.Claims["email"].(string); ok {
			c.Set(auth.CtxEmail, strings.ToLower(email))
		}

		c.Next()
	}
}

// RequireAdmin allows only the configured admin account through. It must
// run after FirebaseAuth.
func RequireAdmin(adminEmail string) gin.HandlerFunc {
	adminEmail = strings.ToLower(adminEmail)
	return func(c *gin.Context) {
		if auth.UserEmail(c) != adminEmail {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
