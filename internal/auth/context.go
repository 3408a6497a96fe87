package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUID   = "firebase_uid"
	CtxEmail = "email"
)

// UserUID extracts the verified Firebase UID from the Gin context.
// This is set by Middleware.
func UserUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUID))
}

// UserEmail extracts the verified email claim from the Gin context.
func UserEmail(c *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(c.GetString(CtxEmail)))
}
