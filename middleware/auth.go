package middleware

import (
	"net/http"
	"strings"

	"hotelbook/utils"

	"github.com/gin-gonic/gin"
)

// AuthCookie carries the session token for browser clients.
const AuthCookie = "auth_token"

// JWTAuthUserMiddleware verifies the caller's token and stores the user id in
// the context under "userID". The token comes from the Authorization header
// or, failing that, the auth cookie.
func JWTAuthUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Missing or invalid Authorization header"})
			return
		}

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Invalid token"})
			return
		}

		c.Set("userID", userID)
		if logger := requestLogger(c); logger != nil {
			c.Set("logger", logger.With(zapUserID(userID)))
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie
	}
	return ""
}
