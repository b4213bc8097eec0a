package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/auth"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the httpOnly cookie holding the session token
const SessionCookie = "token"

// maxTokenBodySize caps how much of a request body is read when looking for a token field
const maxTokenBodySize = 1 << 20

// SessionAuth validates the session token and sets userID, userEmail and
// userRole on the context. The token is taken from the session cookie, then
// the Bearer header, then a "token" field in a JSON body.
func SessionAuth(issuer *auth.SessionIssuer, users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abortWithError(c, http.StatusUnauthorized, models.ErrUnauthorized, "Authentication required")
			return
		}

		claims, err := issuer.Parse(tokenString)
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			abortWithError(c, http.StatusUnauthorized, models.ErrSessionExpired, "Session expired, please log in again")
			return
		case err != nil:
			abortWithError(c, http.StatusUnauthorized, models.ErrInvalidToken, "Invalid authentication token")
			return
		}

		// The account may have been removed after the token was issued
		if _, err := users.GetUserByID(claims.UserID); err != nil {
			abortWithError(c, http.StatusUnauthorized, models.ErrUnauthorized, "User not found for this token")
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Set("userRole", string(claims.Role))
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			return token
		}
	}

	return tokenFromBody(c)
}

// tokenFromBody peeks at a JSON body and restores it for the handler
func tokenFromBody(c *gin.Context) string {
	if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTokenBodySize))
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body struct {
		Token string `json:"token"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.Token
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.NewAPIError(code, message))
}
