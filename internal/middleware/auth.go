package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"freight/internal/domain"
)

// actorContextKey is where the middleware places the resolved actor.
const actorContextKey = "actor"

// Claims carries the actor identity inside a signed token.
type Claims struct {
	UserID string `json:"sub"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for the given actor. Used by the token
// endpoint and by tests.
func GenerateToken(secret []byte, userID, role string, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           userID,
		Role:             role,
		RegisteredClaims: claims,
	})
	return token.SignedString(secret)
}

// AuthMiddleware resolves the acting user on every request and stores a
// domain.Actor in the context. With a secret configured it requires a
// Bearer token; with an empty secret it trusts the X-Actor-ID and
// X-Actor-Role headers, which is only acceptable behind a gateway or in
// local development.
func AuthMiddleware(secret string) gin.HandlerFunc {
	if secret == "" {
		return headerAuth()
	}
	return bearerAuth([]byte(secret))
}

func bearerAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		claims, err := validateToken(secret, header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		role, ok := parseRole(claims.Role)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown role"})
			return
		}

		c.Set(actorContextKey, domain.Actor{ID: claims.UserID, Role: role})
		c.Next()
	}
}

func headerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Actor-ID")
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-Actor-ID header required"})
			return
		}

		role, ok := parseRole(c.GetHeader("X-Actor-Role"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown role"})
			return
		}

		c.Set(actorContextKey, domain.Actor{ID: id, Role: role})
		c.Next()
	}
}

func validateToken(secret []byte, tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

func parseRole(s string) (domain.Role, bool) {
	switch domain.Role(s) {
	case domain.RoleBusiness, domain.RoleDriver, domain.RoleAdmin:
		return domain.Role(s), true
	}
	return "", false
}
