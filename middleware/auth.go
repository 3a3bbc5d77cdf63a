package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/CoreVine/nursy-backend/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalContextKey = "principal"

// Principal is the resolved identity behind a connection or request.
type Principal struct {
	ID         uint   `json:"id"`
	Type       string `json:"type"` // "Patient" or "Nurse"
	IsVerified bool   `json:"is_verified"`
}

// IdentityResolver turns a bearer credential into a Principal. Every actor
// guard in the dispatch engine trusts the resolved principal.
type IdentityResolver interface {
	ResolvePrincipal(credential string) (Principal, error)
}

// Claims are the JWT claims carried by application-issued tokens.
type Claims struct {
	UserID     uint   `json:"id"`
	UserType   string `json:"type"`
	IsVerified bool   `json:"is_verified"`
	jwt.RegisteredClaims
}

// JWTResolver validates HS256 tokens signed with the application secret.
type JWTResolver struct {
	secret []byte
}

// NewJWTResolver creates an IdentityResolver backed by the given signing secret.
func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

// ResolvePrincipal validates the credential and extracts the principal.
// Accepts both "Bearer <token>" and bare token forms.
func (r *JWTResolver) ResolvePrincipal(credential string) (Principal, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(credential, "Bearer "))
	if raw == "" {
		return Principal{}, apperrors.Unauthorized("Authorization token missing")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Unauthorized("Unexpected signing method")
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, apperrors.Unauthorized("Invalid or expired token")
	}

	return Principal{ID: claims.UserID, Type: claims.UserType, IsVerified: claims.IsVerified}, nil
}

// IssueToken signs a token for the given principal. Used by the auth service
// that owns registration/login (out of scope here) and by tests.
func (r *JWTResolver) IssueToken(p Principal, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:     p.ID,
		UserType:   p.Type,
		IsVerified: p.IsVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// Authenticate is a middleware that resolves the request principal from the
// Authorization header and stores it in the Gin context.
func Authenticate(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := resolver.ResolvePrincipal(c.GetHeader("Authorization"))
		if err != nil {
			appErr := apperrors.From(err)
			c.AbortWithStatusJSON(appErr.Status, gin.H{
				"success": false,
				"error": gin.H{
					"code":    appErr.Code,
					"message": appErr.Message,
				},
			})
			return
		}

		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// RequireUserType is a middleware that checks the authenticated principal's type
func RequireUserType(userType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := GetPrincipal(c)
		if err != nil || principal.Type != userType {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    apperrors.CodeForbidden,
					"message": "Insufficient permissions to access this resource",
				},
			})
			return
		}
		c.Next()
	}
}

// GetPrincipal extracts the resolved principal from the Gin context
func GetPrincipal(c *gin.Context) (Principal, error) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return Principal{}, apperrors.Unauthorized("Principal not found in context")
	}

	principal, ok := value.(Principal)
	if !ok {
		return Principal{}, apperrors.Unauthorized("Principal is not in the expected format")
	}

	return principal, nil
}
