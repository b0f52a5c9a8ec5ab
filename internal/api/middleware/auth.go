package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsKey is the gin context key holding verified token claims.
const ClaimsKey = "auth.claims"

const bearerPrefix = "Bearer "

// Auth error messages
const (
	ErrMsgMissingSecret = "JWT_SECRET not configured but JWT_REQUIRED=true"
	ErrMsgMissingBearer = "Authorization header with Bearer token required"
	ErrMsgTokenExpired  = "Token expired"
	ErrMsgTokenInvalid  = "Invalid token"
)

// AuthConfig defines bearer token verification.
type AuthConfig struct {
	Required bool
	Secret   string
}

// Claims is the token payload issued by the token command.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWT verifies HS256 bearer tokens when cfg.Required is set and passes
// every request through otherwise.
func JWT(cfg AuthConfig) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	secret := []byte(cfg.Secret)

	return func(c *gin.Context) {
		if !cfg.Required {
			c.Next()
			return
		}

		if len(secret) == 0 {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": ErrMsgMissingSecret})
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrMsgMissingBearer})
			return
		}

		claims := &Claims{}
		_, err := parser.ParseWithClaims(header[len(bearerPrefix):], claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			msg := ErrMsgTokenInvalid
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = ErrMsgTokenExpired
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// SignToken issues an HS256 token for subject with the given role and
// lifetime.
func SignToken(secret, subject, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("signing secret is empty")
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
