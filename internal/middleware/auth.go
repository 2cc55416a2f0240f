package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/cristianxmm/tv-signage-system/internal/audit"
	"github.com/cristianxmm/tv-signage-system/internal/config"
	"github.com/cristianxmm/tv-signage-system/internal/log"
)

const (
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Gate is the allow/deny boundary in front of the admin panel and the
// publish endpoint. HTTP Basic with the configured credentials is the
// primary mechanism (displays never authenticate); a signed token obtained
// from the login endpoint is accepted as an alternative for API clients.
type Gate struct {
	cfg config.AuthConfig
}

func NewGate(cfg config.AuthConfig) *Gate {
	return &Gate{cfg: cfg}
}

// RequireAuth returns a Gin middleware enforcing the gate. The outcome is
// strictly allow or deny; no roles, no identities beyond the admin user.
func (g *Gate) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, pass, ok := c.Request.BasicAuth(); ok {
			if g.checkCredentials(user, pass) {
				c.Set(log.FieldUser, user)
				c.Next()
				return
			}
			audit.Log(c.Request.Context(), audit.ActionAuthFailed, user, "basic auth rejected")
			g.deny(c)
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if strings.HasPrefix(authHeader, BearerPrefix) {
			token := strings.TrimPrefix(authHeader, BearerPrefix)
			if user, err := g.validateToken(token); err == nil {
				c.Set(log.FieldUser, user)
				c.Next()
				return
			}
			audit.Log(c.Request.Context(), audit.ActionAuthFailed, "", "bearer token rejected")
			g.deny(c)
			return
		}

		g.deny(c)
	}
}

func (g *Gate) deny(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="signage"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
}

// checkCredentials compares in constant time so the gate leaks nothing
// about which part of the pair was wrong.
func (g *Gate) checkCredentials(user, pass string) bool {
	if g.cfg.Password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(g.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(g.cfg.Password)) == 1
	return userOK && passOK
}

// IssueToken exchanges valid credentials for a signed bearer token.
func (g *Gate) IssueToken(user, pass string) (string, time.Time, error) {
	if !g.checkCredentials(user, pass) {
		return "", time.Time{}, fmt.Errorf("invalid credentials")
	}
	if g.cfg.JWTSecret == "" {
		return "", time.Time{}, fmt.Errorf("token auth is not configured")
	}

	now := time.Now()
	expires := now.Add(g.cfg.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})

	signed, err := token.SignedString([]byte(g.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

func (g *Gate) validateToken(tokenString string) (string, error) {
	if g.cfg.JWTSecret == "" {
		return "", fmt.Errorf("token auth is not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(g.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.Subject, nil
}
