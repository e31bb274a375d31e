package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"proprime.com/site-backend/internal/config"
)

const tokenLifetime = 24 * time.Hour

// Manager issues and validates admin tokens. It owns the signing secret and
// the configured admin credentials so none of that lives in global state.
type Manager struct {
	secret        []byte
	adminUsername string
	adminPassword string
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{
		secret:        []byte(cfg.JWTSecret),
		adminUsername: cfg.AdminUsername,
		adminPassword: cfg.AdminPassword,
	}
}

// CheckCredentials verifies an admin login attempt. ADMIN_PASSWORD may be
// configured either as a bcrypt hash or as plaintext.
func (m *Manager) CheckCredentials(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(m.adminUsername)) != 1 {
		return false
	}
	if strings.HasPrefix(m.adminPassword, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(m.adminPassword), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(m.adminPassword)) == 1
}

func (m *Manager) GenerateToken(principal string) (string, error) {
	claims := jwt.MapClaims{
		"sub": principal,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken returns the principal ("sub" claim) of a valid token.
func (m *Manager) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if sub, ok := claims["sub"].(string); ok {
			return sub, nil
		}
	}

	return "", fmt.Errorf("invalid token")
}
