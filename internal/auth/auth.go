package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mwaldhauser/incentiva/internal/database"
	apperrors "github.com/mwaldhauser/incentiva/internal/errors"
)

// SessionCookie is the cookie carrying the admin session token.
const SessionCookie = "incentiva_session"

const sessionTTL = 24 * time.Hour

// AdminStore looks up admin accounts by email.
type AdminStore interface {
	GetAdminByEmail(ctx context.Context, email string) (*database.Admin, error)
}

// Service authenticates admins and manages session tokens. Admin accounts are
// a table of allowed emails plus one shared password from the environment, so
// adding an admin never requires a deployment.
type Service struct {
	store         AdminStore
	jwtSecret     []byte
	adminPassword [sha256.Size]byte
}

// NewService creates an authentication service.
func NewService(store AdminStore, jwtSecret, adminPassword string) *Service {
	return &Service{
		store:         store,
		jwtSecret:     []byte(jwtSecret),
		adminPassword: sha256.Sum256([]byte(adminPassword)),
	}
}

// Login verifies the credentials and returns a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up admin: %w", err)
	}

	given := sha256.Sum256([]byte(password))
	passwordOK := subtle.ConstantTimeCompare(given[:], s.adminPassword[:]) == 1

	if admin == nil || !passwordOK {
		return "", apperrors.NewUnauthorizedError("invalid email or password")
	}

	return s.generateSessionToken(admin.Email)
}

// generateSessionToken creates a JWT session token for an admin email.
func (s *Service) generateSessionToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(sessionTTL).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateSessionToken validates a JWT session token and returns the admin
// email it was issued for.
func (s *Service) ValidateSessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		email, ok := claims["email"].(string)
		if !ok {
			return "", fmt.Errorf("email not found in token")
		}
		return email, nil
	}

	return "", fmt.Errorf("invalid token")
}

// SetSessionCookie writes the session cookie on the response.
func SetSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(sessionTTL.Seconds()), "/", "", false, true)
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// RequireAdmin rejects requests that do not carry a valid session cookie. The
// authenticated email is stored in the context under "admin_email".
func (s *Service) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil {
			c.Error(apperrors.NewUnauthorizedError("authentication required"))
			c.Abort()
			return
		}

		email, err := s.ValidateSessionToken(tokenString)
		if err != nil {
			c.Error(apperrors.NewUnauthorizedError("invalid or expired session"))
			c.Abort()
			return
		}

		c.Set("admin_email", email)
		c.Next()
	}
}
