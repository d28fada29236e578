// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
	"github.com/household-ledger/backend/internal/integration/entrypoint/dto"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// IdentityKey is the context key for the verified identity profile.
	IdentityKey ContextKey = "identity"
	// UserIDKey is the context key for the authenticated user's ID.
	UserIDKey ContextKey = "user_id"
	// UserEmailKey is the context key for the authenticated user's email.
	UserEmailKey ContextKey = "user_email"
)

// AuthMiddleware verifies identity-provider access tokens.
type AuthMiddleware struct {
	verifier adapter.IdentityVerifier
	userRepo adapter.UserRepository
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(verifier adapter.IdentityVerifier, userRepo adapter.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		userRepo: userRepo,
	}
}

// Authenticate returns a Gin middleware handler that requires a valid access
// token and stores the identity it carries.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required", domainerror.ErrCodeMissingToken)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Invalid authorization header format", domainerror.ErrCodeInvalidToken)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			abortUnauthorized(c, "Token is required", domainerror.ErrCodeMissingToken)
			return
		}

		profile, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			var authErr *domainerror.AuthError
			if errors.As(err, &authErr) && authErr.Code == domainerror.ErrCodeExpiredToken {
				abortUnauthorized(c, "Token has expired", domainerror.ErrCodeExpiredToken)
				return
			}
			abortUnauthorized(c, "Invalid or expired token", domainerror.ErrCodeInvalidToken)
			return
		}

		c.Set(string(IdentityKey), profile)
		c.Set(string(UserEmailKey), strings.ToLower(strings.TrimSpace(profile.Email)))

		c.Next()
	}
}

// RequireAccount returns a Gin middleware handler that loads the account of
// the authenticated identity. It must run after Authenticate. Identities
// without an account get 404 and are expected to call the initialize
// endpoint first.
func (m *AuthMiddleware) RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := GetUserEmailFromContext(c)
		if !ok || email == "" {
			abortUnauthorized(c, "Unauthorized", domainerror.ErrCodeMissingToken)
			return
		}

		user, err := m.userRepo.FindByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, domainerror.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, dto.ErrorResponse{
					Error: "Account not initialized",
					Code:  string(domainerror.ErrCodeUserNotFound),
				})
				c.Abort()
				return
			}
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error: "An internal error occurred",
			})
			c.Abort()
			return
		}

		c.Set(string(UserIDKey), user.ID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string, code domainerror.AuthErrorCode) {
	c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: message,
		Code:  string(code),
	})
	c.Abort()
}

// GetIdentityFromContext extracts the verified identity from the Gin context.
func GetIdentityFromContext(c *gin.Context) (*entity.IdentityProfile, bool) {
	value, exists := c.Get(string(IdentityKey))
	if !exists {
		return nil, false
	}
	profile, ok := value.(*entity.IdentityProfile)
	return profile, ok && profile != nil
}

// GetUserIDFromContext extracts the user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(string(UserIDKey))
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUserEmailFromContext extracts the user email from the Gin context.
func GetUserEmailFromContext(c *gin.Context) (string, bool) {
	email, exists := c.Get(string(UserEmailKey))
	if !exists {
		return "", false
	}
	emailStr, ok := email.(string)
	return emailStr, ok
}
