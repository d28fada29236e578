// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
)

// DefaultIdentityAudience is the audience the identity provider sets on
// access tokens of signed-in users.
const DefaultIdentityAudience = "authenticated"

// IdentityMetadata holds the profile fields the identity provider copies from
// the social login into the token.
type IdentityMetadata struct {
	FullName string `json:"full_name,omitempty"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// IdentityClaims represents the claims of an identity-provider access token.
type IdentityClaims struct {
	Email        string           `json:"email"`
	Phone        string           `json:"phone,omitempty"`
	Role         string           `json:"role,omitempty"`
	UserMetadata IdentityMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// identityVerifier implements the adapter.IdentityVerifier interface for
// HS256 tokens signed with the provider's shared secret.
type identityVerifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewIdentityVerifier creates a new identity verifier. Empty issuer or
// audience disables the corresponding check.
func NewIdentityVerifier(secret, issuer, audience string) adapter.IdentityVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &identityVerifier{
		secret: []byte(secret),
		opts:   opts,
	}
}

// Verify validates token and returns the identity it carries.
func (v *identityVerifier) Verify(ctx context.Context, token string) (*entity.IdentityProfile, error) {
	claims := &IdentityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainerror.NewAuthError(domainerror.ErrCodeExpiredToken, "token has expired", domainerror.ErrExpiredToken)
		}
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidToken,
			"invalid token",
			errors.Join(domainerror.ErrInvalidToken, err),
		)
	}
	if !parsed.Valid {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeInvalidToken, "invalid token", domainerror.ErrInvalidToken)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidToken,
			"token has no subject",
			fmt.Errorf("%w: missing sub claim", domainerror.ErrInvalidToken),
		)
	}

	phone := claims.UserMetadata.Phone
	if phone == "" {
		phone = claims.Phone
	}

	return &entity.IdentityProfile{
		Subject:  claims.Subject,
		Email:    claims.Email,
		FullName: claims.UserMetadata.FullName,
		Name:     claims.UserMetadata.Name,
		Phone:    phone,
	}, nil
}
