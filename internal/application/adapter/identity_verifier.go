// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/household-ledger/backend/internal/domain/entity"
)

// IdentityVerifier validates access tokens issued by the external identity
// provider and extracts the identity they carry.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*entity.IdentityProfile, error)
}
