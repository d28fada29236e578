// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/household-ledger/backend/internal/domain/entity"
)

// WelcomeNotifier tells a newly provisioned user that their ledger is ready.
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, user *entity.User, group *entity.Group) error
}
