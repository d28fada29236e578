package provisioning

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
)

// budgetSeeder creates the default monthly budget of a ledger.
type budgetSeeder struct {
	budgetRepo adapter.BudgetRepository
	settings   Settings
}

// seed inserts the default budget for the month the user is currently in.
func (s *budgetSeeder) seed(ctx context.Context, user *entity.User, groupID uuid.UUID) (*entity.Budget, error) {
	budget := entity.NewMonthlyBudget(
		entity.DefaultBudgetName,
		s.settings.BudgetAmount,
		s.settings.BudgetAlertThreshold,
		user.ID,
		groupID,
		s.settings.now().In(userLocation(user)),
	)

	stepCtx, cancel := withStepTimeout(ctx, s.settings.StepTimeout)
	defer cancel()

	if err := s.budgetRepo.Create(stepCtx, budget); err != nil {
		return nil, domainerror.NewSeedFailedError("failed to create default budget", err)
	}
	return budget, nil
}

// userLocation resolves the user's timezone, falling back to UTC.
func userLocation(user *entity.User) *time.Location {
	if user.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		slog.Warn("Unknown user timezone, using UTC", "user_id", user.ID, "timezone", user.Timezone)
		return time.UTC
	}
	return loc
}

func withStepTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
