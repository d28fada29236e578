package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/application/usecase/taxonomy"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
)

// Status tells how a provisioning call obtained the account it returns.
type Status string

const (
	// StatusCreated means this call created the account.
	StatusCreated Status = "created"
	// StatusExisting means the account already existed.
	StatusExisting Status = "existing"
	// StatusAdopted means a concurrent trigger created the account first.
	StatusAdopted Status = "adopted"
)

// Seeding steps reported in SeedFailure.Step.
const (
	StepCategories     = "categories"
	StepPaymentMethods = "payment_methods"
	StepBudget         = "budget"
)

// TaxonomyCopier copies the template forest of a kind into a group.
type TaxonomyCopier interface {
	CopyFromTemplates(ctx context.Context, kind entity.NodeKind, ownerUserID, groupID uuid.UUID) (*taxonomy.CopyTreeOutput, error)
}

// SeedFailure records a default-data step that did not complete.
type SeedFailure struct {
	Step string
	Err  error
}

// ProvisionUserOutput represents the account behind an identity.
type ProvisionUserOutput struct {
	User       *entity.User
	Group      *entity.Group
	Membership *entity.GroupMember
	Groups     []*entity.GroupListItem
	Status     Status
	// Degraded is set when the account exists but some default data is
	// missing. RepairUserDataUseCase fills the gap.
	Degraded     bool
	SeedFailures []SeedFailure
}

// ProvisionUserUseCase turns a verified identity into a user with a personal
// ledger, default categories, payment methods and a monthly budget. Calling
// it again for the same identity returns the existing account.
type ProvisionUserUseCase struct {
	userRepo     adapter.UserRepository
	groupRepo    adapter.GroupRepository
	taxonomyRepo adapter.TaxonomyRepository
	budgetRepo   adapter.BudgetRepository
	copier       TaxonomyCopier
	transactor   adapter.Transactor
	guard        adapter.ProvisioningGuard
	notifier     adapter.WelcomeNotifier
	budgets      *budgetSeeder
	settings     Settings
	flight       singleflight.Group
}

// NewProvisionUserUseCase creates a new ProvisionUserUseCase instance.
func NewProvisionUserUseCase(
	userRepo adapter.UserRepository,
	groupRepo adapter.GroupRepository,
	taxonomyRepo adapter.TaxonomyRepository,
	budgetRepo adapter.BudgetRepository,
	copier TaxonomyCopier,
	transactor adapter.Transactor,
	guard adapter.ProvisioningGuard,
	notifier adapter.WelcomeNotifier,
	settings Settings,
) *ProvisionUserUseCase {
	return &ProvisionUserUseCase{
		userRepo:     userRepo,
		groupRepo:    groupRepo,
		taxonomyRepo: taxonomyRepo,
		budgetRepo:   budgetRepo,
		copier:       copier,
		transactor:   transactor,
		guard:        guard,
		notifier:     notifier,
		budgets:      &budgetSeeder{budgetRepo: budgetRepo, settings: settings},
		settings:     settings,
	}
}

// Execute provisions the account for profile, or returns it when it exists.
// Only failures to create the user, group or membership are returned as
// errors; default-data failures are reported through the output.
func (uc *ProvisionUserUseCase) Execute(ctx context.Context, profile entity.IdentityProfile) (*ProvisionUserOutput, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, domainerror.NewProvisioningError(
			domainerror.ErrCodeNotAuthenticated,
			"identity has no email",
			domainerror.ErrNotAuthenticated,
		)
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, domainerror.NewProvisioningError(
			domainerror.ErrCodeInvalidIdentity,
			"identity email is malformed",
			errors.Join(domainerror.ErrInvalidEmail, err),
		)
	}
	profile.Email = email

	// Collapsed triggers share one run that outlives whichever caller started
	// it. Steps keep their own timeout.
	flightCtx := context.WithoutCancel(ctx)
	results := uc.flight.DoChan(email, func() (any, error) {
		return uc.provision(flightCtx, profile)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ProvisionUserOutput), nil
	}
}

func (uc *ProvisionUserUseCase) provision(ctx context.Context, profile entity.IdentityProfile) (*ProvisionUserOutput, error) {
	output, found, err := uc.findExisting(ctx, profile.Email, StatusExisting)
	if err != nil {
		return nil, err
	}
	if found {
		uc.checkDefaults(ctx, output)
		return output, nil
	}

	release, acquired, err := uc.guard.Acquire(ctx, provisioningLockPrefix+profile.Email, uc.settings.LockTTL)
	switch {
	case err != nil:
		slog.WarnContext(ctx, "Provisioning guard unavailable", "email", profile.Email, "error", err)
	case acquired:
		defer release()
	default:
		output, found, err := uc.waitForOther(ctx, profile.Email)
		if err != nil || found {
			return output, err
		}
		slog.WarnContext(ctx, "Provisioning guard still held, continuing", "email", profile.Email)
	}

	output, err = uc.createAccount(ctx, profile)
	if err != nil {
		return nil, err
	}
	if output.Status != StatusCreated {
		return output, nil
	}

	uc.seedDefaults(ctx, output)

	groups, err := uc.listGroups(ctx, output.User.ID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to list groups after provisioning", "user_id", output.User.ID, "error", err)
	}
	output.Groups = groups

	uc.sendWelcome(ctx, output)

	slog.InfoContext(ctx, "User provisioned",
		"user_id", output.User.ID,
		"group_id", output.Group.ID,
		"degraded", output.Degraded,
	)

	return output, nil
}

// createAccount inserts the user, the personal group and the admin membership
// in one transaction. A concurrent trigger that won the race is adopted.
func (uc *ProvisionUserUseCase) createAccount(ctx context.Context, profile entity.IdentityProfile) (*ProvisionUserOutput, error) {
	user := entity.NewUser(profile, uc.settings.UserDefaults)
	group := entity.NewPersonalGroup(user)
	member := entity.NewGroupMember(group.ID, user.ID, entity.MemberRoleAdmin)

	err := uc.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.step(txCtx, func(stepCtx context.Context) error {
			return uc.userRepo.Create(stepCtx, user)
		}); err != nil {
			return err
		}
		if err := uc.step(txCtx, func(stepCtx context.Context) error {
			return uc.groupRepo.CreateGroup(stepCtx, group)
		}); err != nil {
			return err
		}
		return uc.step(txCtx, func(stepCtx context.Context) error {
			return uc.groupRepo.CreateMember(stepCtx, member)
		})
	})
	if err == nil {
		return &ProvisionUserOutput{
			User:       user,
			Group:      group,
			Membership: member,
			Status:     StatusCreated,
		}, nil
	}

	if errors.Is(err, domainerror.ErrConstraintViolation) {
		output, found, findErr := uc.findExisting(ctx, profile.Email, StatusAdopted)
		if findErr == nil && found {
			slog.InfoContext(ctx, "User provisioned concurrently, adopting existing account",
				"email", profile.Email,
				"user_id", output.User.ID,
			)
			return output, nil
		}
	}

	slog.ErrorContext(ctx, "Failed to create account", "email", profile.Email, "error", err)
	return nil, domainerror.NewFatalError("failed to create account", err)
}

// seedDefaults runs every default-data step, recording failures instead of
// returning them.
func (uc *ProvisionUserUseCase) seedDefaults(ctx context.Context, output *ProvisionUserOutput) {
	steps := []struct {
		name string
		kind entity.NodeKind
	}{
		{name: StepCategories, kind: entity.NodeKindCategory},
		{name: StepPaymentMethods, kind: entity.NodeKindPaymentMethod},
	}

	for _, s := range steps {
		if _, err := uc.copier.CopyFromTemplates(ctx, s.kind, output.User.ID, output.Group.ID); err != nil {
			uc.recordFailure(ctx, output, s.name, err)
		}
	}

	if _, err := uc.budgets.seed(ctx, output.User, output.Group.ID); err != nil {
		uc.recordFailure(ctx, output, StepBudget, err)
	}
}

func (uc *ProvisionUserUseCase) recordFailure(ctx context.Context, output *ProvisionUserOutput, step string, err error) {
	slog.WarnContext(ctx, "Default data step failed",
		"step", step,
		"user_id", output.User.ID,
		"group_id", output.Group.ID,
		"error", err,
	)
	output.Degraded = true
	output.SeedFailures = append(output.SeedFailures, SeedFailure{Step: step, Err: err})
}

// checkDefaults marks an existing account degraded when its personal ledger
// lacks default data, so clients can offer a repair. Lookup errors are logged
// and leave the account as it is.
func (uc *ProvisionUserUseCase) checkDefaults(ctx context.Context, output *ProvisionUserOutput) {
	if output.Group == nil {
		return
	}
	groupID := output.Group.ID

	steps := []struct {
		name  string
		count func(ctx context.Context) (int64, error)
	}{
		{name: StepCategories, count: func(ctx context.Context) (int64, error) {
			return uc.taxonomyRepo.CountOwned(ctx, entity.NodeKindCategory, groupID)
		}},
		{name: StepPaymentMethods, count: func(ctx context.Context) (int64, error) {
			return uc.taxonomyRepo.CountOwned(ctx, entity.NodeKindPaymentMethod, groupID)
		}},
		{name: StepBudget, count: func(ctx context.Context) (int64, error) {
			return uc.budgetRepo.CountByGroup(ctx, groupID)
		}},
	}

	for _, s := range steps {
		var count int64
		err := uc.step(ctx, func(stepCtx context.Context) error {
			var err error
			count, err = s.count(stepCtx)
			return err
		})
		if err != nil {
			slog.WarnContext(ctx, "Failed to check default data", "step", s.name, "group_id", groupID, "error", err)
			continue
		}
		if count == 0 {
			output.Degraded = true
			output.SeedFailures = append(output.SeedFailures, SeedFailure{Step: s.name, Err: domainerror.ErrDefaultDataMissing})
		}
	}
}

func (uc *ProvisionUserUseCase) sendWelcome(ctx context.Context, output *ProvisionUserOutput) {
	stepCtx, cancel := withStepTimeout(ctx, uc.settings.StepTimeout)
	defer cancel()

	if err := uc.notifier.SendWelcome(stepCtx, output.User, output.Group); err != nil {
		slog.WarnContext(ctx, "Failed to send welcome email", "user_id", output.User.ID, "error", err)
	}
}

// findExisting loads the account stored for email together with its
// personal group.
func (uc *ProvisionUserUseCase) findExisting(ctx context.Context, email string, status Status) (*ProvisionUserOutput, bool, error) {
	var user *entity.User
	err := uc.step(ctx, func(stepCtx context.Context) error {
		var err error
		user, err = uc.userRepo.FindByEmail(stepCtx, email)
		return err
	})
	if errors.Is(err, domainerror.ErrUserNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domainerror.NewFatalError("failed to look up user", err)
	}

	groups, err := uc.listGroups(ctx, user.ID)
	if err != nil {
		return nil, false, domainerror.NewFatalError("failed to look up user groups", err)
	}

	output := &ProvisionUserOutput{
		User:   user,
		Groups: groups,
		Status: status,
	}

	if personal := personalGroup(groups); personal != nil {
		err := uc.step(ctx, func(stepCtx context.Context) error {
			var err error
			output.Group, err = uc.groupRepo.FindGroupByID(stepCtx, personal.ID)
			return err
		})
		if err != nil {
			return nil, false, domainerror.NewFatalError("failed to load personal group", err)
		}
	}

	return output, true, nil
}

// waitForOther polls for the account while another process holds the guard.
func (uc *ProvisionUserUseCase) waitForOther(ctx context.Context, email string) (*ProvisionUserOutput, bool, error) {
	deadline := time.NewTimer(uc.settings.LockWait)
	defer deadline.Stop()
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-deadline.C:
			return nil, false, nil
		case <-ticker.C:
			output, found, err := uc.findExisting(ctx, email, StatusAdopted)
			if err != nil || found {
				return output, found, err
			}
		}
	}
}

func (uc *ProvisionUserUseCase) listGroups(ctx context.Context, userID uuid.UUID) ([]*entity.GroupListItem, error) {
	var groups []*entity.GroupListItem
	err := uc.step(ctx, func(stepCtx context.Context) error {
		var err error
		groups, err = uc.groupRepo.FindGroupsByUserID(stepCtx, userID)
		return err
	})
	return groups, err
}

func (uc *ProvisionUserUseCase) step(ctx context.Context, fn func(ctx context.Context) error) error {
	stepCtx, cancel := withStepTimeout(ctx, uc.settings.StepTimeout)
	defer cancel()
	return fn(stepCtx)
}

// personalGroup picks the oldest personal membership, or the oldest
// membership of any type.
func personalGroup(groups []*entity.GroupListItem) *entity.GroupListItem {
	for _, g := range groups {
		if g.Type == entity.GroupTypePersonal {
			return g
		}
	}
	if len(groups) > 0 {
		return groups[0]
	}
	return nil
}
