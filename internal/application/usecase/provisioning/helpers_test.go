package provisioning_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/application/usecase/provisioning"
	"github.com/household-ledger/backend/internal/application/usecase/taxonomy"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
	"github.com/household-ledger/backend/internal/integration/persistence"
	"github.com/household-ledger/backend/internal/integration/persistence/persistencetest"
)

type env struct {
	db           *gorm.DB
	users        adapter.UserRepository
	groups       adapter.GroupRepository
	taxonomy     adapter.TaxonomyRepository
	budgets      adapter.BudgetRepository
	transactor   adapter.Transactor
	copier       provisioning.TaxonomyCopier
	guard        *fakeGuard
	notifier     *recordingNotifier
	settings     provisioning.Settings
	templateSize map[entity.NodeKind]int
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := persistencetest.NewDB(t)
	e := &env{
		db:         db,
		users:      persistence.NewUserRepository(db),
		groups:     persistence.NewGroupRepository(db),
		taxonomy:   persistence.NewTaxonomyRepository(db),
		budgets:    persistence.NewBudgetRepository(db),
		transactor: persistence.NewTransactor(db),
		guard:      &fakeGuard{held: map[string]bool{}},
		notifier:   &recordingNotifier{},
		settings: provisioning.Settings{
			UserDefaults:         entity.UserDefaults{Timezone: "Asia/Seoul", Language: "ko", Currency: "KRW"},
			BudgetAmount:         decimal.NewFromInt(1000000),
			BudgetAlertThreshold: 80,
			StepTimeout:          5 * time.Second,
			LockTTL:              time.Minute,
			LockWait:             500 * time.Millisecond,
			Now: func() time.Time {
				return time.Date(2024, time.February, 17, 3, 0, 0, 0, time.UTC)
			},
		},
		templateSize: map[entity.NodeKind]int{},
	}
	e.copier = taxonomy.NewCopyTreeUseCase(e.taxonomy, e.transactor, 5*time.Second)

	templates := persistence.DefaultTemplates()
	for kind, nodes := range templates {
		e.templateSize[kind] = len(nodes)
	}
	_, err := taxonomy.NewSeedTemplatesUseCase(e.taxonomy, e.transactor).Execute(context.Background(), taxonomy.SeedTemplatesInput{
		Templates: templates,
	})
	require.NoError(t, err)

	return e
}

func (e *env) provisioner() *provisioning.ProvisionUserUseCase {
	return provisioning.NewProvisionUserUseCase(
		e.users, e.groups, e.taxonomy, e.budgets, e.copier, e.transactor, e.guard, e.notifier, e.settings,
	)
}

func (e *env) repairer() *provisioning.RepairUserDataUseCase {
	return provisioning.NewRepairUserDataUseCase(
		e.users, e.groups, e.taxonomy, e.budgets, e.copier, e.transactor, e.guard, e.settings,
	)
}

func (e *env) ownedCount(t *testing.T, kind entity.NodeKind, groupID uuid.UUID) int64 {
	t.Helper()
	count, err := e.taxonomy.CountOwned(context.Background(), kind, groupID)
	require.NoError(t, err)
	return count
}

// fakeGuard is an in-memory lock. busy makes every key look taken.
type fakeGuard struct {
	mu   sync.Mutex
	held map[string]bool
	busy bool
	err  error
	keys []string
}

func (g *fakeGuard) Acquire(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.keys = append(g.keys, key)
	if g.err != nil {
		return nil, false, g.err
	}
	if g.busy || g.held[key] {
		return nil, false, nil
	}
	g.held[key] = true
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.held, key)
	}, true, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []string
	fails bool
}

func (n *recordingNotifier) SendWelcome(_ context.Context, user *entity.User, _ *entity.Group) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fails {
		return errors.New("email provider unavailable")
	}
	n.sent = append(n.sent, user.Email)
	return nil
}

// failingCopier fails every copy of one kind.
type failingCopier struct {
	next provisioning.TaxonomyCopier
	kind entity.NodeKind
}

func (c *failingCopier) CopyFromTemplates(ctx context.Context, kind entity.NodeKind, ownerUserID, groupID uuid.UUID) (*taxonomy.CopyTreeOutput, error) {
	if kind == c.kind {
		return nil, domainerror.NewCopyFailedError("copy timed out", context.DeadlineExceeded)
	}
	return c.next.CopyFromTemplates(ctx, kind, ownerUserID, groupID)
}

// racingUserRepository hides the stored user from the first lookups, as if a
// concurrent trigger inserted it right after they ran.
type racingUserRepository struct {
	adapter.UserRepository
	misses atomic.Int32
}

func (r *racingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if r.misses.Add(-1) >= 0 {
		return nil, domainerror.ErrUserNotFound
	}
	return r.UserRepository.FindByEmail(ctx, email)
}

// stalledUserRepository blocks the first FindByEmail until release is closed
// or the caller's context ends.
type stalledUserRepository struct {
	adapter.UserRepository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newStalledUserRepository(next adapter.UserRepository) *stalledUserRepository {
	return &stalledUserRepository{
		UserRepository: next,
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
}

func (r *stalledUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	first := false
	r.once.Do(func() {
		first = true
		close(r.entered)
	})
	if first {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.UserRepository.FindByEmail(ctx, email)
}

type brokenUserRepository struct {
	adapter.UserRepository
}

func (r *brokenUserRepository) Create(context.Context, *entity.User) error {
	return errors.New("connection reset by peer")
}

type brokenBudgetRepository struct {
	adapter.BudgetRepository
}

func (r *brokenBudgetRepository) Create(context.Context, *entity.Budget) error {
	return errors.New("budgets table is locked")
}

// provisionElsewhere stores an account the way another process would.
func provisionElsewhere(t *testing.T, e *env, email string) (*entity.User, *entity.Group) {
	t.Helper()
	ctx := context.Background()

	user := entity.NewUser(entity.IdentityProfile{Email: email}, e.settings.UserDefaults)
	require.NoError(t, e.users.Create(ctx, user))
	group := entity.NewPersonalGroup(user)
	require.NoError(t, e.groups.CreateGroup(ctx, group))
	require.NoError(t, e.groups.CreateMember(ctx, entity.NewGroupMember(group.ID, user.ID, entity.MemberRoleAdmin)))
	return user, group
}
