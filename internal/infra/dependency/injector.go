// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/household-ledger/backend/config"
	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/application/usecase/provisioning"
	"github.com/household-ledger/backend/internal/application/usecase/taxonomy"
	"github.com/household-ledger/backend/internal/domain/entity"
	"github.com/household-ledger/backend/internal/infra/cache"
	"github.com/household-ledger/backend/internal/infra/server/router"
	"github.com/household-ledger/backend/internal/integration/adapters"
	"github.com/household-ledger/backend/internal/integration/email"
	"github.com/household-ledger/backend/internal/integration/email/templates"
	"github.com/household-ledger/backend/internal/integration/entrypoint/controller"
	"github.com/household-ledger/backend/internal/integration/entrypoint/middleware"
	"github.com/household-ledger/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  redis.UniversalClient
	Router *router.Router

	seedTemplates *taxonomy.SeedTemplatesUseCase
}

// NewInjector creates a new dependency injector with all dependencies wired.
// redisClient may be nil, in which case the provisioning guard is a no-op and
// rate limiting is kept in memory.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) (*Injector, error) {
	settings, err := ProvisioningSettings(cfg.Provisioning)
	if err != nil {
		return nil, err
	}

	// Create repositories
	userRepo := persistence.NewUserRepository(db)
	groupRepo := persistence.NewGroupRepository(db)
	taxonomyRepo := persistence.NewTaxonomyRepository(db)
	budgetRepo := persistence.NewBudgetRepository(db)
	transactor := persistence.NewTransactor(db)

	// Create adapters/services
	verifier := adapters.NewIdentityVerifier(cfg.Identity.JWTSecret, cfg.Identity.Issuer, cfg.Identity.Audience)

	guard := adapters.NewNoopProvisioningGuard()
	if redisClient != nil {
		guard = adapters.NewRedisProvisioningGuard(redisClient)
	}

	notifier, err := newWelcomeNotifier(cfg.Email)
	if err != nil {
		return nil, err
	}

	// Create use cases
	copyTreeUseCase := taxonomy.NewCopyTreeUseCase(taxonomyRepo, transactor, settings.StepTimeout)
	listTaxonomyUseCase := taxonomy.NewListGroupTaxonomyUseCase(taxonomyRepo, groupRepo)
	seedTemplatesUseCase := taxonomy.NewSeedTemplatesUseCase(taxonomyRepo, transactor)
	provisionUseCase := provisioning.NewProvisionUserUseCase(
		userRepo, groupRepo, taxonomyRepo, budgetRepo, copyTreeUseCase, transactor, guard, notifier, settings,
	)
	repairUseCase := provisioning.NewRepairUserDataUseCase(
		userRepo, groupRepo, taxonomyRepo, budgetRepo, copyTreeUseCase, transactor, guard, settings,
	)

	// Create controllers
	var redisHealthChecker func() bool
	if redisClient != nil {
		redisHealthChecker = func() bool { return cache.HealthCheck(redisClient) }
	}
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, redisHealthChecker)
	authController := controller.NewAuthController(provisionUseCase, repairUseCase)
	groupController := controller.NewGroupController(listTaxonomyUseCase)

	// Create middleware
	// Use higher rate limits for E2E/test environments to prevent flaky tests
	maxAttempts := cfg.RateLimit.MaxAttempts
	if cfg.Server.Environment == "e2e" || cfg.Server.Environment == "test" {
		maxAttempts = 1000
	}
	var rateLimiter *middleware.RateLimiter
	if redisClient != nil {
		rateLimiter = middleware.NewRedisRateLimiter(redisClient, maxAttempts, cfg.RateLimit.Window)
	} else {
		rateLimiter = middleware.NewRateLimiterWithConfig(maxAttempts, cfg.RateLimit.Window)
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier, userRepo)

	// Create router
	r := router.NewRouter(healthController, authController, groupController, rateLimiter, authMiddleware)

	return &Injector{
		Config:        cfg,
		DB:            db,
		Redis:         redisClient,
		Router:        r,
		seedTemplates: seedTemplatesUseCase,
	}, nil
}

// SeedDefaultTemplates stores the built-in category and payment method
// templates that are not in the database yet.
func (i *Injector) SeedDefaultTemplates(ctx context.Context) error {
	output, err := i.seedTemplates.Execute(ctx, taxonomy.SeedTemplatesInput{
		Templates: persistence.DefaultTemplates(),
	})
	if err != nil {
		return fmt.Errorf("failed to seed templates: %w", err)
	}

	slog.InfoContext(ctx, "Template taxonomy seeded",
		"categories", output.Inserted[entity.NodeKindCategory],
		"payment_methods", output.Inserted[entity.NodeKindPaymentMethod],
	)
	return nil
}

// ProvisioningSettings converts the provisioning configuration into use case
// settings.
func ProvisioningSettings(cfg config.ProvisioningConfig) (provisioning.Settings, error) {
	amount, err := decimal.NewFromString(cfg.DefaultBudgetAmount)
	if err != nil {
		return provisioning.Settings{}, fmt.Errorf("invalid default budget amount %q: %w", cfg.DefaultBudgetAmount, err)
	}
	if amount.IsNegative() {
		return provisioning.Settings{}, fmt.Errorf("default budget amount must not be negative: %s", amount)
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return provisioning.Settings{}, fmt.Errorf("invalid default timezone %q: %w", cfg.DefaultTimezone, err)
	}

	return provisioning.Settings{
		UserDefaults: entity.UserDefaults{
			Timezone: cfg.DefaultTimezone,
			Language: cfg.DefaultLanguage,
			Currency: cfg.DefaultCurrency,
		},
		BudgetAmount:         amount,
		BudgetAlertThreshold: cfg.BudgetAlertThreshold,
		StepTimeout:          cfg.StepTimeout,
		LockTTL:              cfg.LockTTL,
		LockWait:             cfg.LockWait,
	}, nil
}

func newWelcomeNotifier(cfg config.EmailConfig) (adapter.WelcomeNotifier, error) {
	if cfg.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY not set, welcome emails are disabled")
		return email.NewNoopWelcomeNotifier(), nil
	}

	client, err := email.NewResendClient(cfg.ResendAPIKey, cfg.FromName, cfg.FromEmail, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return email.NewWelcomeNotifier(client, renderer, cfg.AppBaseURL), nil
}
