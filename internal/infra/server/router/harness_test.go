package router_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/household-ledger/backend/config"
	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
	"github.com/household-ledger/backend/internal/infra/dependency"
	"github.com/household-ledger/backend/internal/integration/adapters"
	"github.com/household-ledger/backend/internal/integration/persistence"
	"github.com/household-ledger/backend/internal/integration/persistence/persistencetest"
)

const testIdentitySecret = "test-identity-secret-for-testing-purposes"

// harness runs the whole API over an in-memory database, miniredis and a
// mocked Resend endpoint.
type harness struct {
	db       *gorm.DB
	closeDB  func() error
	redis    *miniredis.Miniredis
	client   *redis.Client
	resend   *apiMock
	injector *dependency.Injector
	engine   *gin.Engine

	users    adapter.UserRepository
	groups   adapter.GroupRepository
	taxonomy adapter.TaxonomyRepository
	budgets  adapter.BudgetRepository
}

func testConfig(environment, resendURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Environment: environment},
		Identity: config.IdentityConfig{
			JWTSecret: testIdentitySecret,
			Audience:  adapters.DefaultIdentityAudience,
		},
		Email: config.EmailConfig{
			ResendAPIKey: "re_test_key",
			FromName:     "Household Ledger",
			FromEmail:    "hello@ledger.example.com",
			AppBaseURL:   "https://ledger.example.com",
			BaseURL:      resendURL,
		},
		Provisioning: config.ProvisioningConfig{
			DefaultTimezone:      "Asia/Seoul",
			DefaultLanguage:      "ko",
			DefaultCurrency:      "KRW",
			DefaultBudgetAmount:  "1000000",
			BudgetAlertThreshold: 80,
			StepTimeout:          5 * time.Second,
			LockTTL:              30 * time.Second,
			LockWait:             2 * time.Second,
		},
		RateLimit: config.RateLimitConfig{
			MaxAttempts: 20,
			Window:      time.Minute,
		},
	}
}

func newHarness(cfgFn func(*config.Config)) (*harness, error) {
	db, closeDB, err := persistencetest.Open()
	if err != nil {
		return nil, err
	}

	mr, err := miniredis.Run()
	if err != nil {
		_ = closeDB()
		return nil, err
	}

	h := &harness{
		db:       db,
		closeDB:  closeDB,
		redis:    mr,
		client:   redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		resend:   newAPIMock(),
		users:    persistence.NewUserRepository(db),
		groups:   persistence.NewGroupRepository(db),
		taxonomy: persistence.NewTaxonomyRepository(db),
		budgets:  persistence.NewBudgetRepository(db),
	}
	h.resend.SetResponse(http.MethodPost, "/emails", http.StatusOK, map[string]any{"id": "4ef9a417-02e9-4d39-ad75-9611e0fcc33c"})

	cfg := testConfig("test", h.resend.URL())
	if cfgFn != nil {
		cfgFn(cfg)
	}

	h.injector, err = dependency.NewInjector(cfg, db, h.client)
	if err != nil {
		h.close()
		return nil, err
	}
	h.engine = h.injector.Router.Setup(cfg.Server.Environment)

	return h, nil
}

func (h *harness) close() {
	_ = h.client.Close()
	h.redis.Close()
	h.resend.Close()
	_ = h.closeDB()
}

func (h *harness) seedTemplates() error {
	return h.injector.SeedDefaultTemplates(context.Background())
}

func (h *harness) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

// personalGroupOf returns the id of the oldest ledger of the user behind email.
func (h *harness) personalGroupOf(email string) (uuid.UUID, error) {
	ctx := context.Background()
	user, err := h.users.FindByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	groups, err := h.groups.FindGroupsByUserID(ctx, user.ID)
	if err != nil {
		return uuid.Nil, err
	}
	if len(groups) == 0 {
		return uuid.Nil, fmt.Errorf("%s has no ledger", email)
	}
	return groups[0].ID, nil
}

func signToken(email, fullName string, ttl time.Duration) string {
	now := time.Now()
	claims := adapters.IdentityClaims{
		Email: email,
		Role:  "authenticated",
		UserMetadata: adapters.IdentityMetadata{
			FullName: fullName,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-" + email,
			Audience:  jwt.ClaimStrings{adapters.DefaultIdentityAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testIdentitySecret))
	if err != nil {
		panic(err)
	}
	return token
}

func templateCount(kind entity.NodeKind) int {
	return len(persistence.DefaultTemplates()[kind])
}

func kindFromTable(name string) (entity.NodeKind, error) {
	switch name {
	case "categories":
		return entity.NodeKindCategory, nil
	case "payment_methods", "payment-methods":
		return entity.NodeKindPaymentMethod, nil
	default:
		return "", fmt.Errorf("unknown taxonomy %q", name)
	}
}
