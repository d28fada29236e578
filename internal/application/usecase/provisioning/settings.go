// Package provisioning contains the use cases that turn a verified identity
// into a usable account and repair accounts whose default data is missing.
package provisioning

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/household-ledger/backend/internal/domain/entity"
)

const (
	provisioningLockPrefix = "provisioning:"
	repairLockPrefix       = "repair:"
	lockPollInterval       = 100 * time.Millisecond
)

// Settings holds the tunables shared by the provisioning use cases.
type Settings struct {
	UserDefaults         entity.UserDefaults
	BudgetAmount         decimal.Decimal
	BudgetAlertThreshold int
	StepTimeout          time.Duration
	LockTTL              time.Duration
	LockWait             time.Duration
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
