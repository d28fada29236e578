// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"
)

// ProvisioningGuard is a best-effort lock shared between processes. It
// narrows the window in which two triggers provision the same user; it does
// not replace the storage-level unique constraint.
type ProvisioningGuard interface {
	// Acquire tries to take the lock for key. It returns a release function
	// and true when the lock was taken, or false when someone else holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}
