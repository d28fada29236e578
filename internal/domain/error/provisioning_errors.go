// Package error defines domain-specific errors for the Household Ledger application.
package error

import "errors"

// Provisioning domain errors.
var (
	// ErrConstraintViolation is returned by the persistence layer when an insert
	// collides with a unique key. Callers recover by re-reading the existing row.
	ErrConstraintViolation = errors.New("unique constraint violation")

	// ErrCopyFailed is returned when a taxonomy copy did not complete.
	ErrCopyFailed = errors.New("taxonomy copy failed")

	// ErrSeedFailed is returned when the default budget could not be created.
	ErrSeedFailed = errors.New("default data seeding failed")

	// ErrDefaultDataMissing marks an existing ledger that lacks some default
	// data, usually left behind by an earlier degraded provisioning.
	ErrDefaultDataMissing = errors.New("default data missing")

	// ErrProvisioningFatal is returned when the user, group or membership
	// could not be created. The whole flow must be retried.
	ErrProvisioningFatal = errors.New("provisioning failed")

	// ErrDuplicateTemplateCode is returned when two template nodes of the same
	// kind share a code, which makes parent matching ambiguous.
	ErrDuplicateTemplateCode = errors.New("duplicate template code")

	// ErrTemplateCycle is returned when the template parent links form a cycle.
	ErrTemplateCycle = errors.New("template hierarchy contains a cycle")

	// ErrInvalidNodeKind is returned for an unknown taxonomy kind.
	ErrInvalidNodeKind = errors.New("invalid taxonomy kind")
)

// ProvisioningErrorCode defines error codes for provisioning errors.
// Format: PRV-XXYYYY where XX is category and YYYY is specific error.
type ProvisioningErrorCode string

const (
	// Identity errors (01XXXX)
	ErrCodeNotAuthenticated ProvisioningErrorCode = "PRV-010001"
	ErrCodeInvalidIdentity  ProvisioningErrorCode = "PRV-010002"

	// Storage conflicts (02XXXX)
	ErrCodeConstraintViolation ProvisioningErrorCode = "PRV-020001"

	// Degraded seeding (03XXXX)
	ErrCodeCopyFailed ProvisioningErrorCode = "PRV-030001"
	ErrCodeSeedFailed ProvisioningErrorCode = "PRV-030002"

	// Fatal errors (04XXXX)
	ErrCodeProvisioningFatal ProvisioningErrorCode = "PRV-040001"
)

// ProvisioningError represents a provisioning error with code and message.
type ProvisioningError struct {
	Code    ProvisioningErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ProvisioningError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// NewProvisioningError creates a new ProvisioningError with the given code and message.
func NewProvisioningError(code ProvisioningErrorCode, message string, err error) *ProvisioningError {
	return &ProvisioningError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewCopyFailedError wraps a taxonomy copy failure so that it matches both
// ErrCopyFailed and the underlying cause.
func NewCopyFailedError(message string, cause error) *ProvisioningError {
	return NewProvisioningError(ErrCodeCopyFailed, message, errors.Join(ErrCopyFailed, cause))
}

// NewSeedFailedError wraps a default-data seeding failure.
func NewSeedFailedError(message string, cause error) *ProvisioningError {
	return NewProvisioningError(ErrCodeSeedFailed, message, errors.Join(ErrSeedFailed, cause))
}

// NewFatalError wraps a failure of the account creation steps.
func NewFatalError(message string, cause error) *ProvisioningError {
	return NewProvisioningError(ErrCodeProvisioningFatal, message, errors.Join(ErrProvisioningFatal, cause))
}
