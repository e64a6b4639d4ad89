package environment

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrConfiguration reports a malformed or missing configuration field.
// Configuration errors are fatal at construction.
var ErrConfiguration = errors.New("configuration error")

// ErrContractViolation reports a programming error in the caller, such
// as stepping a finished episode or passing an illegal action
var ErrContractViolation = errors.New("contract violation")

// ErrCollaboratorUnavailable reports that an external collaborator
// (observation provider, simulator, or scenario regenerator) failed to
// respond. The core never retries.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// ConfigurationError returns a configuration error for operation op
func ConfigurationError(op, format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, op+": "+format, args...)
}

// ContractViolation returns a contract violation for operation op
func ContractViolation(op, format string, args ...interface{}) error {
	return errors.Wrapf(ErrContractViolation, op+": "+format, args...)
}

// CollaboratorUnavailable wraps err, returned by a collaborator during
// operation op. The returned error matches both ErrCollaboratorUnavailable
// and err.
func CollaboratorUnavailable(op string, err error) error {
	return errors.WithStack(fmt.Errorf("%v: %w: %w", op,
		ErrCollaboratorUnavailable, err))
}

// IsConfiguration returns whether err reports a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsContractViolation returns whether err reports a contract violation
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}

// IsCollaboratorUnavailable returns whether err reports an unavailable
// collaborator
func IsCollaboratorUnavailable(err error) bool {
	return errors.Is(err, ErrCollaboratorUnavailable)
}
