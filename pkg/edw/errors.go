package edw

import (
	"errors"
	"fmt"

	"github.com/de-tools/edw-harness/pkg/models/domain"
)

var (
	// ErrNotImplemented is returned by providers that cannot provision or tear down
	// the warehouse they describe.
	ErrNotImplemented = errors.New("operation not implemented by provider")

	// ErrUserManaged rejects lifecycle calls on resources the harness does not own.
	// It matches ErrNotImplemented as well: the harness implements no lifecycle
	// for a user-managed warehouse.
	ErrUserManaged = fmt.Errorf("%w: resource is user managed", ErrNotImplemented)

	ErrInvalidState = errors.New("invalid resource state")

	// ErrNothingToRestore tells a Restorer found no live warehouse in the recorded metadata.
	ErrNothingToRestore = errors.New("nothing to restore")
)

// InstallationError wraps the transport failure that stopped client preparation.
type InstallationError struct {
	Client string
	Step   string
	Err    error
}

func (e *InstallationError) Error() string {
	return fmt.Sprintf("installation failed on %s at step %q: %v", e.Client, e.Step, e.Err)
}

func (e *InstallationError) Unwrap() error {
	return e.Err
}

type ProvisioningError struct {
	Key domain.ResourceKey
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning %s failed: %v", e.Key, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

type TeardownError struct {
	Key domain.ResourceKey
	Err error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("teardown of %s failed: %v", e.Key, e.Err)
}

func (e *TeardownError) Unwrap() error {
	return e.Err
}
