package grantkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for GrantKit operations.
var (
	// ErrNoGrant is returned when none of a user's roles hold a grant for a
	// module. Surfaced to end users as a plain authorization failure.
	ErrNoGrant = errors.New("grantkit: no grant for module")

	// ErrCapabilityDenied is returned when a grant exists but the requested
	// capability flag is false on every contributing grant.
	ErrCapabilityDenied = errors.New("grantkit: capability denied")

	// ErrScopeDenied is returned when a capability is enabled but the record
	// falls outside the effective scope.
	ErrScopeDenied = errors.New("grantkit: record outside scope")

	// ErrInvalidScopeConfig is returned when a stored grant carries an
	// unrecognized scope value. A configuration error, not a user error.
	ErrInvalidScopeConfig = errors.New("grantkit: invalid scope configuration")

	// ErrUnknownModule is returned when a module is not defined in the registry.
	ErrUnknownModule = errors.New("grantkit: unknown module")

	// ErrUnknownOperation is returned for operations outside view/create/edit/delete.
	ErrUnknownOperation = errors.New("grantkit: unknown operation")

	// ErrRoleNotAssigned is returned when revoking a role the user does not
	// hold. An administration error, not an authorization denial.
	ErrRoleNotAssigned = errors.New("grantkit: role not assigned to user")

	// ErrNoUserID is returned when the acting user cannot be determined.
	ErrNoUserID = errors.New("grantkit: no user ID in context")

	// ErrNoActorID is returned when a mutation lacks an actor for audit.
	ErrNoActorID = errors.New("grantkit: no actor ID in context")

	// ErrStorage is returned when fetching or mutating grant data fails.
	// Deliberately distinct from ErrNoGrant: a database outage is not
	// "user has no permission".
	ErrStorage = errors.New("grantkit: storage error")
)

// Error wraps a sentinel error with evaluation context.
type Error struct {
	Err       error  // Underlying sentinel error
	Message   string // Additional context
	Module    string // Module involved
	Operation string // Operation involved (if applicable)
	RoleID    string // Role involved (if applicable)
	UserID    string // User involved (if applicable)
	ActorID   string // Actor who triggered the error (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithModule adds the module to the error.
func (e *Error) WithModule(module string) *Error {
	e.Module = module
	return e
}

// WithOperation adds the operation to the error.
func (e *Error) WithOperation(op Operation) *Error {
	e.Operation = string(op)
	return e
}

// WithRole adds the role to the error.
func (e *Error) WithRole(roleID string) *Error {
	e.RoleID = roleID
	return e
}

// WithUser adds the user to the error.
func (e *Error) WithUser(userID string) *Error {
	e.UserID = userID
	return e
}

// WithActor adds the actor to the error.
func (e *Error) WithActor(actorID string) *Error {
	e.ActorID = actorID
	return e
}

// IsDenied reports whether an error is any authorization denial
// (no grant, capability, scope or scope-config denial).
func IsDenied(err error) bool {
	return errors.Is(err, ErrNoGrant) ||
		errors.Is(err, ErrCapabilityDenied) ||
		errors.Is(err, ErrScopeDenied) ||
		errors.Is(err, ErrInvalidScopeConfig)
}

// IsInvalidScopeConfig reports whether an error is a scope configuration error.
func IsInvalidScopeConfig(err error) bool {
	return errors.Is(err, ErrInvalidScopeConfig)
}

// IsUnknownModule reports whether an error is due to an undefined module.
func IsUnknownModule(err error) bool {
	return errors.Is(err, ErrUnknownModule)
}

// IsStorage reports whether an error originated in grant storage.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// ReasonError maps a deny reason to its sentinel error, for callers that
// prefer error flow over inspecting Decision.Reason.
func ReasonError(reason Reason) error {
	switch reason {
	case ReasonNoGrant:
		return ErrNoGrant
	case ReasonCapabilityDenied:
		return ErrCapabilityDenied
	case ReasonScopeDenied:
		return ErrScopeDenied
	case ReasonInvalidScopeConfig:
		return ErrInvalidScopeConfig
	}
	return nil
}
