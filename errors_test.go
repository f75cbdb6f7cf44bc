package grantkit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrorWrapping tests sentinel wrapping and context chainers
func TestErrorWrapping(t *testing.T) {
	err := NewError(ErrScopeDenied, "record outside team").
		WithModule("properties").
		WithOperation(OpEdit).
		WithRole("r1").
		WithUser("u1").
		WithActor("admin1")

	assert.Equal(t, "grantkit: record outside scope: record outside team", err.Error())
	assert.Equal(t, "properties", err.Module)
	assert.Equal(t, "edit", err.Operation)
	assert.Equal(t, "r1", err.RoleID)
	assert.Equal(t, "u1", err.UserID)
	assert.Equal(t, "admin1", err.ActorID)

	assert.ErrorIs(t, err, ErrScopeDenied)
	assert.NotErrorIs(t, err, ErrNoGrant)

	var gkErr *Error
	require.ErrorAs(t, fmt.Errorf("handler: %w", err), &gkErr)
	assert.Equal(t, "properties", gkErr.Module)
}

// TestErrorWithoutMessage tests rendering when only the sentinel is present
func TestErrorWithoutMessage(t *testing.T) {
	err := NewError(ErrNoGrant, "")
	assert.Equal(t, ErrNoGrant.Error(), err.Error())
}

// TestIsDenied tests denial classification across the taxonomy
func TestIsDenied(t *testing.T) {
	assert.True(t, IsDenied(ErrNoGrant))
	assert.True(t, IsDenied(ErrCapabilityDenied))
	assert.True(t, IsDenied(ErrScopeDenied))
	assert.True(t, IsDenied(ErrInvalidScopeConfig))
	assert.True(t, IsDenied(NewError(ErrScopeDenied, "wrapped")))

	// Storage failures are not denials: an outage is not "no permission"
	assert.False(t, IsDenied(ErrStorage))
	assert.False(t, IsDenied(NewError(ErrStorage, "connection refused")))
	assert.False(t, IsDenied(errors.New("unrelated")))
	assert.False(t, IsDenied(nil))

	// Administration errors are not denials either: revoking a role the user
	// never held is a not-found, not a module-grant outcome
	assert.False(t, IsDenied(ErrRoleNotAssigned))
	assert.NotErrorIs(t, NewError(ErrRoleNotAssigned, "user does not hold this role"), ErrNoGrant)
}

// TestIsHelpers tests the remaining classification helpers
func TestIsHelpers(t *testing.T) {
	assert.True(t, IsInvalidScopeConfig(NewError(ErrInvalidScopeConfig, "bad")))
	assert.False(t, IsInvalidScopeConfig(ErrScopeDenied))

	assert.True(t, IsStorage(NewError(ErrStorage, "timeout")))
	assert.False(t, IsStorage(ErrNoGrant))

	assert.True(t, IsUnknownModule(fmt.Errorf("%w: module %q", ErrUnknownModule, "x")))
	assert.False(t, IsUnknownModule(ErrNoGrant))
}

// TestReasonError tests the reason-to-sentinel mapping
func TestReasonError(t *testing.T) {
	assert.ErrorIs(t, ReasonError(ReasonNoGrant), ErrNoGrant)
	assert.ErrorIs(t, ReasonError(ReasonCapabilityDenied), ErrCapabilityDenied)
	assert.ErrorIs(t, ReasonError(ReasonScopeDenied), ErrScopeDenied)
	assert.ErrorIs(t, ReasonError(ReasonInvalidScopeConfig), ErrInvalidScopeConfig)
	assert.Nil(t, ReasonError(ReasonAllowed))
}
