package grantkit

import (
	"context"
	"testing"

	"github.com/fernandezvara/dbkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// These tests cover the validation paths that fail before any query runs, so
// they need no database. The storage paths are exercised by the integration
// tests.

// TestNewService tests service construction.
func TestNewService(t *testing.T) {
	registry := testRegistry()
	service := NewService(registry, nil)

	require.NotNil(t, service)
	assert.Same(t, registry, service.Registry())
	assert.NotNil(t, service.logger)

	logger := zap.NewNop()
	service = NewService(registry, nil, WithLogger(logger))
	assert.Same(t, logger, service.logger)
}

// TestServiceHandleUsesContextTransaction tests that queries issued under
// Transaction resolve to the transaction handle, not the root pool
func TestServiceHandleUsesContextTransaction(t *testing.T) {
	service := NewService(testRegistry(), nil)
	ctx := context.Background()

	// No transaction in flight: the root handle
	assert.Equal(t, service.db, service.handle(ctx))

	tx := &dbkit.Tx{}
	txCtx := withTx(ctx, tx)
	assert.Same(t, tx, service.handle(txCtx))

	got, ok := txFromContext(txCtx)
	require.True(t, ok)
	assert.Same(t, tx, got)

	_, ok = txFromContext(ctx)
	assert.False(t, ok)
}

// TestUpsertGrantValidation tests rejection of malformed grants before storage
func TestUpsertGrantValidation(t *testing.T) {
	service := NewService(testRegistry(), nil)
	ctx := WithActorID(context.Background(), "admin1")

	t.Run("unregistered module", func(t *testing.T) {
		err := service.UpsertGrant(ctx, RoleModuleGrant{RoleID: "r1", Module: "payroll"})
		assert.True(t, IsUnknownModule(err))
	})

	t.Run("malformed view scope", func(t *testing.T) {
		err := service.UpsertGrant(ctx, RoleModuleGrant{
			RoleID: "r1", Module: "properties",
			ScopeView: ScopeLevel("department"), ScopeEdit: ScopeNone,
		})
		require.Error(t, err)
		assert.True(t, IsInvalidScopeConfig(err))

		var gkErr *Error
		require.ErrorAs(t, err, &gkErr)
		assert.Equal(t, "r1", gkErr.RoleID)
		assert.Equal(t, "properties", gkErr.Module)
	})

	t.Run("malformed edit scope", func(t *testing.T) {
		err := service.UpsertGrant(ctx, RoleModuleGrant{
			RoleID: "r1", Module: "properties",
			ScopeView: ScopeOwn, ScopeEdit: ScopeLevel("global"),
		})
		assert.True(t, IsInvalidScopeConfig(err))
	})

	t.Run("malformed field access level", func(t *testing.T) {
		err := service.UpsertGrant(ctx, RoleModuleGrant{
			RoleID: "r1", Module: "properties",
			ScopeView: ScopeOwn, ScopeEdit: ScopeNone,
			FieldPermissions: map[string]FieldAccess{"commission": FieldAccess("writable")},
		})
		assert.True(t, IsInvalidScopeConfig(err))
	})

	t.Run("missing actor", func(t *testing.T) {
		err := service.UpsertGrant(context.Background(), RoleModuleGrant{
			RoleID: "r1", Module: "properties",
			ScopeView: ScopeOwn, ScopeEdit: ScopeNone,
		})
		assert.ErrorIs(t, err, ErrNoActorID)
	})
}

// TestRemoveGrantValidation tests the pre-storage checks of RemoveGrant
func TestRemoveGrantValidation(t *testing.T) {
	service := NewService(testRegistry(), nil)

	err := service.RemoveGrant(context.Background(), "r1", "payroll")
	assert.True(t, IsUnknownModule(err))

	err = service.RemoveGrant(context.Background(), "r1", "properties")
	assert.ErrorIs(t, err, ErrNoActorID)
}

// TestRoleAssignmentValidation tests that assignment mutations require an actor
func TestRoleAssignmentValidation(t *testing.T) {
	service := NewService(testRegistry(), nil)
	ctx := context.Background()

	assert.ErrorIs(t, service.AssignRole(ctx, "u1", "r1"), ErrNoActorID)
	assert.ErrorIs(t, service.RevokeRole(ctx, "u1", "r1"), ErrNoActorID)
}

// TestActorIDFromActorFallback tests that mutations accept the acting user's
// identity when no explicit actor ID was set
func TestActorIDFromActorFallback(t *testing.T) {
	ctx := WithActor(context.Background(), Actor{UserID: "admin1"})
	assert.Equal(t, "admin1", GetActorID(ctx))

	// An explicit actor ID wins over the acting user.
	ctx = WithActorID(ctx, "system")
	assert.Equal(t, "system", GetActorID(ctx))
}
