package grantkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGrantSetIndexing tests module indexing and lookups
func TestGrantSetIndexing(t *testing.T) {
	grants := []RoleModuleGrant{
		{RoleID: "r1", Module: "properties", CanView: true, ScopeView: ScopeOwn},
		{RoleID: "r2", Module: "properties", CanView: true, ScopeView: ScopeAll},
		{RoleID: "r1", Module: "leads", CanCreate: true},
	}
	gs := NewGrantSet("u1", grants)

	assert.Equal(t, "u1", gs.UserID)
	assert.Len(t, gs.ForModule("properties"), 2)
	assert.Len(t, gs.ForModule("leads"), 1)
	assert.Empty(t, gs.ForModule("sales"))

	assert.True(t, gs.HasGrants("properties"))
	assert.False(t, gs.HasGrants("sales"))
	assert.False(t, gs.IsEmpty())
	assert.ElementsMatch(t, []string{"properties", "leads"}, gs.Modules())

	empty := NewGrantSet("u2", nil)
	assert.True(t, empty.IsEmpty())
}

// TestGrantSetCapability tests the capability OR across grants
func TestGrantSetCapability(t *testing.T) {
	gs := NewGrantSet("u1", []RoleModuleGrant{
		{RoleID: "r1", Module: "properties", CanView: true},
		{RoleID: "r2", Module: "properties", CanEdit: true},
	})

	assert.True(t, gs.Capability("properties", OpView))
	assert.True(t, gs.Capability("properties", OpEdit))
	assert.False(t, gs.Capability("properties", OpCreate))
	assert.False(t, gs.Capability("properties", OpDelete))
	assert.False(t, gs.Capability("leads", OpView))
}

// TestGrantSetEffectiveScopeUnion tests that the effective scope is the most
// permissive scope among grants enabling the capability
func TestGrantSetEffectiveScopeUnion(t *testing.T) {
	gs := NewGrantSet("u1", []RoleModuleGrant{
		{RoleID: "r1", Module: "properties", CanView: true, ScopeView: ScopeOwn},
		{RoleID: "r2", Module: "properties", CanView: true, ScopeView: ScopeAll},
	})

	scope, err := gs.EffectiveScope("properties", OpView)
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, scope)
}

// TestGrantSetEffectiveScopeNonContributing tests that a grant without the
// capability contributes no scope, even with a permissive scope column
func TestGrantSetEffectiveScopeNonContributing(t *testing.T) {
	gs := NewGrantSet("u1", []RoleModuleGrant{
		{RoleID: "r1", Module: "properties", CanView: true, ScopeView: ScopeOwn},
		// can_view false: its scope_view all must not widen the union
		{RoleID: "r2", Module: "properties", CanView: false, ScopeView: ScopeAll},
	})

	scope, err := gs.EffectiveScope("properties", OpView)
	require.NoError(t, err)
	assert.Equal(t, ScopeOwn, scope)
}

// TestGrantSetEffectiveScopeMonotonic tests that adding a more permissive
// role never decreases access
func TestGrantSetEffectiveScopeMonotonic(t *testing.T) {
	base := []RoleModuleGrant{
		{RoleID: "r1", Module: "properties", CanView: true, ScopeView: ScopeOwn},
	}
	before, err := NewGrantSet("u1", base).EffectiveScope("properties", OpView)
	require.NoError(t, err)

	widened := append(base, RoleModuleGrant{
		RoleID: "r2", Module: "properties", CanView: true, ScopeView: ScopeTeam,
	})
	after, err := NewGrantSet("u1", widened).EffectiveScope("properties", OpView)
	require.NoError(t, err)

	assert.Equal(t, after, before.MostPermissive(after))
}

// TestGrantSetEffectiveScopeInvalidConfig tests fail-closed behavior for
// unrecognized stored scope values
func TestGrantSetEffectiveScopeInvalidConfig(t *testing.T) {
	gs := NewGrantSet("u1", []RoleModuleGrant{
		{RoleID: "r1", Module: "properties", CanView: true, ScopeView: ScopeLevel("department")},
	})

	_, err := gs.EffectiveScope("properties", OpView)
	require.Error(t, err)
	assert.True(t, IsInvalidScopeConfig(err))

	var gkErr *Error
	require.ErrorAs(t, err, &gkErr)
	assert.Equal(t, "properties", gkErr.Module)
	assert.Equal(t, "r1", gkErr.RoleID)
}

// TestGrantSetEffectiveScopeEditUsesEditScope tests that edit and delete read
// the mutation scope while view reads the view scope
func TestGrantSetEffectiveScopeEditUsesEditScope(t *testing.T) {
	gs := NewGrantSet("u1", []RoleModuleGrant{
		{
			RoleID: "r1", Module: "properties",
			CanView: true, CanEdit: true, CanDelete: true,
			ScopeView: ScopeAll, ScopeEdit: ScopeOwn,
		},
	})

	view, err := gs.EffectiveScope("properties", OpView)
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, view)

	edit, err := gs.EffectiveScope("properties", OpEdit)
	require.NoError(t, err)
	assert.Equal(t, ScopeOwn, edit)

	del, err := gs.EffectiveScope("properties", OpDelete)
	require.NoError(t, err)
	assert.Equal(t, ScopeOwn, del)
}

// TestGrantSetEffectiveScopeNoCapability tests the no-contributor error
func TestGrantSetEffectiveScopeNoCapability(t *testing.T) {
	gs := NewGrantSet("u1", []RoleModuleGrant{
		{RoleID: "r1", Module: "properties", CanView: true, ScopeView: ScopeAll},
	})

	_, err := gs.EffectiveScope("properties", OpEdit)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapabilityDenied)
}

// TestGrantSetFieldPolicyUnion tests most-permissive-wins across roles
func TestGrantSetFieldPolicyUnion(t *testing.T) {
	gs := NewGrantSet("u1", []RoleModuleGrant{
		{
			RoleID: "r1", Module: "properties", CanView: true,
			FieldPermissions: map[string]FieldAccess{
				"price":      FieldHidden,
				"commission": FieldHidden,
			},
		},
		{
			RoleID: "r2", Module: "properties", CanView: true,
			FieldPermissions: map[string]FieldAccess{
				"price": FieldEditable,
				"notes": FieldReadOnly,
			},
		},
	})

	policy := gs.FieldPolicy("properties")
	assert.Equal(t, FieldEditable, policy["price"])
	assert.Equal(t, FieldHidden, policy["commission"])
	assert.Equal(t, FieldReadOnly, policy["notes"])
	_, mapped := policy["address"]
	assert.False(t, mapped)
}

// TestGrantSetFieldPolicyIgnoresNonViewGrants tests that a role without read
// access contributes nothing to the field policy
func TestGrantSetFieldPolicyIgnoresNonViewGrants(t *testing.T) {
	gs := NewGrantSet("u1", []RoleModuleGrant{
		{
			RoleID: "r-viewer", Module: "properties", CanView: true,
			FieldPermissions: map[string]FieldAccess{
				"commission": FieldHidden,
			},
		},
		{
			RoleID: "r-creator", Module: "properties", CanView: false, CanCreate: true,
			FieldPermissions: map[string]FieldAccess{
				"commission": FieldEditable,
				"margin":     FieldEditable,
			},
		},
	})

	policy := gs.FieldPolicy("properties")
	assert.Equal(t, FieldHidden, policy["commission"])
	_, mapped := policy["margin"]
	assert.False(t, mapped)
}

// TestGrantSetFieldPolicyMalformedLevel tests that malformed stored levels
// collapse to hidden instead of widening access
func TestGrantSetFieldPolicyMalformedLevel(t *testing.T) {
	gs := NewGrantSet("u1", []RoleModuleGrant{
		{
			RoleID: "r1", Module: "properties", CanView: true,
			FieldPermissions: map[string]FieldAccess{
				"price": FieldAccess("writable"),
			},
		},
	})

	policy := gs.FieldPolicy("properties")
	assert.Equal(t, FieldHidden, policy["price"])
}

// TestGrantSetDefaultFieldAccess tests the unmapped-field fallback
func TestGrantSetDefaultFieldAccess(t *testing.T) {
	readOnly := NewGrantSet("u1", []RoleModuleGrant{
		{RoleID: "r1", Module: "properties", CanView: true},
	})
	assert.Equal(t, FieldReadOnly, readOnly.DefaultFieldAccess("properties"))

	editable := NewGrantSet("u1", []RoleModuleGrant{
		{RoleID: "r1", Module: "properties", CanView: true},
		{RoleID: "r2", Module: "properties", CanEdit: true},
	})
	assert.Equal(t, FieldEditable, editable.DefaultFieldAccess("properties"))
}
