package grantkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryDefineModule tests the fluent catalog builder
func TestRegistryDefineModule(t *testing.T) {
	registry := NewRegistry()
	registry.DefineModule("properties").
		OwnerColumn("agent_id").
		TeamColumn("office_id").
		ProtectedFields("expediente_id").
		DefineModule("leads")

	assert.ElementsMatch(t, []string{"properties", "leads"}, registry.GetModules())

	props := registry.GetModule("properties")
	require.NotNil(t, props)
	assert.Equal(t, "properties", props.Name())
	assert.Equal(t, "agent_id", props.GetOwnerColumn())
	assert.Equal(t, "office_id", props.GetTeamColumn())

	leads := registry.GetModule("leads")
	require.NotNil(t, leads)
	assert.Equal(t, DefaultOwnerColumn, leads.GetOwnerColumn())
	assert.Equal(t, DefaultTeamColumn, leads.GetTeamColumn())

	assert.Nil(t, registry.GetModule("sales"))
}

// TestRegistryProtectedFields tests that isolation keys are always protected
func TestRegistryProtectedFields(t *testing.T) {
	registry := NewRegistry()
	m := registry.DefineModule("properties").
		OwnerColumn("agent_id").
		ProtectedFields("expediente_id")

	assert.True(t, m.IsProtected("id"))
	assert.True(t, m.IsProtected("tenant_id"))
	assert.True(t, m.IsProtected("agent_id"), "owner column joins the protected set")
	assert.True(t, m.IsProtected("expediente_id"))
	assert.False(t, m.IsProtected("price"))

	// Replacing the owner column unprotects the default one
	assert.False(t, m.IsProtected("owner_id"))
	assert.ElementsMatch(t,
		[]string{"id", "tenant_id", "agent_id", "expediente_id"},
		m.GetProtectedFields())
}

// TestRegistryValidateModule tests catalog membership checks
func TestRegistryValidateModule(t *testing.T) {
	registry := NewRegistry()
	registry.DefineModule("properties")

	require.NoError(t, registry.ValidateModule("properties"))

	err := registry.ValidateModule("sales")
	require.Error(t, err)
	assert.True(t, IsUnknownModule(err))
	assert.Contains(t, err.Error(), "sales")
}

// TestRegistryDefaultFieldAccess tests the fallback override
func TestRegistryDefaultFieldAccess(t *testing.T) {
	registry := NewRegistry()
	m := registry.DefineModule("leads").DefaultFieldAccess(FieldReadOnly)

	assert.Equal(t, FieldReadOnly, m.GetDefaultFieldAccess())
	assert.Empty(t, registry.DefineModule("sales").GetDefaultFieldAccess())
}
