package grantkit

import (
	"fmt"
	"sync"
)

// Default record columns used when a module does not override them.
const (
	DefaultOwnerColumn = "owner_id"
	DefaultTeamColumn  = "team_id"
)

// Registry holds the fixed module catalog for the application. It is created
// at startup and should be treated as immutable after initialization. The
// catalog is not tenant-editable; tenants edit grants, not modules.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*ModuleDefinition
}

// ModuleDefinition describes one functional area: the record columns its
// scope filters bind to, the system fields redaction must never remove, and
// an optional override for the unmapped-field fallback.
type ModuleDefinition struct {
	name            string
	ownerColumn     string
	teamColumn      string
	protectedFields map[string]bool
	defaultAccess   FieldAccess // empty: fall back to the per-grant default
	registry        *Registry
}

// NewRegistry creates a new module registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]*ModuleDefinition),
	}
}

// DefineModule starts defining a module.
// Returns a ModuleDefinition builder for fluent configuration.
//
// Example:
//
//	registry.DefineModule("properties").
//	    OwnerColumn("agent_id").
//	    TeamColumn("team_id").
//	    ProtectedFields("tenant_id", "agent_id")
func (r *Registry) DefineModule(name string) *ModuleDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := &ModuleDefinition{
		name:        name,
		ownerColumn: DefaultOwnerColumn,
		teamColumn:  DefaultTeamColumn,
		protectedFields: map[string]bool{
			"id":        true,
			"tenant_id": true,
		},
		registry: r,
	}
	// Ownership columns are always protected: hiding or stripping them would
	// break tenant isolation on misconfiguration.
	m.protectedFields[m.ownerColumn] = true
	r.modules[name] = m
	return m
}

// GetModule returns the module definition, or nil if not defined.
func (r *Registry) GetModule(name string) *ModuleDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modules[name]
}

// GetModules returns all defined module names.
func (r *Registry) GetModules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	return names
}

// ValidateModule checks that a module is defined in the catalog.
func (r *Registry) ValidateModule(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.modules[name]; !exists {
		return fmt.Errorf("%w: module %q not defined", ErrUnknownModule, name)
	}
	return nil
}

// OwnerColumn sets the record column holding the owning user ID.
// The column joins the protected field set.
func (m *ModuleDefinition) OwnerColumn(column string) *ModuleDefinition {
	delete(m.protectedFields, m.ownerColumn)
	m.ownerColumn = column
	m.protectedFields[column] = true
	return m
}

// TeamColumn sets the record column holding the team ID.
func (m *ModuleDefinition) TeamColumn(column string) *ModuleDefinition {
	m.teamColumn = column
	return m
}

// ProtectedFields adds fields the redactor must never remove, on top of the
// id/tenant/owner columns that are always protected.
func (m *ModuleDefinition) ProtectedFields(fields ...string) *ModuleDefinition {
	for _, f := range fields {
		m.protectedFields[f] = true
	}
	return m
}

// DefaultFieldAccess overrides the fallback access level for fields unmapped
// by every grant. Without an override, the per-grant default applies
// (editable for edit-capable grants, read_only otherwise).
func (m *ModuleDefinition) DefaultFieldAccess(access FieldAccess) *ModuleDefinition {
	m.defaultAccess = access
	return m
}

// DefineModule continues defining modules on the registry (fluent API).
func (m *ModuleDefinition) DefineModule(name string) *ModuleDefinition {
	return m.registry.DefineModule(name)
}

// Name returns the module name.
func (m *ModuleDefinition) Name() string {
	return m.name
}

// GetOwnerColumn returns the owner column name.
func (m *ModuleDefinition) GetOwnerColumn() string {
	return m.ownerColumn
}

// GetTeamColumn returns the team column name.
func (m *ModuleDefinition) GetTeamColumn() string {
	return m.teamColumn
}

// IsProtected reports whether a field is a protected system field.
func (m *ModuleDefinition) IsProtected(field string) bool {
	return m.protectedFields[field]
}

// GetProtectedFields returns all protected field names.
func (m *ModuleDefinition) GetProtectedFields() []string {
	fields := make([]string, 0, len(m.protectedFields))
	for f := range m.protectedFields {
		fields = append(fields, f)
	}
	return fields
}

// GetDefaultFieldAccess returns the configured fallback, or empty when the
// per-grant default applies.
func (m *ModuleDefinition) GetDefaultFieldAccess() FieldAccess {
	return m.defaultAccess
}
