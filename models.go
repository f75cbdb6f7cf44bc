package grantkit

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is a named bundle of grants assignable to users. Roles are tenant
// administration data; they are never hard-deleted while referenced.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID          string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TenantID    string    `bun:"tenant_id,notnull"`
	Name        string    `bun:"name,notnull"`
	DisplayName string    `bun:"display_name"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// UserRole is the user-to-role join. A user can hold any number of roles;
// effective permissions are the union across them.
type UserRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:ur"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID    string    `bun:"user_id,notnull"`
	RoleID    string    `bun:"role_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// RoleModuleGrant is the central entity: one row per (role, module) encoding
// capabilities, scopes and field permissions.
//
// A capability's scope is meaningful only while the capability flag is true;
// evaluation treats a false flag as deny regardless of the stored scope.
// ScopeView and ScopeEdit are independent: edit rights do not imply read
// rights. Delete has no scope column of its own and reuses ScopeEdit, the
// mutation scope.
type RoleModuleGrant struct {
	bun.BaseModel `bun:"table:role_module_grants,alias:rmg"`

	RoleID string `bun:"role_id,pk,type:uuid"`
	Module string `bun:"module,pk"`

	CanView   bool `bun:"can_view,notnull,default:false"`
	CanCreate bool `bun:"can_create,notnull,default:false"`
	CanEdit   bool `bun:"can_edit,notnull,default:false"`
	CanDelete bool `bun:"can_delete,notnull,default:false"`

	// Stored as text, validated at evaluation time. Malformed values deny
	// with invalid_scope_config; they are never read as "all".
	ScopeView ScopeLevel `bun:"scope_view,notnull,default:'none'"`
	ScopeEdit ScopeLevel `bun:"scope_edit,notnull,default:'none'"`

	// FieldPermissions maps field name to access level. Absent fields fall
	// back to the grant default: editable when CanEdit, read_only otherwise,
	// unless the module registry overrides it.
	FieldPermissions map[string]FieldAccess `bun:"field_permissions,type:jsonb"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Capability returns the flag for an operation. Unknown operations are false.
func (g *RoleModuleGrant) Capability(op Operation) bool {
	switch op {
	case OpView:
		return g.CanView
	case OpCreate:
		return g.CanCreate
	case OpEdit:
		return g.CanEdit
	case OpDelete:
		return g.CanDelete
	}
	return false
}

// ScopeFor returns the stored scope governing an operation. View reads
// ScopeView; create, edit and delete read ScopeEdit. The value is returned as
// stored, unvalidated; evaluation validates it.
func (g *RoleModuleGrant) ScopeFor(op Operation) ScopeLevel {
	if op == OpView {
		return g.ScopeView
	}
	return g.ScopeEdit
}

// DefaultFieldAccess is the fallback for fields absent from the grant's map.
func (g *RoleModuleGrant) DefaultFieldAccess() FieldAccess {
	if g.CanEdit {
		return FieldEditable
	}
	return FieldReadOnly
}

// GrantAuditLog records grant and role-assignment mutations for compliance
// and debugging.
type GrantAuditLog struct {
	bun.BaseModel `bun:"table:grant_audit_log,alias:gal"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	// Who performed the action
	ActorID string `bun:"actor_id,notnull"`

	// What action was performed
	Action string `bun:"action,notnull"` // see AuditAction constants

	// Target of the action
	RoleID       string `bun:"role_id,notnull"`
	Module       string `bun:"module"`
	TargetUserID string `bun:"target_user_id"` // set for role assignments

	// Grant state around the change (JSON snapshots)
	PreviousGrant map[string]any `bun:"previous_grant,type:jsonb"`
	NewGrant      map[string]any `bun:"new_grant,type:jsonb"`

	// Request metadata for forensics
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`
}

// AuditAction represents the type of action in the audit log.
type AuditAction string

const (
	AuditActionGrantUpserted AuditAction = "grant_upserted"
	AuditActionGrantRemoved  AuditAction = "grant_removed"
	AuditActionRoleAssigned  AuditAction = "role_assigned"
	AuditActionRoleRevoked   AuditAction = "role_revoked"
)

// AuditEntry is used to create new audit log entries.
type AuditEntry struct {
	ActorID       string
	Action        AuditAction
	RoleID        string
	Module        string
	TargetUserID  string
	PreviousGrant *RoleModuleGrant
	NewGrant      *RoleModuleGrant
	IPAddress     string
	UserAgent     string
	RequestID     string
}

// ToModel converts an AuditEntry to a GrantAuditLog model.
func (e *AuditEntry) ToModel() *GrantAuditLog {
	return &GrantAuditLog{
		ActorID:       e.ActorID,
		Action:        string(e.Action),
		RoleID:        e.RoleID,
		Module:        e.Module,
		TargetUserID:  e.TargetUserID,
		PreviousGrant: grantSnapshot(e.PreviousGrant),
		NewGrant:      grantSnapshot(e.NewGrant),
		IPAddress:     e.IPAddress,
		UserAgent:     e.UserAgent,
		RequestID:     e.RequestID,
		Timestamp:     time.Now(),
	}
}

// grantSnapshot flattens a grant into a JSON-friendly map for audit rows.
func grantSnapshot(g *RoleModuleGrant) map[string]any {
	if g == nil {
		return nil
	}
	snap := map[string]any{
		"can_view":   g.CanView,
		"can_create": g.CanCreate,
		"can_edit":   g.CanEdit,
		"can_delete": g.CanDelete,
		"scope_view": string(g.ScopeView),
		"scope_edit": string(g.ScopeEdit),
	}
	if len(g.FieldPermissions) > 0 {
		fields := make(map[string]any, len(g.FieldPermissions))
		for k, v := range g.FieldPermissions {
			fields[k] = string(v)
		}
		snap["field_permissions"] = fields
	}
	return snap
}
