package grantkit

import (
	"github.com/fernandezvara/dbkit"
)

// MigrationService provides migration management functionality as an extension to Service
type MigrationService struct {
	*Service
}

// NewMigrationService creates a new migration service extension
func NewMigrationService(service *Service) *MigrationService {
	return &MigrationService{Service: service}
}

// Migrations returns all database migrations required for GrantKit.
// Use dbkit.Migrate(ctx, service.Migrations()) to run migrations.
// Use dbkit.MigrationStatus(ctx, service.Migrations()) to check status.
func (ms *MigrationService) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "grantkit-001",
			Description: "Create roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS roles (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    tenant_id TEXT NOT NULL,
                    name TEXT NOT NULL,
                    display_name TEXT,
                    created_at TIMESTAMPTZ DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ DEFAULT current_timestamp,
                    UNIQUE (tenant_id, name)
                )`,
		},
		{
			ID:          "grantkit-002",
			Description: "Create user_roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS user_roles (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    user_id TEXT NOT NULL,
                    role_id UUID NOT NULL REFERENCES roles(id),
                    created_at TIMESTAMPTZ DEFAULT current_timestamp,
                    UNIQUE (user_id, role_id)
                )`,
		},
		{
			ID:          "grantkit-003",
			Description: "Create role_module_grants table",
			SQL: `
                CREATE TABLE IF NOT EXISTS role_module_grants (
                    role_id UUID NOT NULL REFERENCES roles(id),
                    module TEXT NOT NULL,
                    can_view BOOLEAN NOT NULL DEFAULT FALSE,
                    can_create BOOLEAN NOT NULL DEFAULT FALSE,
                    can_edit BOOLEAN NOT NULL DEFAULT FALSE,
                    can_delete BOOLEAN NOT NULL DEFAULT FALSE,
                    scope_view TEXT NOT NULL DEFAULT 'none',
                    scope_edit TEXT NOT NULL DEFAULT 'none',
                    field_permissions JSONB,
                    created_at TIMESTAMPTZ DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ DEFAULT current_timestamp,
                    PRIMARY KEY (role_id, module)
                )`,
		},
		{
			ID:          "grantkit-004",
			Description: "Create grant_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS grant_audit_log (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id TEXT NOT NULL,
                    action TEXT NOT NULL,
                    role_id TEXT NOT NULL,
                    module TEXT,
                    target_user_id TEXT,
                    previous_grant JSONB,
                    new_grant JSONB,
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT
                )`,
		},
		{
			ID:          "grantkit-005",
			Description: "Index user_roles and grants for evaluation fetches",
			SQL: `
                CREATE INDEX IF NOT EXISTS idx_user_roles_user ON user_roles (user_id);
                CREATE INDEX IF NOT EXISTS idx_grants_module ON role_module_grants (module)`,
		},
	}
}
