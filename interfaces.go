package grantkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Database defines the database operations interface for dependency injection
type Database interface {
	dbkit.IDB
}

// GrantSource supplies grant snapshots for evaluation. Service implements it
// over the relational store; tests implement it in memory so middleware and
// evaluation can run without a database.
type GrantSource interface {
	GetChecker(ctx context.Context, actor Actor) (*Checker, error)
	Registry() *Registry
}

// GrantAdministrator defines the grant/role mutation interface
type GrantAdministrator interface {
	UpsertGrant(ctx context.Context, grant RoleModuleGrant) error
	UpsertGrants(ctx context.Context, grants []RoleModuleGrant) error
	RemoveGrant(ctx context.Context, roleID, module string) error
	AssignRole(ctx context.Context, userID, roleID string) error
	RevokeRole(ctx context.Context, userID, roleID string) error
}

// TransactionManager defines the transaction management interface
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(ctx context.Context) error) error
	ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MigrationManager defines the migration management interface
type MigrationManager interface {
	Migrations() []dbkit.Migration
}

// HealthMonitor defines the health monitoring interface
type HealthMonitor interface {
	Health(ctx context.Context) dbkit.HealthStatus
	IsHealthy(ctx context.Context) bool
	Ping(ctx context.Context) error
	GetPoolStats() dbkit.PoolStats
}

// AuditLogger defines the audit logging interface
type AuditLogger interface {
	GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]GrantAuditLog, error)
}
