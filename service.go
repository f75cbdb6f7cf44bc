package grantkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
	"go.uber.org/zap"
)

// Service provides grant administration and permission checking over a
// relational store. It integrates with the database through dbkit.
//
// Error Handling:
// Database operations use dbkit's chainable error wrapping; anything that
// fails while fetching or mutating grants comes back wrapping ErrStorage,
// never ErrNoGrant. An outage is a request failure, not a denial, and is
// never retried with stale data.
//
// Example error handling:
//
//	checker, err := service.GetChecker(ctx, actor)
//	if err != nil {
//	    if grantkit.IsStorage(err) {
//	        // 5xx: the grant store is unavailable
//	    }
//	    return err
//	}
type Service struct {
	db       dbkit.IDB
	registry *Registry
	logger   *zap.Logger
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithLogger sets the structured logger used for operator signals
// (configuration errors, audit write failures). Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new GrantKit service.
//
// Example:
//
//	registry := grantkit.NewRegistry()
//	// ... define modules ...
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := grantkit.NewService(registry, db, grantkit.WithLogger(logger))
func NewService(registry *Registry, db dbkit.IDB, opts ...ServiceOption) *Service {
	s := &Service{
		db:       db,
		registry: registry,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the module registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// ============================================================================
// AUDIT LOG
// ============================================================================

// GetAuditLog retrieves audit log entries with optional filters.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]GrantAuditLog, error) {
	var logs []GrantAuditLog
	q := s.handle(ctx).NewSelect().Model(&logs)
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.RoleID != "" {
		q = q.Where("role_id = ?", filter.RoleID)
	}
	if filter.Module != "" {
		q = q.Where("module = ?", filter.Module)
	}
	if filter.TargetUserID != "" {
		q = q.Where("target_user_id = ?", filter.TargetUserID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	if err := dbkit.WithErr1(q.Scan(ctx), "GetAuditLog").Err(); err != nil {
		return nil, NewError(ErrStorage, "failed to read audit log")
	}

	return logs, nil
}

func (s *Service) logAudit(ctx context.Context, entry *AuditEntry) error {
	_, err := s.handle(ctx).NewInsert().Model(entry.ToModel()).Exec(ctx)
	if err = dbkit.WithErr1(err, "LogAudit").Err(); err != nil {
		s.logger.Warn("audit log write failed",
			zap.String("action", string(entry.Action)),
			zap.String("role_id", entry.RoleID),
			zap.String("module", entry.Module),
			zap.Error(err),
		)
		return err
	}
	return nil
}
