package grantkit

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fernandezvara/dbkit"
	"github.com/uptrace/bun"
)

// ============================================================================
// DATA RETRIEVAL
// ============================================================================

// GrantsFor fetches all grants reachable through a set of roles for one
// module. This is the single I/O step of an evaluation; everything after it
// is pure computation over the snapshot.
func (s *Service) GrantsFor(ctx context.Context, roleIDs []string, module string) ([]RoleModuleGrant, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	var grants []RoleModuleGrant
	err := dbkit.WithErr1(s.handle(ctx).NewSelect().Model(&grants).
		Where("role_id IN (?)", bun.In(roleIDs)).
		Where("module = ?", module).
		Scan(ctx), "GrantsFor").Err()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, NewError(ErrStorage, "failed to fetch grants").WithModule(module)
	}
	return grants, nil
}

// AllGrantsFor fetches every grant reachable through a set of roles, across
// all modules. Used to build a whole-session snapshot.
func (s *Service) AllGrantsFor(ctx context.Context, roleIDs []string) ([]RoleModuleGrant, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	var grants []RoleModuleGrant
	err := dbkit.WithErr1(s.handle(ctx).NewSelect().Model(&grants).
		Where("role_id IN (?)", bun.In(roleIDs)).
		Scan(ctx), "AllGrantsFor").Err()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, NewError(ErrStorage, "failed to fetch grants")
	}
	return grants, nil
}

// GetUserRoleIDs fetches the role IDs assigned to a user.
func (s *Service) GetUserRoleIDs(ctx context.Context, userID string) ([]string, error) {
	var roleIDs []string
	err := dbkit.WithErr1(s.handle(ctx).NewRaw(
		"SELECT role_id FROM user_roles WHERE user_id = ?", userID).
		Scan(ctx, &roleIDs), "GetUserRoleIDs").Err()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, NewError(ErrStorage, "failed to fetch user roles").WithUser(userID)
	}
	return roleIDs, nil
}

// GetRoleGrants fetches all module grants for one role.
func (s *Service) GetRoleGrants(ctx context.Context, roleID string) ([]RoleModuleGrant, error) {
	var grants []RoleModuleGrant
	err := dbkit.WithErr1(s.handle(ctx).NewSelect().Model(&grants).
		Where("role_id = ?", roleID).
		Scan(ctx), "GetRoleGrants").Err()
	if err != nil {
		return nil, NewError(ErrStorage, "failed to fetch role grants").WithRole(roleID)
	}
	return grants, nil
}

// GetModuleGrants fetches all grants touching one module, across roles.
// Useful for administration screens and configuration audits.
func (s *Service) GetModuleGrants(ctx context.Context, module string) ([]RoleModuleGrant, error) {
	var grants []RoleModuleGrant
	err := dbkit.WithErr1(s.handle(ctx).NewSelect().Model(&grants).
		Where("module = ?", module).
		Scan(ctx), "GetModuleGrants").Err()
	if err != nil {
		return nil, NewError(ErrStorage, "failed to fetch module grants").WithModule(module)
	}
	return grants, nil
}

// GetGrant fetches one (role, module) grant row. Returns nil, nil when the
// grant does not exist.
func (s *Service) GetGrant(ctx context.Context, roleID, module string) (*RoleModuleGrant, error) {
	var grant RoleModuleGrant
	err := dbkit.WithErr1(s.handle(ctx).NewSelect().Model(&grant).
		Where("role_id = ? AND module = ?", roleID, module).
		Limit(1).
		Scan(ctx), "GetGrant").Err()
	if err != nil {
		if dbkit.IsNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, NewError(ErrStorage, "failed to fetch grant").WithRole(roleID).WithModule(module)
	}
	return &grant, nil
}

// GetChecker builds a Checker for an actor. When the actor carries no role
// IDs they are resolved from the user_roles join first.
func (s *Service) GetChecker(ctx context.Context, actor Actor) (*Checker, error) {
	roleIDs := actor.RoleIDs
	if len(roleIDs) == 0 {
		ids, err := s.GetUserRoleIDs(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		roleIDs = ids
		actor.RoleIDs = ids
	}

	grants, err := s.AllGrantsFor(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	return NewChecker(actor, NewGrantSet(actor.UserID, grants), s.registry, s.logger), nil
}

// GetCheckerFromContext builds a Checker using the actor from context.
func (s *Service) GetCheckerFromContext(ctx context.Context) (*Checker, error) {
	actor, ok := GetActor(ctx)
	if !ok || actor.UserID == "" {
		return nil, ErrNoUserID
	}
	return s.GetChecker(ctx, actor)
}

// Evaluate is the one-shot convenience: fetch the snapshot for the actor and
// evaluate a single (module, operation, record) triple. Storage failures come
// back as an error; every other outcome is encoded in the Decision.
func (s *Service) Evaluate(ctx context.Context, actor Actor, module string, op Operation, record *RecordRef) (Decision, error) {
	checker, err := s.GetChecker(ctx, actor)
	if err != nil {
		return Decision{}, err
	}
	return checker.Evaluate(module, op, record), nil
}

// GetScopeFilter resolves the list-query filter for (actor, module, view).
// Mirrors Checker.ScopeFilterFor with the snapshot fetch folded in.
func (s *Service) GetScopeFilter(ctx context.Context, actor Actor, module string) (ScopeFilter, error) {
	checker, err := s.GetChecker(ctx, actor)
	if err != nil {
		return ScopeFilter{}, err
	}
	return checker.ScopeFilterFor(module, OpView)
}
