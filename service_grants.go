package grantkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// GRANT ADMINISTRATION
// ============================================================================

// UpsertGrant creates or replaces the (role, module) grant row. Scope values
// are validated before they reach storage so malformed configuration is
// rejected at write time, not discovered at evaluation time.
//
// Example:
//
//	err := service.UpsertGrant(ctx, grantkit.RoleModuleGrant{
//	    RoleID:    agentRoleID,
//	    Module:    "properties",
//	    CanView:   true,
//	    ScopeView: grantkit.ScopeTeam,
//	})
func (s *Service) UpsertGrant(ctx context.Context, grant RoleModuleGrant) error {
	if err := s.registry.ValidateModule(grant.Module); err != nil {
		return err
	}
	if !grant.ScopeView.Valid() {
		return NewError(ErrInvalidScopeConfig, "scope_view must be one of none/own/team/all").
			WithRole(grant.RoleID).
			WithModule(grant.Module)
	}
	if !grant.ScopeEdit.Valid() {
		return NewError(ErrInvalidScopeConfig, "scope_edit must be one of none/own/team/all").
			WithRole(grant.RoleID).
			WithModule(grant.Module)
	}
	for field, access := range grant.FieldPermissions {
		if !access.Valid() {
			return NewError(ErrInvalidScopeConfig, "field permission for "+field+" must be hidden/read_only/editable").
				WithRole(grant.RoleID).
				WithModule(grant.Module)
		}
	}

	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for grant changes")
	}

	// Previous state for the audit trail.
	previous, err := s.GetGrant(ctx, grant.RoleID, grant.Module)
	if err != nil {
		return err
	}

	result, err := s.handle(ctx).NewInsert().
		Model(&grant).
		On("CONFLICT (role_id, module) DO UPDATE").
		Set("can_view = EXCLUDED.can_view").
		Set("can_create = EXCLUDED.can_create").
		Set("can_edit = EXCLUDED.can_edit").
		Set("can_delete = EXCLUDED.can_delete").
		Set("scope_view = EXCLUDED.scope_view").
		Set("scope_edit = EXCLUDED.scope_edit").
		Set("field_permissions = EXCLUDED.field_permissions").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "UpsertGrant").Err(); err != nil {
		return NewError(ErrStorage, "failed to upsert grant").
			WithRole(grant.RoleID).
			WithModule(grant.Module).
			WithActor(actorID)
	}

	audit := GetAuditContext(ctx)
	_ = s.logAudit(ctx, &AuditEntry{
		ActorID:       actorID,
		Action:        AuditActionGrantUpserted,
		RoleID:        grant.RoleID,
		Module:        grant.Module,
		PreviousGrant: previous,
		NewGrant:      &grant,
		IPAddress:     audit.IPAddress,
		UserAgent:     audit.UserAgent,
		RequestID:     audit.RequestID,
	}) // Logged on failure but the upsert stands

	return nil
}

// UpsertGrants replaces several grant rows inside one transaction. Either all
// of them land or none do.
func (s *Service) UpsertGrants(ctx context.Context, grants []RoleModuleGrant) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		for _, grant := range grants {
			if err := s.UpsertGrant(ctx, grant); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveGrant deletes the (role, module) grant row. Users holding the role
// lose the module's capabilities on their next evaluation.
func (s *Service) RemoveGrant(ctx context.Context, roleID, module string) error {
	if err := s.registry.ValidateModule(module); err != nil {
		return err
	}

	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for grant changes")
	}

	previous, err := s.GetGrant(ctx, roleID, module)
	if err != nil {
		return err
	}
	if previous == nil {
		return NewError(ErrNoGrant, "no grant to remove").
			WithRole(roleID).
			WithModule(module)
	}

	result, err := s.handle(ctx).NewDelete().Table("role_module_grants").
		Where("role_id = ? AND module = ?", roleID, module).
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "RemoveGrant").Err(); err != nil {
		return NewError(ErrStorage, "failed to remove grant").
			WithRole(roleID).
			WithModule(module).
			WithActor(actorID)
	}

	audit := GetAuditContext(ctx)
	_ = s.logAudit(ctx, &AuditEntry{
		ActorID:       actorID,
		Action:        AuditActionGrantRemoved,
		RoleID:        roleID,
		Module:        module,
		PreviousGrant: previous,
		IPAddress:     audit.IPAddress,
		UserAgent:     audit.UserAgent,
		RequestID:     audit.RequestID,
	})

	return nil
}

// ============================================================================
// ROLE ASSIGNMENT
// ============================================================================

// AssignRole adds a role to a user. Duplicate assignments are ignored at the
// storage level; assigning an already-held role is not an error.
//
// Example:
//
//	err := service.AssignRole(ctx, userID, agentRoleID)
func (s *Service) AssignRole(ctx context.Context, userID, roleID string) error {
	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for role assignment")
	}

	assignment := &UserRole{
		UserID: userID,
		RoleID: roleID,
	}

	result, err := s.handle(ctx).NewInsert().
		Model(assignment).
		On("CONFLICT (user_id, role_id) DO NOTHING").
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "AssignRole").Err(); err != nil {
		return NewError(ErrStorage, "failed to assign role").
			WithRole(roleID).
			WithUser(userID).
			WithActor(actorID)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Already assigned; nothing changed, nothing to audit.
		return nil
	}

	audit := GetAuditContext(ctx)
	_ = s.logAudit(ctx, &AuditEntry{
		ActorID:      actorID,
		Action:       AuditActionRoleAssigned,
		RoleID:       roleID,
		TargetUserID: userID,
		IPAddress:    audit.IPAddress,
		UserAgent:    audit.UserAgent,
		RequestID:    audit.RequestID,
	})

	return nil
}

// RevokeRole removes a role from a user.
func (s *Service) RevokeRole(ctx context.Context, userID, roleID string) error {
	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for role revocation")
	}

	result, err := s.handle(ctx).NewDelete().Table("user_roles").
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "RevokeRole").Err(); err != nil {
		return NewError(ErrStorage, "failed to revoke role").
			WithRole(roleID).
			WithUser(userID).
			WithActor(actorID)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewError(ErrRoleNotAssigned, "user does not hold this role").
			WithRole(roleID).
			WithUser(userID)
	}

	audit := GetAuditContext(ctx)
	_ = s.logAudit(ctx, &AuditEntry{
		ActorID:      actorID,
		Action:       AuditActionRoleRevoked,
		RoleID:       roleID,
		TargetUserID: userID,
		IPAddress:    audit.IPAddress,
		UserAgent:    audit.UserAgent,
		RequestID:    audit.RequestID,
	})

	return nil
}

// HasRole checks whether a user currently holds a role. More efficient than
// resolving a full checker when only membership matters.
func (s *Service) HasRole(ctx context.Context, userID, roleID string) (bool, error) {
	roleIDs, err := s.GetUserRoleIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, id := range roleIDs {
		if id == roleID {
			return true, nil
		}
	}
	return false, nil
}
