package grantkit

import (
	"go.uber.org/zap"
)

// Checker evaluates permissions for one acting user against a grant snapshot.
// It is typically created by the Service and stored in context for use in
// handlers. All methods are pure computations over the snapshot; the only I/O
// in the whole evaluation path is the snapshot fetch.
type Checker struct {
	actor    Actor
	grants   *GrantSet
	registry *Registry
	logger   *zap.Logger
}

// NewChecker creates a Checker over an already-fetched grant snapshot.
func NewChecker(actor Actor, grants *GrantSet, registry *Registry, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		actor:    actor,
		grants:   grants,
		registry: registry,
		logger:   logger,
	}
}

// Actor returns the acting user this checker is for.
func (c *Checker) Actor() Actor {
	return c.actor
}

// Grants returns the underlying grant snapshot.
func (c *Checker) Grants() *GrantSet {
	return c.grants
}

// Evaluate yields the decision for (module, operation, optional record).
//
// Pass a record for instance-level view/edit/delete checks. Pass nil for
// create (no instance exists yet) and for list-style view, where the scope
// becomes a query filter via ScopeFilterFor instead of a record check.
//
//	decision := checker.Evaluate("properties", grantkit.OpEdit, &record)
//	if !decision.Allowed {
//	    // decision.Reason says why
//	}
func (c *Checker) Evaluate(module string, op Operation, record *RecordRef) Decision {
	if !c.grants.HasGrants(module) {
		return Deny(ReasonNoGrant)
	}

	if !c.grants.Capability(module, op) {
		return Deny(ReasonCapabilityDenied)
	}

	scope, err := c.grants.EffectiveScope(module, op)
	if err != nil {
		if IsInvalidScopeConfig(err) {
			// Configuration error, not an authorization outcome. Signal the
			// operators; the caller only sees a denial.
			c.logger.Error("grant carries unrecognized scope value",
				zap.String("module", module),
				zap.String("operation", string(op)),
				zap.String("user_id", c.actor.UserID),
				zap.Error(err),
			)
			return Deny(ReasonInvalidScopeConfig)
		}
		return Deny(ReasonCapabilityDenied)
	}

	if record != nil && !scope.Allows(c.actor, *record) {
		d := Deny(ReasonScopeDenied)
		d.EffectiveScope = scope
		return d
	}

	return Decision{
		Allowed:        true,
		Reason:         ReasonAllowed,
		EffectiveScope: scope,
		FieldPolicy:    c.grants.FieldPolicy(module),
	}
}

// CanView reports whether the user may view any records in the module.
func (c *Checker) CanView(module string) bool {
	return c.Evaluate(module, OpView, nil).Allowed
}

// CanCreate reports whether the user may create records in the module.
func (c *Checker) CanCreate(module string) bool {
	return c.Evaluate(module, OpCreate, nil).Allowed
}

// CanEdit reports whether the user may edit any records in the module.
func (c *Checker) CanEdit(module string) bool {
	return c.Evaluate(module, OpEdit, nil).Allowed
}

// CanDelete reports whether the user may delete any records in the module.
func (c *Checker) CanDelete(module string) bool {
	return c.Evaluate(module, OpDelete, nil).Allowed
}

// CanAccessRecord reports whether the user may perform an operation on one
// concrete record, scope checked against the record's current owner and team.
//
//	if checker.CanAccessRecord("properties", grantkit.OpDelete, record) {
//	    // proceed with the delete
//	}
func (c *Checker) CanAccessRecord(module string, op Operation, record RecordRef) bool {
	return c.Evaluate(module, op, &record).Allowed
}

// ScopeFilterFor resolves the list-query filter for an operation: the scope
// predicate in a form the storage layer can push into a bulk query instead of
// post-filtering rows. Returns an error when the operation is denied; callers
// should then skip the query entirely.
func (c *Checker) ScopeFilterFor(module string, op Operation) (ScopeFilter, error) {
	d := c.Evaluate(module, op, nil)
	if !d.Allowed {
		return ScopeFilter{}, ReasonError(d.Reason)
	}

	ownerColumn := DefaultOwnerColumn
	teamColumn := DefaultTeamColumn
	if m := c.registry.GetModule(module); m != nil {
		ownerColumn = m.GetOwnerColumn()
		teamColumn = m.GetTeamColumn()
	}

	return ScopeFilter{
		Mode:        filterModeFor(d.EffectiveScope),
		OwnerColumn: ownerColumn,
		TeamColumn:  teamColumn,
	}, nil
}

// FieldPolicyFor returns the effective field access map for a module.
func (c *Checker) FieldPolicyFor(module string) FieldPolicy {
	return c.grants.FieldPolicy(module)
}

// RedactForView copies a record map with hidden fields removed. Protected
// system fields survive regardless of configured permissions.
func (c *Checker) RedactForView(module string, record map[string]any) map[string]any {
	return redact(record, c.grants.FieldPolicy(module), c.fallbackAccess(module), c.registry.GetModule(module), redactHidden)
}

// StripReadOnly copies a create/edit payload with read-only and hidden fields
// removed, so they never reach storage. Protected system fields survive.
func (c *Checker) StripReadOnly(module string, payload map[string]any) map[string]any {
	return redact(payload, c.grants.FieldPolicy(module), c.fallbackAccess(module), c.registry.GetModule(module), redactNonEditable)
}

// fallbackAccess resolves the unmapped-field default: the module registry
// override when set, the grant-derived default otherwise.
func (c *Checker) fallbackAccess(module string) FieldAccess {
	if m := c.registry.GetModule(module); m != nil {
		if def := m.GetDefaultFieldAccess(); def != "" {
			return def
		}
	}
	return c.grants.DefaultFieldAccess(module)
}

// IsEmpty returns true if the user has no grants at all.
func (c *Checker) IsEmpty() bool {
	return c.grants.IsEmpty()
}
