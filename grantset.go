package grantkit

// GrantSet is a per-request snapshot of the grants reachable through a user's
// roles, indexed by module. Evaluation is a pure function over this snapshot;
// no database access happens after construction, which keeps the evaluator
// unit-testable and makes concurrent grant edits eventually consistent (the
// next fetch sees them).
type GrantSet struct {
	UserID string
	Grants []RoleModuleGrant

	byModule map[string][]RoleModuleGrant
}

// NewGrantSet indexes a list of grants fetched for one user.
func NewGrantSet(userID string, grants []RoleModuleGrant) *GrantSet {
	gs := &GrantSet{
		UserID:   userID,
		Grants:   grants,
		byModule: make(map[string][]RoleModuleGrant),
	}

	for _, g := range grants {
		gs.byModule[g.Module] = append(gs.byModule[g.Module], g)
	}

	return gs
}

// ForModule returns all grants for a module, in no particular order.
func (gs *GrantSet) ForModule(module string) []RoleModuleGrant {
	return gs.byModule[module]
}

// HasGrants reports whether any of the user's roles hold a grant for a module.
func (gs *GrantSet) HasGrants(module string) bool {
	return len(gs.byModule[module]) > 0
}

// Capability reports whether any grant for the module enables the operation.
func (gs *GrantSet) Capability(module string, op Operation) bool {
	for _, g := range gs.byModule[module] {
		if g.Capability(op) {
			return true
		}
	}
	return false
}

// EffectiveScope computes the most permissive scope among the grants that
// themselves enable the operation. A grant contributes its scope only when it
// enables the capability; a grant lacking the capability contributes nothing
// even if its scope column is set.
//
// Returns ErrInvalidScopeConfig when any contributing grant carries an
// unrecognized scope value: the union fails closed rather than guessing.
func (gs *GrantSet) EffectiveScope(module string, op Operation) (ScopeLevel, error) {
	scope := ScopeLevel("")
	found := false

	for _, g := range gs.byModule[module] {
		if !g.Capability(op) {
			continue
		}
		s := g.ScopeFor(op)
		if !s.Valid() {
			return "", NewError(ErrInvalidScopeConfig, "unrecognized scope level "+string(s)).
				WithModule(module).
				WithOperation(op).
				WithRole(g.RoleID)
		}
		if !found {
			scope = s
			found = true
			continue
		}
		scope = scope.MostPermissive(s)
	}

	if !found {
		return "", NewError(ErrCapabilityDenied, "no grant enables the capability").
			WithModule(module).
			WithOperation(op)
	}
	return scope, nil
}

// FieldPolicy computes the effective field access map for a module: for each
// field named by a grant, the most permissive level among the grants that
// confer at least read access. A grant with can_view false contributes
// nothing: a role that cannot see the module must not widen what another
// role's viewer sees.
// Fields absent from every map take the most permissive grant default
// (editable when some grant has can_edit, read_only otherwise) and are not
// materialized here; the redactor applies the default lazily.
func (gs *GrantSet) FieldPolicy(module string) FieldPolicy {
	grants := gs.byModule[module]
	if len(grants) == 0 {
		return nil
	}

	policy := make(FieldPolicy)
	for _, g := range grants {
		if !g.CanView {
			continue
		}
		for field, access := range g.FieldPermissions {
			if !access.Valid() {
				// Malformed field level: treat as hidden, never widen.
				access = FieldHidden
			}
			if current, ok := policy[field]; ok {
				policy[field] = current.MostPermissive(access)
			} else {
				policy[field] = access
			}
		}
	}
	return policy
}

// DefaultFieldAccess returns the fallback level for fields unmapped by every
// grant: the most permissive of the per-grant defaults.
func (gs *GrantSet) DefaultFieldAccess(module string) FieldAccess {
	def := FieldReadOnly
	for _, g := range gs.byModule[module] {
		def = def.MostPermissive(g.DefaultFieldAccess())
	}
	return def
}

// Modules returns all modules the snapshot holds grants for.
func (gs *GrantSet) Modules() []string {
	modules := make([]string, 0, len(gs.byModule))
	for m := range gs.byModule {
		modules = append(modules, m)
	}
	return modules
}

// IsEmpty returns true if the snapshot holds no grants at all.
func (gs *GrantSet) IsEmpty() bool {
	return len(gs.Grants) == 0
}
