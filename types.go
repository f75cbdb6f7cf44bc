package grantkit

import "fmt"

// Operation is one of the four capabilities a grant can enable.
type Operation string

const (
	OpView   Operation = "view"
	OpCreate Operation = "create"
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
)

// Valid reports whether the operation is one of the four known capabilities.
func (op Operation) Valid() bool {
	switch op {
	case OpView, OpCreate, OpEdit, OpDelete:
		return true
	}
	return false
}

// ScopeLevel is the breadth of records a capability applies to.
//
// Levels order totally by permissiveness: ScopeAll > ScopeTeam > ScopeOwn >
// ScopeNone. Any other value stored in a grant is a configuration error and
// fails closed.
type ScopeLevel string

const (
	ScopeNone ScopeLevel = "none"
	ScopeOwn  ScopeLevel = "own"
	ScopeTeam ScopeLevel = "team"
	ScopeAll  ScopeLevel = "all"
)

// FieldAccess is the access level for a single record field.
//
// Levels order totally by permissiveness: FieldEditable > FieldReadOnly >
// FieldHidden. When several of a user's roles map the same field, the most
// permissive level wins, mirroring the capability/scope union.
type FieldAccess string

const (
	FieldHidden   FieldAccess = "hidden"
	FieldReadOnly FieldAccess = "read_only"
	FieldEditable FieldAccess = "editable"
)

// rank returns the permissiveness rank of a field access level.
// Unknown values rank below hidden so malformed data never widens access.
func (fa FieldAccess) rank() int {
	switch fa {
	case FieldEditable:
		return 3
	case FieldReadOnly:
		return 2
	case FieldHidden:
		return 1
	}
	return 0
}

// Valid reports whether the field access level is recognized.
func (fa FieldAccess) Valid() bool {
	return fa.rank() > 0
}

// MostPermissive returns the more permissive of two field access levels.
func (fa FieldAccess) MostPermissive(other FieldAccess) FieldAccess {
	if other.rank() > fa.rank() {
		return other
	}
	return fa
}

// FieldPolicy maps field names to their effective access level for one
// (user, module) combination.
type FieldPolicy map[string]FieldAccess

// Reason classifies the outcome of an evaluation.
type Reason string

const (
	// ReasonAllowed is set on allow decisions.
	ReasonAllowed Reason = "allowed"

	// ReasonNoGrant means none of the user's roles hold a grant for the module.
	ReasonNoGrant Reason = "no_grant"

	// ReasonCapabilityDenied means a grant exists but no role enables the
	// requested capability.
	ReasonCapabilityDenied Reason = "capability_denied"

	// ReasonScopeDenied means the capability is enabled but the record falls
	// outside the effective scope.
	ReasonScopeDenied Reason = "scope_denied"

	// ReasonInvalidScopeConfig means a contributing grant carries an
	// unrecognized scope value. Denied, and reported to operators separately
	// from ordinary authorization denials.
	ReasonInvalidScopeConfig Reason = "invalid_scope_config"
)

// Actor is the acting user's identity as supplied by the authentication layer.
type Actor struct {
	UserID   string
	TenantID string
	TeamID   string // empty when the user belongs to no team
	RoleIDs  []string
}

// RecordRef carries the ownership attributes of a candidate record. Scope
// predicates are evaluated against the record's current owner and team, never
// against cached values.
type RecordRef struct {
	OwnerID string
	TeamID  string // empty means the record has no team
}

// Decision is the structured result of a permission evaluation.
type Decision struct {
	Allowed bool
	Reason  Reason

	// EffectiveScope is the resolved scope for the operation. Set on allow
	// decisions and on scope_denied (the scope that rejected the record).
	EffectiveScope ScopeLevel

	// FieldPolicy is the effective field access map for the module. Set on
	// allow decisions so callers can redact responses and strip payloads.
	FieldPolicy FieldPolicy
}

// Deny builds a deny decision with the given reason.
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// String implements fmt.Stringer for log lines and test failure output.
func (d Decision) String() string {
	if d.Allowed {
		return fmt.Sprintf("allow(scope=%s)", d.EffectiveScope)
	}
	return fmt.Sprintf("deny(%s)", d.Reason)
}
