package grantkit

// Scope resolution: each ScopeLevel translates to a predicate over a candidate
// record given the acting user. The set of levels is closed; anything else in
// stored grant data is a configuration error and must fail closed, never be
// widened to ScopeAll.

// scopeRank returns the permissiveness rank of a scope level, or 0 for
// unrecognized values so they always lose a most-permissive union.
func scopeRank(s ScopeLevel) int {
	switch s {
	case ScopeAll:
		return 4
	case ScopeTeam:
		return 3
	case ScopeOwn:
		return 2
	case ScopeNone:
		return 1
	}
	return 0
}

// Valid reports whether the scope level is one of none/own/team/all.
func (s ScopeLevel) Valid() bool {
	return scopeRank(s) > 0
}

// MostPermissive returns the more permissive of two scope levels.
// Both arguments must be valid; callers validate before unioning.
func (s ScopeLevel) MostPermissive(other ScopeLevel) ScopeLevel {
	if scopeRank(other) > scopeRank(s) {
		return other
	}
	return s
}

// Allows evaluates the scope predicate for one record.
//
//   - ScopeNone never matches.
//   - ScopeOwn matches when the record's owner is the actor.
//   - ScopeTeam matches when the record has a team and it equals the actor's
//     team. A record without a team, or an actor without a team, never
//     matches: team scope fails closed.
//   - ScopeAll always matches.
//
// Unrecognized levels return false; callers surface those as
// invalid_scope_config before reaching this predicate.
func (s ScopeLevel) Allows(actor Actor, record RecordRef) bool {
	switch s {
	case ScopeNone:
		return false
	case ScopeOwn:
		return record.OwnerID != "" && record.OwnerID == actor.UserID
	case ScopeTeam:
		return record.TeamID != "" && record.TeamID == actor.TeamID
	case ScopeAll:
		return true
	}
	return false
}

// ParseScopeLevel validates a stored scope string. Unknown values return
// ErrInvalidScopeConfig with the offending value attached.
func ParseScopeLevel(raw string) (ScopeLevel, error) {
	s := ScopeLevel(raw)
	if !s.Valid() {
		return "", NewError(ErrInvalidScopeConfig, "unrecognized scope level "+raw)
	}
	return s, nil
}
