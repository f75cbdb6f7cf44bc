package grantkit

import "github.com/uptrace/bun"

// FilterMode is the query-side rendering of a scope level for list reads.
type FilterMode string

const (
	// ExcludeAll matches no rows. Callers should skip the query.
	ExcludeAll FilterMode = "exclude_all"

	// FilterOwn restricts rows to those owned by the acting user.
	FilterOwn FilterMode = "filter_own"

	// FilterTeam restricts rows to those of the acting user's team.
	// A user without a team matches no rows.
	FilterTeam FilterMode = "filter_team"

	// IncludeAll applies no restriction.
	IncludeAll FilterMode = "include_all"
)

// filterModeFor maps a validated scope level to its filter mode.
func filterModeFor(scope ScopeLevel) FilterMode {
	switch scope {
	case ScopeOwn:
		return FilterOwn
	case ScopeTeam:
		return FilterTeam
	case ScopeAll:
		return IncludeAll
	}
	return ExcludeAll
}

// ScopeFilter is a reusable scope restriction for collection queries: the
// mode plus the record columns it binds to. The storage layer translates it
// into a concrete query constraint; Apply does so for bun queries.
type ScopeFilter struct {
	Mode        FilterMode
	OwnerColumn string
	TeamColumn  string
}

// Empty reports whether the filter excludes everything.
func (f ScopeFilter) Empty() bool {
	return f.Mode == ExcludeAll
}

// Apply pushes the restriction into a bun SELECT for the given actor.
//
//	q := db.NewSelect().Model(&properties)
//	q = filter.Apply(q, actor)
//
// ExcludeAll renders as a contradiction so the query returns no rows even if
// the caller forgets to check Empty first. FilterTeam for an actor without a
// team renders the same way: team scope fails closed.
func (f ScopeFilter) Apply(q *bun.SelectQuery, actor Actor) *bun.SelectQuery {
	switch f.Mode {
	case IncludeAll:
		return q
	case FilterOwn:
		return q.Where("? = ?", bun.Ident(f.OwnerColumn), actor.UserID)
	case FilterTeam:
		if actor.TeamID == "" {
			return q.Where("FALSE")
		}
		return q.Where("? = ?", bun.Ident(f.TeamColumn), actor.TeamID)
	}
	return q.Where("FALSE")
}
