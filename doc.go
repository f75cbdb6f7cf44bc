// Package grantkit implements role/module/scope permission resolution for
// multi-tenant applications.
//
// GrantKit models permissions as a table of grants: one row per (role, module)
// pair carrying four independent capability flags (view, create, edit, delete),
// two scope levels constraining which records those capabilities reach, and a
// per-field access map used to redact responses and strip update payloads.
//
// # Core Concepts
//
// Module: a named functional area of the application ("properties", "leads",
// "sales"). The module catalog is fixed at startup via the Registry.
//
// Grant: a (role, module) row. A capability applies only to records inside the
// grant's scope level: none, own, team or all. A grant with can_edit=true and
// scope_edit=all but can_view=false is honored literally; edit rights never
// imply read rights.
//
// Effective permission: the union across all of a user's roles for a module.
// A capability is allowed if any role grants it; the effective scope is the
// most permissive scope among the grants that themselves enable the
// capability; field access is the most permissive level among the grants
// that confer at least read access.
//
// Scope levels order totally: all > team > own > none. An unrecognized scope
// value in stored data is a configuration error: evaluation fails closed and
// the condition is reported distinctly so operators can repair the data. It is
// never treated as "all".
//
// # Basic Usage
//
//	// 1. Declare the module catalog (at application startup)
//	registry := grantkit.NewRegistry()
//
//	registry.DefineModule("properties").
//	    OwnerColumn("agent_id").
//	    TeamColumn("team_id").
//	    ProtectedFields("tenant_id", "agent_id")
//
//	registry.DefineModule("leads").
//	    ProtectedFields("tenant_id", "owner_id")
//
//	// 2. Create the service
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := grantkit.NewService(registry, db)
//
//	// 3. Run migrations
//	dbkit.Migrate(ctx, grantkit.NewMigrationService(service).Migrations())
//
//	// 4. Seed grants
//	service.UpsertGrant(ctx, grantkit.RoleModuleGrant{
//	    RoleID:    agentRoleID,
//	    Module:    "properties",
//	    CanView:   true,
//	    CanCreate: true,
//	    CanEdit:   true,
//	    ScopeView: grantkit.ScopeTeam,
//	    ScopeEdit: grantkit.ScopeOwn,
//	})
//
//	// 5. Evaluate
//	checker, _ := service.GetChecker(ctx, actor)
//	decision := checker.Evaluate("properties", grantkit.OpEdit,
//	    &grantkit.RecordRef{OwnerID: "u1"})
//	if decision.Allowed {
//	    payload = checker.StripReadOnly("properties", payload)
//	}
//
// # List Queries
//
// For collection reads the scope becomes a query constraint instead of a
// per-row check:
//
//	filter, err := checker.ScopeFilterFor("properties", grantkit.OpView)
//	switch filter.Mode {
//	case grantkit.FilterOwn:
//	    q = q.Where("? = ?", bun.Ident(filter.OwnerColumn), actor.UserID)
//	    ...
//	}
//
// or push it straight into a bun query with filter.Apply(q, actor).
//
// # Middleware Usage
//
//	mw := grantkit.NewMiddleware(service)
//
//	router.Handle("/api/properties",
//	    mw.CanView(grantkit.StaticModule("properties"))(listHandler))
//
//	router.Handle("/api/properties/create",
//	    mw.CanCreate(grantkit.StaticModule("properties"))(createHandler))
//
// Handlers read the attached decision via grantkit.DecisionFromContext and the
// checker via grantkit.FromContext.
//
// # Decisions
//
// Every evaluation returns a Decision:
//
//	{Allowed, Reason, EffectiveScope, FieldPolicy}
//
// Deny reasons form a closed set: no_grant (user's roles hold no grant for the
// module), capability_denied (grant exists, flag is false), scope_denied
// (record outside the resolved scope), invalid_scope_config (malformed stored
// scope). Storage failures are returned as errors, never as deny decisions; a
// database outage is not "user has no permission".
//
// # Audit Log
//
// Grant and role-assignment mutations are recorded with actor, action,
// previous and new grant state, and request metadata (IP, user agent, request
// ID) gathered from context.
package grantkit
