package grantkit

import (
	"context"
)

// Context keys for GrantKit values.
type contextKey string

const (
	contextKeyActor     contextKey = "grantkit:actor"
	contextKeyActorID   contextKey = "grantkit:actor_id"
	contextKeyIPAddress contextKey = "grantkit:ip_address"
	contextKeyUserAgent contextKey = "grantkit:user_agent"
	contextKeyRequestID contextKey = "grantkit:request_id"
	contextKeyChecker   contextKey = "grantkit:checker"
	contextKeyDecision  contextKey = "grantkit:decision"
)

// WithActor adds the acting user's identity to the context.
// This is the user being checked for permissions.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKeyActor, actor)
}

// GetActor retrieves the acting user from context.
// The second return is false if not set.
func GetActor(ctx context.Context) (Actor, bool) {
	if v := ctx.Value(contextKeyActor); v != nil {
		if a, ok := v.(Actor); ok {
			return a, true
		}
	}
	return Actor{}, false
}

// MustGetActor retrieves the acting user from context.
// Panics if not set.
func MustGetActor(ctx context.Context) Actor {
	actor, ok := GetActor(ctx)
	if !ok {
		panic("grantkit: actor not in context")
	}
	return actor
}

// WithActorID adds an actor ID to the context. This is the user performing a
// grant mutation (for audit purposes). Often the acting user, but can differ
// for administrative actions.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextKeyActorID, actorID)
}

// GetActorID retrieves the actor ID from context.
// Falls back to the acting user's ID if not explicitly set.
func GetActorID(ctx context.Context) string {
	if v := ctx.Value(contextKeyActorID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if actor, ok := GetActor(ctx); ok {
		return actor.UserID
	}
	return ""
}

// WithIPAddress adds the client IP address to the context (for audit).
func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyIPAddress, ip)
}

// GetIPAddress retrieves the IP address from context.
func GetIPAddress(ctx context.Context) string {
	if v := ctx.Value(contextKeyIPAddress); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithUserAgent adds the user agent to the context (for audit).
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent, ua)
}

// GetUserAgent retrieves the user agent from context.
func GetUserAgent(ctx context.Context) string {
	if v := ctx.Value(contextKeyUserAgent); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context (for audit and correlation).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithChecker adds a Checker to the context.
// This is set by middleware and retrieved in handlers.
func WithChecker(ctx context.Context, checker *Checker) context.Context {
	return context.WithValue(ctx, contextKeyChecker, checker)
}

// GetChecker retrieves the Checker from context.
// Returns nil if not set.
func GetChecker(ctx context.Context) *Checker {
	if v := ctx.Value(contextKeyChecker); v != nil {
		if c, ok := v.(*Checker); ok {
			return c
		}
	}
	return nil
}

// FromContext retrieves the Checker from context.
// Alias for GetChecker for convenience.
func FromContext(ctx context.Context) *Checker {
	return GetChecker(ctx)
}

// WithDecision adds the middleware's decision to the context.
func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, contextKeyDecision, d)
}

// DecisionFromContext retrieves the decision attached by middleware.
// The second return is false if no guard ran on this request.
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	if v := ctx.Value(contextKeyDecision); v != nil {
		if d, ok := v.(Decision); ok {
			return d, true
		}
	}
	return Decision{}, false
}

// AuditContext holds all audit-related information from context.
type AuditContext struct {
	ActorID   string
	IPAddress string
	UserAgent string
	RequestID string
}

// GetAuditContext extracts all audit information from context.
func GetAuditContext(ctx context.Context) AuditContext {
	return AuditContext{
		ActorID:   GetActorID(ctx),
		IPAddress: GetIPAddress(ctx),
		UserAgent: GetUserAgent(ctx),
		RequestID: GetRequestID(ctx),
	}
}

// WithAuditContext adds all audit information to context at once.
func WithAuditContext(ctx context.Context, ac AuditContext) context.Context {
	if ac.ActorID != "" {
		ctx = WithActorID(ctx, ac.ActorID)
	}
	if ac.IPAddress != "" {
		ctx = WithIPAddress(ctx, ac.IPAddress)
	}
	if ac.UserAgent != "" {
		ctx = WithUserAgent(ctx, ac.UserAgent)
	}
	if ac.RequestID != "" {
		ctx = WithRequestID(ctx, ac.RequestID)
	}
	return ctx
}
