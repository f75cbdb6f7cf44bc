package grantkit

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Middleware provides HTTP guards wrapping the evaluator, redactor and scope
// filter for use in request pipelines. It consumes the acting user and target
// module from the upstream authentication/routing layer and either lets the
// request proceed with the decision attached to context, or short-circuits
// with a structured denial.
type Middleware struct {
	source       GrantSource
	getActor     func(*http.Request) (Actor, bool)
	errorHandler func(http.ResponseWriter, *http.Request, error)
	logger       *zap.Logger
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := grantkit.NewMiddleware(service,
//	    grantkit.WithActorExtractor(func(r *http.Request) (grantkit.Actor, bool) {
//	        return sessionActor(r)
//	    }),
//	)
func NewMiddleware(source GrantSource, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		source:       source,
		getActor:     defaultGetActor,
		errorHandler: defaultErrorHandler,
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithActorExtractor sets a custom function to extract the acting user from a
// request. The default reads the Actor placed in context by the auth layer.
func WithActorExtractor(fn func(*http.Request) (Actor, bool)) MiddlewareOption {
	return func(m *Middleware) {
		m.getActor = fn
	}
}

// WithMiddlewareErrorHandler sets a custom error handler for middleware.
func WithMiddlewareErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

// WithMiddlewareLogger sets the structured logger for operator signals.
func WithMiddlewareLogger(logger *zap.Logger) MiddlewareOption {
	return func(m *Middleware) {
		m.logger = logger
	}
}

func defaultGetActor(r *http.Request) (Actor, bool) {
	return GetActor(r.Context())
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoUserID):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case IsDenied(err):
		// invalid_scope_config included: the caller sees an ordinary denial,
		// the configuration detail stays in the operator log.
		http.Error(w, "Forbidden", http.StatusForbidden)
	case IsUnknownModule(err):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// ModuleExtractor extracts the target module from an HTTP request.
type ModuleExtractor func(*http.Request) (string, error)

// StaticModule creates a ModuleExtractor that always returns the same module.
//
// Example:
//
//	mw.CanView(grantkit.StaticModule("properties"))
func StaticModule(module string) ModuleExtractor {
	return func(r *http.Request) (string, error) {
		return module, nil
	}
}

// ModuleFromParam creates a ModuleExtractor that reads the module from URL
// path parameters, via the standard library's pattern wildcards. Routers that
// populate http.Request path values (chi, gorilla/mux) work the same way.
//
// Example:
//
//	// For route /api/{module}/records
//	mw.RequireModulePermission(grantkit.ModuleFromParam("module"), grantkit.OpView)
func ModuleFromParam(paramName string) ModuleExtractor {
	return func(r *http.Request) (string, error) {
		module := r.PathValue(paramName)
		if module == "" {
			return "", NewError(ErrUnknownModule, "module not found in request")
		}
		return module, nil
	}
}

// ModuleFromQuery creates a ModuleExtractor that reads the module from a
// query parameter.
func ModuleFromQuery(queryParam string) ModuleExtractor {
	return func(r *http.Request) (string, error) {
		module := r.URL.Query().Get(queryParam)
		if module == "" {
			return "", NewError(ErrUnknownModule, "module not found in query")
		}
		return module, nil
	}
}

// ModuleFromHeader creates a ModuleExtractor that reads the module from a
// header.
func ModuleFromHeader(headerName string) ModuleExtractor {
	return func(r *http.Request) (string, error) {
		module := r.Header.Get(headerName)
		if module == "" {
			return "", NewError(ErrUnknownModule, "module not found in header")
		}
		return module, nil
	}
}

// RecordResolver loads the ownership attributes of the record a request
// targets, so the guard can apply the scope predicate before the handler
// runs. Return nil for operations without a concrete instance.
type RecordResolver func(*http.Request) (*RecordRef, error)

// RequireModulePermission creates middleware that requires an operation to be
// allowed for the target module. On allow the request proceeds with the
// Checker and Decision attached to context; on deny it short-circuits with
// 403. Storage failures surface as 500, never as a denial.
//
// Example:
//
//	router.Handle("/api/properties",
//	    mw.RequireModulePermission(grantkit.StaticModule("properties"), grantkit.OpView)(listHandler))
func (m *Middleware) RequireModulePermission(extractor ModuleExtractor, op Operation) func(http.Handler) http.Handler {
	return m.guard(extractor, op, nil)
}

// RequireRecordPermission is RequireModulePermission with an instance-level
// scope check: the resolver loads the target record's owner/team and the
// guard evaluates the scope predicate against them.
//
// Example:
//
//	mw.RequireRecordPermission(grantkit.StaticModule("properties"), grantkit.OpEdit, loadPropertyRef)
func (m *Middleware) RequireRecordPermission(extractor ModuleExtractor, op Operation, resolver RecordResolver) func(http.Handler) http.Handler {
	return m.guard(extractor, op, resolver)
}

// CanView guards list/read routes on the view capability.
func (m *Middleware) CanView(extractor ModuleExtractor) func(http.Handler) http.Handler {
	return m.guard(extractor, OpView, nil)
}

// CanCreate guards creation routes on the create capability.
func (m *Middleware) CanCreate(extractor ModuleExtractor) func(http.Handler) http.Handler {
	return m.guard(extractor, OpCreate, nil)
}

// CanEdit guards mutation routes on the edit capability.
func (m *Middleware) CanEdit(extractor ModuleExtractor) func(http.Handler) http.Handler {
	return m.guard(extractor, OpEdit, nil)
}

// CanDelete guards deletion routes on the delete capability.
func (m *Middleware) CanDelete(extractor ModuleExtractor) func(http.Handler) http.Handler {
	return m.guard(extractor, OpDelete, nil)
}

func (m *Middleware) guard(extractor ModuleExtractor, op Operation, resolver RecordResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, ok := m.getActor(r)
			if !ok || actor.UserID == "" {
				m.errorHandler(w, r, ErrNoUserID)
				return
			}

			module, err := extractor(r)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if err := m.source.Registry().ValidateModule(module); err != nil {
				m.errorHandler(w, r, err)
				return
			}

			var record *RecordRef
			if resolver != nil {
				record, err = resolver(r)
				if err != nil {
					m.errorHandler(w, r, err)
					return
				}
			}

			checker, err := m.source.GetChecker(ctx, actor)
			if err != nil {
				// Storage failure: request failure, not a denial.
				m.errorHandler(w, r, err)
				return
			}

			decision := checker.Evaluate(module, op, record)
			if !decision.Allowed {
				if decision.Reason == ReasonInvalidScopeConfig {
					m.logger.Error("denying request on scope configuration error",
						zap.String("module", module),
						zap.String("operation", string(op)),
						zap.String("user_id", actor.UserID),
					)
				}
				m.errorHandler(w, r, NewError(ReasonError(decision.Reason), "permission denied").
					WithModule(module).
					WithOperation(op).
					WithUser(actor.UserID))
				return
			}

			ctx = WithChecker(ctx, checker)
			ctx = WithDecision(ctx, decision)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoadChecker creates middleware that loads the user's Checker into context
// without enforcing anything. Use it when permission checks happen in the
// handler rather than the pipeline.
//
// Example:
//
//	router.Handle("/dashboard", mw.LoadChecker()(dashboardHandler))
//
//	func dashboardHandler(w http.ResponseWriter, r *http.Request) {
//	    checker := grantkit.FromContext(r.Context())
//	    if checker != nil && checker.CanView("sales") {
//	        // show the sales panel
//	    }
//	}
func (m *Middleware) LoadChecker() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, ok := m.getActor(r)
			if !ok || actor.UserID == "" {
				// No user, continue without checker
				next.ServeHTTP(w, r)
				return
			}

			checker, err := m.source.GetChecker(ctx, actor)
			if err != nil {
				// Continue without a checker; enforcement happens downstream
				next.ServeHTTP(w, r)
				return
			}

			ctx = WithChecker(ctx, checker)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InjectAuditContext creates middleware that extracts audit information from
// the request and adds it to the context for grant mutation operations.
//
// Example:
//
//	router.Use(mw.InjectAuditContext())
func (m *Middleware) InjectAuditContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := r.Header.Get("X-Forwarded-For")
			if ip == "" {
				ip = r.Header.Get("X-Real-IP")
			}
			if ip == "" {
				ip = r.RemoteAddr
			}
			ctx = WithIPAddress(ctx, ip)

			ctx = WithUserAgent(ctx, r.UserAgent())

			requestID := r.Header.Get("X-Request-ID")
			if requestID != "" {
				ctx = WithRequestID(ctx, requestID)
			}

			if actor, ok := m.getActor(r); ok && actor.UserID != "" {
				ctx = WithActor(ctx, actor)
				ctx = WithActorID(ctx, actor.UserID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
