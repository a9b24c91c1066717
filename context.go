package nasc

import "context"

type scopeContextKey struct{}

// ContextWithScope returns a copy of ctx that carries scope.
// Scoped services resolved through GetServiceContext on the container use it.
func ContextWithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext returns the scope carried by ctx, if any.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(scopeContextKey{}).(*Scope)
	return scope, ok && scope != nil
}

// ResolverFromContext returns the scope carried by ctx, or c when there is
// none or the scope belongs to another container.
func ResolverFromContext(ctx context.Context, c *Container) Resolver {
	if scope := c.scopeFrom(ctx); scope != nil {
		return scope
	}
	return c
}
