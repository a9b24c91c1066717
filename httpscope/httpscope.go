// Package httpscope opens one container scope per HTTP request.
//
// The scope is bound to the request context, so handlers resolve scoped
// services with nasc.ResolverFromContext or Container.GetServiceContext, and
// it is disposed once the handler chain returns.
package httpscope

import (
	"net/http"

	"github.com/gin-gonic/gin"

	nasc "github.com/toutaio/toutago-nasc-container"
)

// ScopeKey is the gin context key under which Gin stores the request scope.
const ScopeKey = "nasc_scope"

// Middleware returns net/http middleware that creates a scope for every
// request and disposes it after next has served the request.
// It works with any router that accepts func(http.Handler) http.Handler, such as chi.
func Middleware(c *nasc.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := c.CreateScope()
			defer scope.Dispose()

			next.ServeHTTP(w, r.WithContext(nasc.ContextWithScope(r.Context(), scope)))
		})
	}
}

// Gin returns gin middleware that creates a scope for every request and
// disposes it after the remaining handlers have run.
func Gin(c *nasc.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		scope := c.CreateScope()
		defer scope.Dispose()

		ctx.Request = ctx.Request.WithContext(nasc.ContextWithScope(ctx.Request.Context(), scope))
		ctx.Set(ScopeKey, scope)
		ctx.Next()
	}
}

// Scope returns the scope bound to r by Middleware or Gin, or nil.
func Scope(r *http.Request) *nasc.Scope {
	scope, _ := nasc.ScopeFromContext(r.Context())
	return scope
}

// GinScope returns the scope stored by Gin, or nil.
func GinScope(ctx *gin.Context) *nasc.Scope {
	v, ok := ctx.Get(ScopeKey)
	if !ok {
		return nil
	}
	scope, _ := v.(*nasc.Scope)
	return scope
}
