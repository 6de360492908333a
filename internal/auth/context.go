// Package auth resolves the caller of a request into a domain.Scope.
package auth

import (
	"context"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

type scopeKey struct{}

// WithScope returns a copy of ctx carrying scope.
func WithScope(ctx context.Context, scope domain.Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom returns the scope stored by the auth middlewares, anonymous when absent.
func ScopeFrom(ctx context.Context) domain.Scope {
	scope, _ := ctx.Value(scopeKey{}).(domain.Scope)
	return scope
}
