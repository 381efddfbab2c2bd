package app

import "context"

type ctxKey struct{}

// WithApp returns ctx carrying a.
func WithApp(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the App in ctx. Calling it outside a scope set up by
// WithApp is a programming error and panics.
func FromContext(ctx context.Context) *App {
	a, ok := ctx.Value(ctxKey{}).(*App)
	if !ok || a == nil {
		panic("app: no App in context")
	}
	return a
}
