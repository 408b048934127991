package auth

import "context"

type identityContextKey struct{}
type tokenContextKey struct{}

// ContextWithIdentity attaches the authenticated account to the context.
func ContextWithIdentity(ctx context.Context, user PublicUser) context.Context {
	return context.WithValue(ctx, identityContextKey{}, &user)
}

// IdentityFromContext extracts the authenticated account from the context.
func IdentityFromContext(ctx context.Context) (PublicUser, bool) {
	if ctx == nil {
		return PublicUser{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*PublicUser)
	if !ok || v == nil {
		return PublicUser{}, false
	}
	return *v, true
}

// ContextWithToken stores the raw bearer token inside the context.
func ContextWithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the bearer token if it was previously attached.
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(tokenContextKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
