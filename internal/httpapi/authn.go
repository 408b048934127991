package httpapi

import (
	"net/http"
	"strings"

	"opsportal.org/internal/auth"
)

// withAuth guards session-bound routes with bearer token validation. In
// direct mode there are no tokens to check, so every route stays open.
func (a *API) withAuth(next http.Handler) http.Handler {
	if a.svc.Mode() != auth.LoginModeToken {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requiresSession(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := extractBearerToken(r)
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "missing bearer token")
			return
		}
		identity, err := a.svc.Identify(r.Context(), token)
		if err != nil {
			a.handleAuthError(w, r, err)
			return
		}
		ctx := auth.ContextWithIdentity(r.Context(), identity)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requiresSession(path string) bool {
	return path == "/auth/me"
}

func extractBearerToken(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", false
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
