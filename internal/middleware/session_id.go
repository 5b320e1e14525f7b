package middleware

import (
	"context"
	"net/http"
	"strings"
)

const HeaderSessionID = "X-Session-Id"

// RequireSessionID enforces X-Session-Id on /api/session and everything below
// it, and stores the id in the request context.
func RequireSessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if r.Method != http.MethodOptions && (path == "/api/session" || strings.HasPrefix(path, "/api/session/")) {
			sid := strings.TrimSpace(r.Header.Get(HeaderSessionID))
			if sid == "" {
				writeError(w, r, http.StatusBadRequest, "missing required header: "+HeaderSessionID)
				return
			}
			ctx := context.WithValue(r.Context(), ctxSessionID, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		next.ServeHTTP(w, r)
	})
}
