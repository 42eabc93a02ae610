package middleware

import (
	"net/http"

	"github.com/spincity/backoffice/internal/session"
)

// SessionGate rejects entity-mutating requests until the session
// bootstrapper has completed its load sequence. The bootstrapper is a gate,
// not something other operations race against.
func SessionGate(b *session.Bootstrapper) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && b.State() == session.StateInitializing {
				http.Error(w, "session is still initializing", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
