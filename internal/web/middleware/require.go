package middleware

import (
	"context"
	"net/http"

	"github.com/kozaktomas/face-enroll/internal/wizard"
)

type contextKey string

const wizardContextKey contextKey = "wizard_session"

// RequireSession is middleware that requires a live wizard session and
// injects it into the request context.
func RequireSession(sm *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sm.GetSessionFromRequest(r)
			if session == nil {
				http.Error(w, `{"error": "no active enrollment session"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), wizardContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetWizardFromContext retrieves the wizard session from the request context.
func GetWizardFromContext(ctx context.Context) *wizard.Session {
	session, ok := ctx.Value(wizardContextKey).(*wizard.Session)
	if !ok {
		return nil
	}
	return session
}

// SetWizardInContext adds a wizard session to the context.
// This is primarily for testing - use RequireSession middleware in production.
func SetWizardInContext(ctx context.Context, session *wizard.Session) context.Context {
	return context.WithValue(ctx, wizardContextKey, session)
}
