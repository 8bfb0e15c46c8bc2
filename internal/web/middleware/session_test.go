package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateAndGetSession(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Minute)
	defer sm.Stop()

	session := sm.CreateSession()
	if session == nil {
		t.Fatal("expected a session")
	}
	if session.ID() == "" {
		t.Fatal("expected a non-empty session ID")
	}

	got := sm.GetSession(session.ID())
	if got != session {
		t.Error("GetSession should return the created session")
	}
}

func TestGetUnknownSession(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Minute)
	defer sm.Stop()

	if sm.GetSession("does-not-exist") != nil {
		t.Error("unknown session ID should return nil")
	}
}

func TestDeleteSession(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Minute)
	defer sm.Stop()

	session := sm.CreateSession()
	sm.DeleteSession(session.ID())

	if sm.GetSession(session.ID()) != nil {
		t.Error("deleted session should be gone")
	}
	if sm.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", sm.Count())
	}
}

func TestExpiredSession(t *testing.T) {
	sm := NewSessionManager("test-secret", -time.Second)
	defer sm.Stop()

	// ttl <= 0 falls back to the default, so build expiry by hand.
	session := sm.CreateSession()
	sm.mu.Lock()
	sm.sessions[session.ID()].expiresAt = time.Now().Add(-time.Minute)
	sm.mu.Unlock()

	if sm.GetSession(session.ID()) != nil {
		t.Error("expired session should return nil")
	}
}

func TestSessionCookieRoundTrip(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Minute)
	defer sm.Stop()

	session := sm.CreateSession()

	recorder := httptest.NewRecorder()
	sm.SetSessionCookie(recorder, session)

	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	got := sm.GetSessionFromRequest(req)
	if got != session {
		t.Error("signed cookie should resolve back to the session")
	}
}

func TestTamperedCookieRejected(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Minute)
	defer sm.Stop()

	session := sm.CreateSession()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  "face_enroll_session",
		Value: session.ID() + ".bogus-signature",
	})

	if sm.GetSessionFromRequest(req) != nil {
		t.Error("tampered cookie signature must be rejected")
	}
}

func TestMissingCookie(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Minute)
	defer sm.Stop()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if sm.GetSessionFromRequest(req) != nil {
		t.Error("request without a cookie should have no session")
	}
}

func TestRequireSessionMiddleware(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Minute)
	defer sm.Stop()

	handler := RequireSession(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetWizardFromContext(r.Context()) == nil {
			t.Error("expected wizard session in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	// Without a session.
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", recorder.Code)
	}

	// With a valid session cookie.
	session := sm.CreateSession()
	cookieRecorder := httptest.NewRecorder()
	sm.SetSessionCookie(cookieRecorder, session)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookieRecorder.Result().Cookies()[0])

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200 with session, got %d", recorder.Code)
	}
}
