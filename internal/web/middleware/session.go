package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-enroll/internal/wizard"
)

const (
	sessionCookieName      = "face_enroll_session"
	defaultSessionDuration = 30 * time.Minute
	cleanupInterval        = time.Minute
)

// managedSession wraps a wizard session with its idle expiry.
type managedSession struct {
	wizard    *wizard.Session
	expiresAt time.Time
}

// SessionManager creates, signs and expires wizard sessions. Each browser
// session maps to exactly one wizard walk-through; expiry is idle-based
// and refreshed on every access.
type SessionManager struct {
	secret   []byte
	duration time.Duration

	mu       sync.RWMutex
	sessions map[string]*managedSession

	stopOnce sync.Once
	stop     chan struct{}
}

// NewSessionManager creates a session manager. A zero ttl falls back to
// the default 30 minute idle expiry.
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	// Use a default secret if none provided (for development)
	if secret == "" {
		secret = "face-enroll-dev-secret-change-in-production"
	}
	if ttl <= 0 {
		ttl = defaultSessionDuration
	}

	sm := &SessionManager{
		secret:   []byte(secret),
		duration: ttl,
		sessions: make(map[string]*managedSession),
		stop:     make(chan struct{}),
	}
	go sm.cleanupLoop()
	return sm
}

// CreateSession creates a new wizard session sitting on the intro page.
func (sm *SessionManager) CreateSession() *wizard.Session {
	session := wizard.New(uuid.NewString())

	sm.mu.Lock()
	sm.sessions[session.ID()] = &managedSession{
		wizard:    session,
		expiresAt: time.Now().Add(sm.duration),
	}
	sm.mu.Unlock()

	return session
}

// GetSession retrieves a session by ID and refreshes its idle expiry.
// Expired or unknown sessions return nil.
func (sm *SessionManager) GetSession(sessionID string) *wizard.Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	managed, ok := sm.sessions[sessionID]
	if !ok {
		return nil
	}
	if time.Now().After(managed.expiresAt) {
		delete(sm.sessions, sessionID)
		return nil
	}

	managed.expiresAt = time.Now().Add(sm.duration)
	return managed.wizard
}

// DeleteSession removes a session.
func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// SetSessionCookie sets the signed session cookie on the response.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, session *wizard.Session) {
	signature := sm.signData(session.ID())
	cookieValue := session.ID() + "." + signature

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sm.duration.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetSessionFromRequest extracts the wizard session from the request's
// signed cookie. Returns nil when the cookie is missing, tampered with,
// or the session has expired.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) *wizard.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}

	parts := strings.SplitN(cookie.Value, ".", 2)
	if len(parts) != 2 {
		return nil
	}
	sessionID, signature := parts[0], parts[1]
	if !sm.verifySignature(sessionID, signature) {
		return nil
	}
	return sm.GetSession(sessionID)
}

// Stop terminates the background cleanup goroutine.
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() {
		close(sm.stop)
	})
}

// cleanupLoop periodically drops expired sessions so abandoned wizard
// runs do not pin their captured images in memory.
func (sm *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sm.stop:
			return
		case <-ticker.C:
			now := time.Now()
			sm.mu.Lock()
			for id, managed := range sm.sessions {
				if now.After(managed.expiresAt) {
					delete(sm.sessions, id)
				}
			}
			sm.mu.Unlock()
		}
	}
}

// signData creates an HMAC signature for data.
func (sm *SessionManager) signData(data string) string {
	h := hmac.New(sha256.New, sm.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies an HMAC signature.
func (sm *SessionManager) verifySignature(data, signature string) bool {
	expected := sm.signData(data)
	return hmac.Equal([]byte(signature), []byte(expected))
}
