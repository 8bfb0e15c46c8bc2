package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-enroll/internal/web/handlers"
	"github.com/kozaktomas/face-enroll/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	enrollHandler := handlers.NewEnrollHandler(s.config, s.sessionManager, s.detector)

	// Health check (no session required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1/enroll", func(r chi.Router) {
		// Starting the wizard is the only call allowed without a session.
		r.Post("/start", enrollHandler.Start)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(s.sessionManager))

			r.Get("/state", enrollHandler.State)
			r.Post("/capture", enrollHandler.Capture)
			r.Post("/retake", enrollHandler.Retake)
			r.Post("/accept", enrollHandler.Accept)
			r.Get("/archive", enrollHandler.Archive)
			r.Post("/reset", enrollHandler.Reset)
		})
	})

	s.router.Get("/", s.serveIndex)
}

// serveIndex serves a placeholder page pointing at the API. The capture
// front end is expected to live elsewhere and talk to /api/v1.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Face Enroll</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
        code { background: #2a2a3e; padding: 2px 8px; border-radius: 4px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Face Enroll</h1>
        <p>Guided face enrollment wizard. Point your capture front end at the API.</p>
        <p>Start with <code>POST /api/v1/enroll/start</code>; health at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
