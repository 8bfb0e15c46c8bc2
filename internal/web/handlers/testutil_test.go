package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kozaktomas/face-enroll/internal/config"
	"github.com/kozaktomas/face-enroll/internal/web/middleware"
	"github.com/kozaktomas/face-enroll/internal/wizard"
)

// stubDetector returns a fixed set of face rectangles or an error.
type stubDetector struct {
	rects []image.Rectangle
	err   error
}

func (d *stubDetector) Detect(img image.Image) ([]image.Rectangle, error) {
	return d.rects, d.err
}

func oneFaceDetector() *stubDetector {
	return &stubDetector{rects: []image.Rectangle{image.Rect(10, 10, 50, 50)}}
}

func twoFaceDetector() *stubDetector {
	return &stubDetector{rects: []image.Rectangle{image.Rect(0, 0, 30, 30), image.Rect(40, 0, 70, 30)}}
}

// testConfig creates a minimal config for testing.
func testConfig() *config.Config {
	return &config.Config{
		Enroll: config.EnrollConfig{
			MaxUploadBytes: config.DefaultMaxUploadBytes,
			MaxImageSize:   config.DefaultMaxImageSize,
			SessionTTL:     time.Minute,
		},
	}
}

// newSessionManager creates a session manager that is stopped on cleanup.
func newSessionManager(t *testing.T) *middleware.SessionManager {
	t.Helper()
	sm := middleware.NewSessionManager("test-secret", time.Minute)
	t.Cleanup(sm.Stop)
	return sm
}

// requestWithWizard creates a request with a wizard session in context.
func requestWithWizard(method, path string, body *bytes.Buffer, session *wizard.Session) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	ctx := middleware.SetWizardInContext(req.Context(), session)
	return req.WithContext(ctx)
}

// startedSession creates a session already past the intro page.
func startedSession(t *testing.T, sm *middleware.SessionManager) *wizard.Session {
	t.Helper()
	session := sm.CreateSession()
	if err := session.Start(wizard.Identity{Name: "Al", EmployeeID: "E1"}, true); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	return session
}

// createGradientImage builds a decodable test capture.
func createGradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			gray := uint8((x + y) * 255 / (width + height))
			img.Set(x, y, color.RGBA{gray, gray, gray, 255})
		}
	}
	return img
}

// multipartPhotoBody builds a multipart body with a "photo" part.
func multipartPhotoBody(t *testing.T, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", "capture.jpg")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("failed to write photo part: %v", err)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

// encodeJPEG encodes an image for upload in tests.
func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
