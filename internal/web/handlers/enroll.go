package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/kozaktomas/face-enroll/internal/archive"
	"github.com/kozaktomas/face-enroll/internal/config"
	"github.com/kozaktomas/face-enroll/internal/facecheck"
	"github.com/kozaktomas/face-enroll/internal/overlay"
	"github.com/kozaktomas/face-enroll/internal/web/middleware"
	"github.com/kozaktomas/face-enroll/internal/wizard"
)

const previewJPEGQuality = 85

// EnrollHandler drives the enrollment wizard over HTTP. All state lives in
// the wizard session; the handler only translates requests into state
// machine events and snapshots into responses.
type EnrollHandler struct {
	config         *config.Config
	sessionManager *middleware.SessionManager
	detector       facecheck.Detector
}

// NewEnrollHandler creates a new enrollment handler.
func NewEnrollHandler(cfg *config.Config, sm *middleware.SessionManager, det facecheck.Detector) *EnrollHandler {
	return &EnrollHandler{
		config:         cfg,
		sessionManager: sm,
		detector:       det,
	}
}

// startRequest represents the intro form submission.
type startRequest struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id"`
	Consent    bool   `json:"consent"`
}

// stateResponse is the wizard state snapshot returned by every endpoint.
type stateResponse struct {
	Page          string   `json:"page"`
	Step          int      `json:"step"`
	TotalPoses    int      `json:"total_poses"`
	PoseKey       string   `json:"pose_key,omitempty"`
	Instruction   string   `json:"instruction,omitempty"`
	HasCandidate  bool     `json:"has_candidate"`
	AcceptedPoses []string `json:"accepted_poses"`
}

func stateFromSnapshot(s wizard.State) stateResponse {
	return stateResponse{
		Page:          string(s.Page),
		Step:          s.Step,
		TotalPoses:    s.TotalPoses,
		PoseKey:       s.PoseKey,
		Instruction:   s.Instruction,
		HasCandidate:  s.HasCandidate,
		AcceptedPoses: s.AcceptedKeys,
	}
}

// Start creates a fresh wizard session from the intro form. Missing name,
// employee ID or consent blocks the transition with an inline error and
// leaves nothing behind.
func (h *EnrollHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	// A client that already has a live session must reset it explicitly;
	// silently discarding a half-finished capture run would lose work.
	if existing := h.sessionManager.GetSessionFromRequest(r); existing != nil {
		if existing.Snapshot().Page != wizard.PageIntro {
			respondError(w, http.StatusConflict, "an enrollment is already in progress, reset it first")
			return
		}
		if err := existing.Start(wizard.Identity{Name: req.Name, EmployeeID: req.EmployeeID}, req.Consent); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, stateFromSnapshot(existing.Snapshot()))
		return
	}

	session := h.sessionManager.CreateSession()
	if err := session.Start(wizard.Identity{Name: req.Name, EmployeeID: req.EmployeeID}, req.Consent); err != nil {
		h.sessionManager.DeleteSession(session.ID())
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.sessionManager.SetSessionCookie(w, session)
	respondJSON(w, http.StatusOK, stateFromSnapshot(session.Snapshot()))
}

// State returns the current wizard snapshot.
func (h *EnrollHandler) State(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetWizardFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusInternalServerError, "no session in context")
		return
	}
	respondJSON(w, http.StatusOK, stateFromSnapshot(session.Snapshot()))
}

// captureResponse carries the preview image alongside the new state.
type captureResponse struct {
	State   stateResponse `json:"state"`
	Preview string        `json:"preview"` // base64 JPEG with the guide overlay
}

// Capture accepts a multipart "photo" upload as the candidate for the
// current pose. The candidate must contain exactly one face; failures are
// inline and recoverable, the step never changes here.
func (h *EnrollHandler) Capture(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetWizardFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusInternalServerError, "no session in context")
		return
	}

	if err := r.ParseMultipartForm(h.config.Enroll.MaxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not decode the captured image, please retake")
		return
	}
	img = overlay.ScaleToFit(img, h.config.Enroll.MaxImageSize)

	if err := session.Submit(h.detector, img); err != nil {
		switch {
		case errors.Is(err, wizard.ErrWrongPage):
			respondError(w, http.StatusConflict, "capture is not available on this page")
		case errors.Is(err, wizard.ErrFaceCount):
			respondError(w, http.StatusBadRequest, "exactly one face must be visible, please retake")
		case errors.Is(err, facecheck.ErrUnreadableImage):
			respondError(w, http.StatusBadRequest, "could not analyze the captured image, please retake")
		default:
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("capture failed: %v", err))
		}
		return
	}

	preview, err := encodePreview(overlay.FaceOutline(img))
	if err != nil {
		// The candidate is already validated and stored; a preview encode
		// failure only costs the alignment hint.
		respondError(w, http.StatusInternalServerError, "failed to render preview")
		return
	}

	respondJSON(w, http.StatusOK, captureResponse{
		State:   stateFromSnapshot(session.Snapshot()),
		Preview: preview,
	})
}

// Retake discards the pending candidate and re-prompts the same pose.
func (h *EnrollHandler) Retake(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetWizardFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusInternalServerError, "no session in context")
		return
	}

	session.Retake()
	respondJSON(w, http.StatusOK, stateFromSnapshot(session.Snapshot()))
}

// Accept stores the validated candidate under the current pose key and
// advances the wizard; the last pose moves the session to the final page.
func (h *EnrollHandler) Accept(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetWizardFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusInternalServerError, "no session in context")
		return
	}

	if err := session.Accept(); err != nil {
		switch {
		case errors.Is(err, wizard.ErrNoCandidate):
			respondError(w, http.StatusBadRequest, "submit a capture before accepting")
		case errors.Is(err, wizard.ErrWrongPage):
			respondError(w, http.StatusConflict, "accept is not available on this page")
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, stateFromSnapshot(session.Snapshot()))
}

// Archive streams the enrollment ZIP once all poses are captured.
// Construction is atomic - an encode failure returns an error with no
// partial body.
func (h *EnrollHandler) Archive(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetWizardFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusInternalServerError, "no session in context")
		return
	}

	if session.Snapshot().Page != wizard.PageFinal {
		respondError(w, http.StatusConflict, "enrollment is not complete yet")
		return
	}

	identity := session.Identity()
	meta := archive.NewMetadata(identity.EmployeeID, identity.Name, session.AcceptedKeys(), time.Now(), archive.SourceWeb)

	accepted := session.Accepted()
	images := make([]archive.NamedImage, len(accepted))
	for i, c := range accepted {
		images[i] = archive.NamedImage{Key: c.Key, Image: c.Image}
	}

	data, err := archive.Build(images, meta)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build enrollment archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+archive.Filename(meta)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Reset clears the session back to a pristine intro page. Identity, step
// and all captured images are dropped.
func (h *EnrollHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetWizardFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusInternalServerError, "no session in context")
		return
	}

	session.Reset()
	respondJSON(w, http.StatusOK, stateFromSnapshot(session.Snapshot()))
}

// encodePreview renders the overlay preview as base64 JPEG.
func encodePreview(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: previewJPEGQuality}); err != nil {
		return "", fmt.Errorf("encoding preview: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeJSONBody decodes a JSON request body into target.
func decodeJSONBody(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
