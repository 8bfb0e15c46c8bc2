// Package wizard owns the enrollment session state machine: intro ->
// capture (one step per pose) -> final. All transitions are methods on an
// explicitly constructed Session value so any front end (web handlers,
// CLI) can drive the same flow.
package wizard

import (
	"errors"
	"image"
	"sync"

	"github.com/kozaktomas/face-enroll/internal/facecheck"
	"github.com/kozaktomas/face-enroll/internal/poses"
)

// Page identifies the wizard page the session is currently on.
type Page string

const (
	PageIntro   Page = "intro"
	PageCapture Page = "capture"
	PageFinal   Page = "final"
)

var (
	// ErrIncompleteIntro is returned when name, employee ID or consent
	// is missing at the intro page. The session stays on intro.
	ErrIncompleteIntro = errors.New("name, employee id and explicit consent are required")

	// ErrWrongPage is returned when an operation is not valid for the
	// session's current page.
	ErrWrongPage = errors.New("operation not allowed on the current page")

	// ErrFaceCount is returned when a submitted candidate does not
	// contain exactly one detectable face.
	ErrFaceCount = errors.New("exactly one face must be visible")

	// ErrNoCandidate is returned by Accept when no validated candidate
	// is pending for the current pose.
	ErrNoCandidate = errors.New("no pending candidate image to accept")
)

// Identity holds the enrollee's identity fields. Created once at intro,
// immutable afterward.
type Identity struct {
	Name       string
	EmployeeID string
}

// Captured pairs a pose key with its accepted image.
type Captured struct {
	Key   string
	Image image.Image
}

// State is a read-only snapshot of a session for presentation.
type State struct {
	Page         Page
	Step         int
	TotalPoses   int
	PoseKey      string
	Instruction  string
	HasCandidate bool
	AcceptedKeys []string
	Identity     Identity
}

// Session is the complete mutable state of one user's walk through the
// wizard. It is safe for use by a single client whose requests may
// overlap; all transitions serialize on an internal mutex.
type Session struct {
	id string

	mu        sync.Mutex
	page      Page
	step      int
	identity  Identity
	accepted  []Captured
	candidate image.Image
}

// New creates a session sitting on the intro page.
func New(id string) *Session {
	return &Session{
		id:   id,
		page: PageIntro,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Start moves the session from intro to the first capture step. It is
// guarded by non-empty name, non-empty employee ID and explicit consent;
// on failure the session is left untouched.
func (s *Session) Start(identity Identity, consent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != PageIntro {
		return ErrWrongPage
	}
	if identity.Name == "" || identity.EmployeeID == "" || !consent {
		return ErrIncompleteIntro
	}

	s.identity = identity
	s.page = PageCapture
	s.step = 0
	return nil
}

// Submit validates a freshly captured candidate for the current pose and
// keeps it pending the accept/retake decision. A candidate that fails
// face-count validation (or cannot be processed at all) is discarded and
// the step does not change.
func (s *Session) Submit(det facecheck.Detector, img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != PageCapture {
		return ErrWrongPage
	}

	ok, err := facecheck.ValidateSingleFace(det, img)
	if err != nil {
		s.candidate = nil
		return err
	}
	if !ok {
		s.candidate = nil
		return ErrFaceCount
	}

	s.candidate = img
	return nil
}

// Retake discards any pending candidate and re-prompts the same pose.
func (s *Session) Retake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidate = nil
}

// Accept moves the pending candidate into the accepted set under the
// current pose key and advances the step. Acceptance and advancement are
// atomic: a pose is never counted without its image being stored. The
// final pose transitions the session to the final page.
func (s *Session) Accept() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != PageCapture {
		return ErrWrongPage
	}
	if s.candidate == nil {
		return ErrNoCandidate
	}

	pose := poses.At(s.step)
	s.accepted = append(s.accepted, Captured{Key: pose.Key, Image: s.candidate})
	s.candidate = nil
	s.step++

	if s.step >= poses.Count() {
		s.page = PageFinal
	}
	return nil
}

// Reset returns the session to a pristine intro page, clearing identity,
// step, candidate and all accepted images. Stale partial captures must
// never leak into a new enrollment run.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.page = PageIntro
	s.step = 0
	s.identity = Identity{}
	s.accepted = nil
	s.candidate = nil
}

// Identity returns the identity captured at intro.
func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Candidate returns the pending candidate image, or nil.
func (s *Session) Candidate() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidate
}

// Accepted returns a copy of the accepted images in pose order.
func (s *Session) Accepted() []Captured {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Captured, len(s.accepted))
	copy(out, s.accepted)
	return out
}

// AcceptedKeys returns the pose keys captured so far, in order.
func (s *Session) AcceptedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acceptedKeysLocked()
}

func (s *Session) acceptedKeysLocked() []string {
	keys := make([]string, len(s.accepted))
	for i, c := range s.accepted {
		keys[i] = c.Key
	}
	return keys
}

// Snapshot returns a presentation snapshot of the session.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		Page:         s.page,
		Step:         s.step,
		TotalPoses:   poses.Count(),
		HasCandidate: s.candidate != nil,
		AcceptedKeys: s.acceptedKeysLocked(),
		Identity:     s.identity,
	}
	if s.page == PageCapture && s.step < poses.Count() {
		pose := poses.At(s.step)
		state.PoseKey = pose.Key
		state.Instruction = pose.Instruction
	}
	return state
}
