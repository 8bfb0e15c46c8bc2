// Package facecheck validates that a captured image contains exactly one
// face. Detection itself sits behind a small Detector interface so front
// ends and tests can run without the OpenCV cascade.
package facecheck

import (
	"errors"
	"fmt"
	"image"
)

// ErrUnreadableImage is returned when the detector cannot process the
// input at all (nil or degenerate image, decode trouble). Callers must
// treat it as a validation failure and re-prompt, never as a fatal error.
var ErrUnreadableImage = errors.New("image could not be processed by the face detector")

// Detector finds face regions in a decoded image.
type Detector interface {
	Detect(img image.Image) ([]image.Rectangle, error)
}

// ValidateSingleFace reports whether exactly one face region is detected.
// Zero faces and more than one face are both rejected - there is no
// partial credit for "too many faces".
func ValidateSingleFace(det Detector, img image.Image) (bool, error) {
	if img == nil {
		return false, ErrUnreadableImage
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return false, ErrUnreadableImage
	}

	faces, err := det.Detect(img)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return len(faces) == 1, nil
}
