package facecheck

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Detection parameters for the frontal face cascade. A higher neighbor
// count trades recall for precision, which suits enrollment: a missed
// detection costs one retake, a false positive poisons the archive.
const (
	cascadeScaleFactor  = 1.2
	cascadeMinNeighbors = 5
)

// CascadeDetector detects frontal faces with an OpenCV Haar cascade.
type CascadeDetector struct {
	classifier gocv.CascadeClassifier
	mu         sync.Mutex // CascadeClassifier is not safe for concurrent use
}

// NewCascadeDetector loads the frontal face cascade from the given XML file.
func NewCascadeDetector(cascadePath string) (*CascadeDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load face cascade from %s", cascadePath)
	}
	return &CascadeDetector{classifier: classifier}, nil
}

// Close releases the underlying OpenCV classifier.
func (d *CascadeDetector) Close() error {
	return d.classifier.Close()
}

// Detect returns the bounding rectangles of all detected frontal faces.
func (d *CascadeDetector) Detect(img image.Image) ([]image.Rectangle, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("converting image to mat: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBToGray)

	d.mu.Lock()
	defer d.mu.Unlock()
	faces := d.classifier.DetectMultiScaleWithParams(
		gray,
		cascadeScaleFactor,
		cascadeMinNeighbors,
		0,             // flags (unused by the current OpenCV implementation)
		image.Point{}, // no minimum size
		image.Point{}, // no maximum size
	)
	return faces, nil
}
