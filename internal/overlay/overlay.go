// Package overlay renders the alignment guide shown to the user between
// capture and the accept/retake decision. The guide is a fixed-geometry
// ellipse derived from the image dimensions only - it deliberately does
// not follow the detected face box.
package overlay

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Ellipse geometry relative to the image dimensions.
const (
	semiAxisXRatio = 0.25
	semiAxisYRatio = 0.35
	strokeWidth    = 2
)

var guideColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// FaceOutline returns a copy of the image with an unfilled guide ellipse
// centered at the image midpoint. The input image is never mutated - the
// original must stay pristine for archival.
func FaceOutline(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)

	width := bounds.Dx()
	height := bounds.Dy()
	centerX := width / 2
	centerY := height / 2
	semiA := float64(width) * semiAxisXRatio
	semiB := float64(height) * semiAxisYRatio

	strokeEllipse(dst, centerX, centerY, semiA, semiB)
	return dst
}

// strokeEllipse plots the full 360° ellipse outline by parametric
// sampling, thickened to the stroke width.
func strokeEllipse(dst *image.RGBA, cx, cy int, a, b float64) {
	// Enough samples that adjacent points are less than a pixel apart.
	steps := int(2 * math.Pi * math.Max(a, b) * 2)
	if steps < 64 {
		steps = 64
	}

	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := float64(cx) + a*math.Cos(theta)
		y := float64(cy) + b*math.Sin(theta)
		setThick(dst, int(math.Round(x)), int(math.Round(y)))
	}
}

// setThick colors a strokeWidth x strokeWidth block anchored at (x, y),
// clipped to the image bounds.
func setThick(dst *image.RGBA, x, y int) {
	bounds := dst.Bounds()
	for dy := 0; dy < strokeWidth; dy++ {
		for dx := 0; dx < strokeWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				dst.SetRGBA(px, py, guideColor)
			}
		}
	}
}

// ScaleToFit downscales an image so neither dimension exceeds maxSize,
// keeping the aspect ratio. Images already within bounds are returned
// unchanged.
func ScaleToFit(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return img
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxSize
		newHeight = int(float64(height) * float64(maxSize) / float64(width))
	} else {
		newHeight = maxSize
		newWidth = int(float64(width) * float64(maxSize) / float64(height))
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}
