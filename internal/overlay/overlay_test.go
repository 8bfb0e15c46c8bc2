package overlay

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFaceOutlinePreservesDimensions(t *testing.T) {
	src := createTestImage(640, 480, color.White)

	dst := FaceOutline(src)

	if dst.Bounds().Dx() != 640 || dst.Bounds().Dy() != 480 {
		t.Errorf("expected 640x480, got %dx%d", dst.Bounds().Dx(), dst.Bounds().Dy())
	}
}

func TestFaceOutlineDoesNotMutateInput(t *testing.T) {
	src := createTestImage(200, 160, color.White)

	dst := FaceOutline(src)

	if dst == nil {
		t.Fatal("expected a rendered image")
	}
	// The ellipse passes through (cx + a, cy); the source pixel there must
	// remain untouched.
	x := 200/2 + int(200*semiAxisXRatio)
	y := 160 / 2
	r, g, b, _ := src.At(x, y).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("source pixel at (%d, %d) was mutated: got rgb(%d, %d, %d)", x, y, r>>8, g>>8, b>>8)
	}
}

func TestFaceOutlineReturnsDistinctBuffer(t *testing.T) {
	src := createTestImage(100, 100, color.White)

	dst := FaceOutline(src)

	if &dst.Pix[0] == &src.Pix[0] {
		t.Error("overlay must render into a new pixel buffer")
	}
}

func TestFaceOutlineDrawsEllipse(t *testing.T) {
	src := createTestImage(400, 300, color.White)

	dst := FaceOutline(src)

	// Sample a few points on the parametric ellipse and expect the guide
	// color at (or within a pixel of) each.
	cx, cy := 200.0, 150.0
	a := 400 * semiAxisXRatio
	b := 300 * semiAxisYRatio

	for _, theta := range []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2} {
		x := int(math.Round(cx + a*math.Cos(theta)))
		y := int(math.Round(cy + b*math.Sin(theta)))
		if !greenNearby(dst, x, y) {
			t.Errorf("expected guide color near (%d, %d) at theta=%.2f", x, y, theta)
		}
	}

	// The center itself stays untouched - the ellipse is unfilled.
	r, g, bl, _ := dst.At(200, 150).RGBA()
	if r>>8 != 255 || g>>8 != 255 || bl>>8 != 255 {
		t.Error("ellipse interior must not be filled")
	}
}

func greenNearby(img *image.RGBA, x, y int) bool {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			r, g, b, _ := img.At(x+dx, y+dy).RGBA()
			if r>>8 == 0 && g>>8 == 255 && b>>8 == 0 {
				return true
			}
		}
	}
	return false
}

func TestScaleToFit(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		maxSize    int
		wantWidth  int
		wantHeight int
	}{
		{"landscape over limit", 4000, 2000, 1920, 1920, 960},
		{"portrait over limit", 1000, 4000, 1920, 480, 1920},
		{"within limit unchanged", 800, 600, 1920, 800, 600},
		{"exactly at limit", 1920, 1080, 1920, 1920, 1080},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := createTestImage(tc.width, tc.height, color.Black)
			out := ScaleToFit(src, tc.maxSize)

			bounds := out.Bounds()
			if bounds.Dx() != tc.wantWidth || bounds.Dy() != tc.wantHeight {
				t.Errorf("ScaleToFit(%dx%d, %d) = %dx%d; want %dx%d",
					tc.width, tc.height, tc.maxSize, bounds.Dx(), bounds.Dy(), tc.wantWidth, tc.wantHeight)
			}
		})
	}
}

func TestScaleToFitNoopReturnsSameImage(t *testing.T) {
	src := createTestImage(100, 100, color.Black)
	out := ScaleToFit(src, 1920)

	if out != image.Image(src) {
		t.Error("images within bounds should be returned unchanged")
	}
}
