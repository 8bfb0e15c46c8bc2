package cmd

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"

	"github.com/kozaktomas/face-enroll/internal/archive"
	"github.com/kozaktomas/face-enroll/internal/config"
	"github.com/kozaktomas/face-enroll/internal/facecheck"
	"github.com/kozaktomas/face-enroll/internal/overlay"
	"github.com/kozaktomas/face-enroll/internal/poses"
	"github.com/kozaktomas/face-enroll/internal/wizard"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Run the enrollment wizard over pre-captured image files",
	Long: `Run the full enrollment flow from the command line using images
captured ahead of time. The images directory must contain one file per
pose, named after the pose key (front.jpg, left.jpg, right.jpg, up.jpg,
down.jpg; .jpeg and .png work too).

Each image goes through the same single-face validation as the web
wizard; a rejected image aborts the run with a per-pose message.

Examples:
  # Enroll from a directory of captures
  face-enroll enroll --name "Alice Kovar" --id E1042 --consent --images ./captures

  # Choose the output archive path
  face-enroll enroll --name "Alice Kovar" --id E1042 --consent --images ./captures --out alice.zip`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Employee name (required)")
	enrollCmd.Flags().String("id", "", "Employee ID (required)")
	enrollCmd.Flags().Bool("consent", false, "Confirm the enrollee consented to image collection")
	enrollCmd.Flags().String("images", "", "Directory with one image per pose (required)")
	enrollCmd.Flags().String("out", "", "Output archive path (defaults to <id>_<name>.zip)")
	enrollCmd.Flags().String("cascade", "", "Path to the frontal face Haar cascade XML (overrides FACE_CASCADE_PATH)")
}

// poseImagePath finds the capture file for a pose key inside dir.
func poseImagePath(dir, key string) (string, error) {
	for _, ext := range []string{".jpg", ".jpeg", ".png"} {
		path := filepath.Join(dir, key+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no image found for pose %q in %s (expected %s.jpg)", key, dir, key)
}

// loadPoseImage decodes the capture file for a pose.
func loadPoseImage(path string, maxSize int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return overlay.ScaleToFit(img, maxSize), nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")
	employeeID := mustGetString(cmd, "id")
	consent := mustGetBool(cmd, "consent")
	imagesDir := mustGetString(cmd, "images")
	outPath := mustGetString(cmd, "out")

	if imagesDir == "" {
		return errors.New("--images directory is required")
	}

	cfg := config.Load()
	if cascade := mustGetString(cmd, "cascade"); cascade != "" {
		cfg.Face.CascadePath = cascade
	}

	detector, err := facecheck.NewCascadeDetector(cfg.Face.CascadePath)
	if err != nil {
		return fmt.Errorf("failed to initialize face detector: %w", err)
	}
	defer detector.Close()

	session := wizard.New("cli")
	if err := session.Start(wizard.Identity{Name: name, EmployeeID: employeeID}, consent); err != nil {
		return err
	}

	bar := progressbar.Default(int64(poses.Count()), "capturing poses")
	for _, pose := range poses.Sequence() {
		path, err := poseImagePath(imagesDir, pose.Key)
		if err != nil {
			return err
		}

		img, err := loadPoseImage(path, cfg.Enroll.MaxImageSize)
		if err != nil {
			return err
		}

		if err := session.Submit(detector, img); err != nil {
			if errors.Is(err, wizard.ErrFaceCount) {
				return fmt.Errorf("pose %q (%s): exactly one face must be visible", pose.Key, path)
			}
			return fmt.Errorf("pose %q (%s): %w", pose.Key, path, err)
		}
		if err := session.Accept(); err != nil {
			return fmt.Errorf("accepting pose %q: %w", pose.Key, err)
		}
		_ = bar.Add(1)
	}

	identity := session.Identity()
	meta := archive.NewMetadata(identity.EmployeeID, identity.Name, session.AcceptedKeys(), time.Now(), archive.SourceCLI)

	accepted := session.Accepted()
	images := make([]archive.NamedImage, len(accepted))
	for i, c := range accepted {
		images[i] = archive.NamedImage{Key: c.Key, Image: c.Image}
	}

	data, err := archive.Build(images, meta)
	if err != nil {
		return fmt.Errorf("building archive: %w", err)
	}

	if outPath == "" {
		outPath = archive.Filename(meta)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}

	fmt.Printf("Enrollment complete: %d poses captured\n", len(accepted))
	fmt.Printf("Archive written to %s (%d bytes)\n", outPath, len(data))
	return nil
}
