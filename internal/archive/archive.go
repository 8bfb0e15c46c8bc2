// Package archive packages accepted enrollment images plus a metadata
// record into a single in-memory ZIP ready for download. Nothing touches
// the filesystem.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"time"
)

// Source tags written into metadata.json, identifying which front end
// produced the archive.
const (
	SourceWeb = "face-enroll"
	SourceCLI = "face-enroll-cli"
)

const jpegQuality = 90

// NamedImage pairs an archive entry name (the pose key) with its image.
type NamedImage struct {
	Key   string
	Image image.Image
}

// Metadata is the record stored as metadata.json in the archive.
type Metadata struct {
	EmployeeID string   `json:"employee_id"`
	Name       string   `json:"name"`
	Poses      []string `json:"poses"`
	Timestamp  string   `json:"timestamp"`
	Source     string   `json:"source"`
}

// NewMetadata builds the metadata record from the session's accumulated
// state. The timestamp is ISO 8601 in UTC.
func NewMetadata(employeeID, name string, poseKeys []string, now time.Time, source string) Metadata {
	return Metadata{
		EmployeeID: employeeID,
		Name:       name,
		Poses:      poseKeys,
		Timestamp:  now.UTC().Format(time.RFC3339),
		Source:     source,
	}
}

// Build produces a deflate-compressed ZIP with one "<pose_key>.jpg" entry
// per image (in input order) plus a pretty-printed "metadata.json" entry.
// Construction is atomic: any encode error returns nil bytes and no
// partial archive.
func Build(images []NamedImage, meta Metadata) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, entry := range images {
		w, err := zw.Create(entry.Key + ".jpg")
		if err != nil {
			return nil, fmt.Errorf("creating archive entry for %s: %w", entry.Key, err)
		}
		if err := jpeg.Encode(w, entry.Image, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encoding %s as JPEG: %w", entry.Key, err)
		}
	}

	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling metadata: %w", err)
	}
	w, err := zw.Create("metadata.json")
	if err != nil {
		return nil, fmt.Errorf("creating metadata entry: %w", err)
	}
	if _, err := w.Write(metaJSON); err != nil {
		return nil, fmt.Errorf("writing metadata entry: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}
