package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/reed-hollis/photoshelfbackend/ratings"
	"github.com/reed-hollis/photoshelfbackend/utils"
)

// ExifTool wraps the exiftool CLI for rating reads and writes. Reads are
// batched, one subprocess per directory; writes touch one file at a time.
type ExifTool struct {
	Path    string
	Timeout time.Duration
}

// NewExifTool creates a wrapper around the exiftool binary at path
// ("exiftool" on PATH when empty).
func NewExifTool(path string, timeout time.Duration) *ExifTool {
	if path == "" {
		path = "exiftool"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ExifTool{Path: path, Timeout: timeout}
}

type exifToolEntry struct {
	SourceFile string `json:"SourceFile"`
	Rating     *int   `json:"Rating"`
}

// ReadRating returns the embedded rating of a single file. Files without a
// rating tag (or rated 0) yield nil, not an error.
func (e *ExifTool) ReadRating(ctx context.Context, filePath string) (*int, error) {
	entries, err := e.run(ctx, filePath)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return ratings.Normalize(entries[0].Rating), nil
}

// ReadRatingsBatch reads the embedded rating of every file directly inside
// dirPath in one exiftool invocation, keyed by file name. Files without a
// rating tag map to nil and never fail the batch.
func (e *ExifTool) ReadRatingsBatch(ctx context.Context, dirPath string) (map[string]*int, error) {
	entries, err := e.run(ctx, dirPath)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*int, len(entries))
	for _, entry := range entries {
		out[filepath.Base(entry.SourceFile)] = ratings.Normalize(entry.Rating)
	}
	return out, nil
}

func (e *ExifTool) run(ctx context.Context, target string) ([]exifToolEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.Path, "-json", "-n", "-q", "-Rating", target)
	out, err := cmd.Output()
	if err != nil {
		// exiftool exits non-zero when some files in a directory are
		// unreadable but still emits JSON for the rest
		if len(out) == 0 {
			return nil, fmt.Errorf("exiftool: failed reading %s: %w", target, err)
		}
		log.Printf("exiftool: partial read for %s: %v", target, err)
	}

	if len(strings.TrimSpace(string(out))) == 0 {
		return nil, nil
	}

	var entries []exifToolEntry
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, fmt.Errorf("exiftool: failed to parse output for %s: %w", target, err)
	}
	return entries, nil
}

// WriteRating writes a rating into a photo file. RAW files are never
// modified directly: the write targets their XMP sidecar, which is created
// when absent.
func (e *ExifTool) WriteRating(ctx context.Context, filePath string, rating int) error {
	if !ratings.IsValid(rating) {
		return fmt.Errorf("exiftool: refusing to write invalid rating %d to %s", rating, filePath)
	}

	target := filePath
	if utils.IsRawImage(filePath) {
		sidecar := SidecarPath(filePath)
		if _, err := os.Stat(sidecar); os.IsNotExist(err) {
			return WriteSidecar(sidecar, rating)
		} else if err != nil {
			return fmt.Errorf("exiftool: failed to stat sidecar %s: %w", sidecar, err)
		}
		target = sidecar
	}

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.Path, "-overwrite_original", fmt.Sprintf("-Rating=%d", rating), target)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("exiftool: failed writing rating to %s: %w (%s)", target, err, strings.TrimSpace(string(out)))
	}
	return nil
}
