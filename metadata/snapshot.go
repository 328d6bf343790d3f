package metadata

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/reed-hollis/photoshelfbackend/database"
	"github.com/reed-hollis/photoshelfbackend/ratings"
	"github.com/reed-hollis/photoshelfbackend/utils"
)

// RatingReader is the read side of the metadata collaborator. Absent rating
// tags come back as nil, never 0, and one untagged file never fails a
// batch.
type RatingReader interface {
	ReadRating(ctx context.Context, filePath string) (*int, error)
	ReadRatingsBatch(ctx context.Context, dirPath string) (map[string]*int, error)
}

// SnapshotLoader assembles the per-photo view of every rating source for a
// collection: stored records, embedded JPG ratings from the collection
// directory, and RAW ratings from the raw subfolder (sidecar first, then
// the RAW file's own metadata).
type SnapshotLoader struct {
	Reader    RatingReader
	RawSubdir string
}

// NewSnapshotLoader creates a loader reading RAW files from the given
// subfolder name ("raw" by convention).
func NewSnapshotLoader(reader RatingReader, rawSubdir string) *SnapshotLoader {
	if rawSubdir == "" {
		rawSubdir = "raw"
	}
	return &SnapshotLoader{Reader: reader, RawSubdir: rawSubdir}
}

// Load builds the snapshot of every photo identity in collectionPath,
// merging in the stored records. A missing collection directory surfaces
// immediately; no partial snapshot is returned.
func (l *SnapshotLoader) Load(ctx context.Context, collectionPath string, stored map[string]database.RatingRecord) ([]ratings.Snapshot, error) {
	entries, err := os.ReadDir(collectionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection directory %s: %w", collectionPath, err)
	}

	snapMap := make(map[string]*ratings.Snapshot)
	get := func(identity string) *ratings.Snapshot {
		if s, ok := snapMap[identity]; ok {
			return s
		}
		s := &ratings.Snapshot{Identity: identity}
		snapMap[identity] = s
		return s
	}

	var hasImages bool
	for _, entry := range entries {
		if !entry.IsDir() && utils.IsRasterImage(entry.Name()) {
			hasImages = true
			break
		}
	}

	var jpgRatings map[string]*int
	if hasImages {
		jpgRatings, err = l.Reader.ReadRatingsBatch(ctx, collectionPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded ratings for %s: %w", collectionPath, err)
		}
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !utils.IsRasterImage(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.Printf("snapshot: error stating %s: %v, skipping", name, err)
			continue
		}

		s := get(ratings.DeriveIdentity(name))
		s.FileName = name
		s.ModTime = info.ModTime().Unix()
		s.JpgPath = filepath.Join(collectionPath, name)
		s.Jpg = ratings.Normalize(jpgRatings[name])
	}

	if err := l.loadRawRatings(ctx, collectionPath, get); err != nil {
		return nil, err
	}

	for identity, rec := range stored {
		s := get(identity)
		if s.FileName == "" {
			// record for a photo whose files are gone; keep it visible
			s.FileName = identity
		}
		s.Stored = ratings.Normalize(rec.Rating)
		s.Overrule = rec.OverruleFileRating != nil && *rec.OverruleFileRating
	}

	snaps := make([]ratings.Snapshot, 0, len(snapMap))
	for _, s := range snapMap {
		snaps = append(snaps, *s)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Identity < snaps[j].Identity })
	return snaps, nil
}

// loadRawRatings folds the raw subfolder into the snapshot map. A missing
// raw subfolder simply means the collection has no RAW files.
func (l *SnapshotLoader) loadRawRatings(ctx context.Context, collectionPath string, get func(string) *ratings.Snapshot) error {
	rawDir := filepath.Join(collectionPath, l.RawSubdir)
	rawEntries, err := os.ReadDir(rawDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read raw directory %s: %w", rawDir, err)
	}

	var hasRaw bool
	for _, entry := range rawEntries {
		if !entry.IsDir() && utils.IsRawImage(entry.Name()) {
			hasRaw = true
			break
		}
	}

	var rawRatings map[string]*int
	if hasRaw {
		rawRatings, err = l.Reader.ReadRatingsBatch(ctx, rawDir)
		if err != nil {
			return fmt.Errorf("failed to read raw embedded ratings for %s: %w", rawDir, err)
		}
	}

	for _, entry := range rawEntries {
		name := entry.Name()
		if entry.IsDir() || !utils.IsRawImage(name) {
			continue
		}

		rawPath := filepath.Join(rawDir, name)
		s := get(ratings.DeriveIdentity(name))
		s.RawPath = rawPath
		if s.FileName == "" {
			s.FileName = name
		}

		rating := ratings.Normalize(rawRatings[name])

		// a sidecar, when present and rated, wins over the RAW file's own
		// metadata
		sidecar := SidecarPath(rawPath)
		if _, statErr := os.Stat(sidecar); statErr == nil {
			sidecarRating, scErr := ReadSidecarRating(sidecar)
			if scErr != nil {
				log.Printf("snapshot: error reading sidecar %s: %v", sidecar, scErr)
			} else if sidecarRating != nil {
				rating = sidecarRating
			}
		}
		s.Raw = rating
	}
	return nil
}
