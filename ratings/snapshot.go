package ratings

// Snapshot is the per-photo view of every rating source, plus the file paths
// a write-back would target. JpgPath/RawPath are empty when the collection
// has no such file for the identity.
type Snapshot struct {
	Identity string
	FileName string
	ModTime  int64

	Stored   *int
	Overrule bool
	Jpg      *int
	Raw      *int

	JpgPath string
	RawPath string
}

// Classify runs the conflict detector over this snapshot
func (s Snapshot) Classify() Classification {
	return Classify(s.Stored, s.Overrule, s.Jpg, s.Raw)
}

// HasConflicts reports whether any photo in the collection still classifies
// as a conflict. A batch apply over a collection with known disagreements is
// never allowed, not even partially.
func HasConflicts(snaps []Snapshot) bool {
	for _, s := range snaps {
		if s.Classify().IsConflict() {
			return true
		}
	}
	return false
}

// Conflicts returns the conflict descriptors for every divergent photo in
// the collection.
func Conflicts(snaps []Snapshot) []Conflict {
	out := make([]Conflict, 0)
	for _, s := range snaps {
		if c, ok := ConflictFor(s); ok {
			out = append(out, c)
		}
	}
	return out
}
