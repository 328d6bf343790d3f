package ratings

// Classification describes how the three rating sources of one photo relate
// to each other. It is derived state: recomputed on demand, never persisted.
type Classification string

const (
	// no source carries a rating
	ClassUnrated Classification = "unrated"
	// the stored rating agrees with a present embedded rating
	ClassMatch Classification = "match"
	// only the store has a rating
	ClassStoreOnly Classification = "store_only"
	// only embedded metadata has a rating
	ClassFileOnly Classification = "file_only"
	// stored and JPG-embedded ratings are both present and disagree
	ClassJpgConflict Classification = "jpg_conflict"
	// stored and RAW-embedded ratings are both present and disagree
	ClassRawConflict Classification = "raw_conflict"
	// sources disagree but the overrule flag pins the stored rating
	ClassResolved Classification = "resolved"
	// no stored rating yet, and JPG and RAW disagree with each other;
	// blocks automatic aggregation for the photo
	ClassJpgRawMismatch Classification = "jpg_raw_mismatch"
)

// IsConflict reports whether the classification blocks a batch apply
func (c Classification) IsConflict() bool {
	return c == ClassJpgConflict || c == ClassRawConflict || c == ClassJpgRawMismatch
}

// Classify computes the conflict state of one photo from its stored record
// and its two embedded ratings. Pure function: no I/O, no writes. The
// overrule flag is per photo, not per source, so it suppresses disagreement
// against JPG and RAW at the same time. Agreement with either embedded
// source counts as a match even if the other embedded source differs.
func Classify(stored *int, overrule bool, jpg, raw *int) Classification {
	stored = Normalize(stored)
	jpg = Normalize(jpg)
	raw = Normalize(raw)

	if stored == nil {
		if jpg != nil && raw != nil && *jpg != *raw {
			return ClassJpgRawMismatch
		}
		if jpg != nil || raw != nil {
			return ClassFileOnly
		}
		return ClassUnrated
	}

	if (jpg != nil && *jpg == *stored) || (raw != nil && *raw == *stored) {
		return ClassMatch
	}

	jpgDiffers := jpg != nil && *jpg != *stored
	rawDiffers := raw != nil && *raw != *stored
	if !jpgDiffers && !rawDiffers {
		return ClassStoreOnly
	}
	if overrule {
		return ClassResolved
	}
	if jpgDiffers {
		return ClassJpgConflict
	}
	return ClassRawConflict
}

// Conflict is the descriptor handed to the UI layer when browsing reaches a
// photo whose sources disagree.
type Conflict struct {
	FileName       string         `json:"file_name"`
	Identity       string         `json:"identity"`
	Source         string         `json:"source"` // "jpg" or "raw"
	EmbeddedRating *int           `json:"embedded_rating"`
	StoredRating   *int           `json:"stored_rating"`
	Kind           Classification `json:"kind"`
}

// ConflictFor builds the descriptor for a snapshot whose classification is
// one of the conflict kinds; ok is false for any other classification.
func ConflictFor(s Snapshot) (Conflict, bool) {
	c := Conflict{
		FileName:     s.FileName,
		Identity:     s.Identity,
		StoredRating: Normalize(s.Stored),
	}
	switch s.Classify() {
	case ClassJpgConflict:
		c.Source = "jpg"
		c.EmbeddedRating = Normalize(s.Jpg)
		c.Kind = ClassJpgConflict
	case ClassRawConflict:
		c.Source = "raw"
		c.EmbeddedRating = Normalize(s.Raw)
		c.Kind = ClassRawConflict
	case ClassJpgRawMismatch:
		// the two embedded sources fight each other; surface the JPG value
		// as the primary embedded rating and flag the kind
		c.Source = "jpg"
		c.EmbeddedRating = Normalize(s.Jpg)
		c.Kind = ClassJpgRawMismatch
	default:
		return Conflict{}, false
	}
	return c, true
}
