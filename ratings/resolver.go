package ratings

import "fmt"

// Resolution is one of the fixed choices a user can make for a detected
// conflict. Exactly one executes per invocation; there is no combined
// outcome.
type Resolution string

const (
	// adopt the file's rating as current truth; the overrule flag stays
	// down so later drift in the file is re-flagged
	ResolutionUseEmbedded Resolution = "use_embedded"
	// keep the stored rating and raise the overrule flag, suppressing
	// re-detection until the next bulk reset
	ResolutionUseStored Resolution = "use_stored"
	// write nothing; the conflict is re-presented on next encounter
	ResolutionIgnore Resolution = "ignore"
)

// ParseResolution validates a wire-level resolution string
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case ResolutionUseEmbedded, ResolutionUseStored, ResolutionIgnore:
		return Resolution(s), nil
	}
	return "", fmt.Errorf("unknown conflict resolution %q", s)
}

// RecordStore is the slice of the rating store the resolver and applier need
// for a single collection.
type RecordStore interface {
	Upsert(identity string, rating *int, overrule *bool) error
	ResetOverruleFlags() error
}

// Resolve applies one resolution choice for one photo. The overrule flag is
// only ever raised here (use_stored) or cleared by a completed batch apply;
// nothing sets it implicitly.
func Resolve(store RecordStore, identity string, res Resolution, storedRating, embeddedRating *int) error {
	overruleOff := false
	overruleOn := true

	switch res {
	case ResolutionUseEmbedded:
		embeddedRating = Normalize(embeddedRating)
		if embeddedRating == nil {
			return fmt.Errorf("resolver: no embedded rating to adopt for %s", identity)
		}
		return store.Upsert(identity, embeddedRating, &overruleOff)
	case ResolutionUseStored:
		storedRating = Normalize(storedRating)
		if storedRating == nil {
			return fmt.Errorf("resolver: no stored rating to keep for %s", identity)
		}
		return store.Upsert(identity, storedRating, &overruleOn)
	case ResolutionIgnore:
		return nil
	}
	return fmt.Errorf("resolver: unknown resolution %q", res)
}
