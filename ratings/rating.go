package ratings

// Valid ratings run 1..5; the absence of a rating is represented as nil, not
// 0. External metadata that reports 0 means "no rating" and is normalized
// away at every ingestion boundary.
const (
	MinRating = 1
	MaxRating = 5
)

// label mapping is fixed; the UI relies on these exact meanings
var ratingLabels = map[int]string{
	1: "mark for deletion",
	2: "kept despite flaws",
	3: "ambivalent/ok",
	4: "good",
	5: "favorite",
}

// IsValid reports whether rating is inside the allowed 1..5 range
func IsValid(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// Label returns the fixed human meaning of a rating value, or "" for
// out-of-range values
func Label(rating int) string {
	return ratingLabels[rating]
}

// Normalize maps the two "no rating" encodings used by file metadata (an
// absent tag and an explicit 0) onto nil
func Normalize(rating *int) *int {
	if rating == nil || *rating == 0 {
		return nil
	}
	return rating
}
