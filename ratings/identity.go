package ratings

import "strings"

// DeriveIdentity returns the collection-relative identity of a photo: the
// filename with its final extension removed. Files sharing a base name but
// differing in extension (img1.jpg, img1.cr2) resolve to the same identity,
// which is what lets a JPG and its RAW pair carry one rating.
func DeriveIdentity(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return fileName
	}
	return fileName[:idx]
}
