package metadata

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/reed-hollis/photoshelfbackend/ratings"
)

// XMP sidecars sit next to their RAW file with the extension swapped to
// .xmp (img1.cr2 -> img1.xmp).

// SidecarPath returns the sidecar path for a RAW file
func SidecarPath(rawPath string) string {
	ext := filepath.Ext(rawPath)
	return strings.TrimSuffix(rawPath, ext) + ".xmp"
}

// ReadSidecarRating parses xmp:Rating out of a sidecar without shelling
// out. Both encodings seen in the wild are handled: the attribute form on
// rdf:Description and the element form. A sidecar with no rating, a rating
// of 0, or an unparseable value yields nil, never an error; only I/O and
// malformed XML fail.
func ReadSidecarRating(sidecarPath string) (*int, error) {
	f, err := os.Open(sidecarPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := xml.NewDecoder(f)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("sidecar: failed to parse %s: %w", sidecarPath, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if start.Name.Local == "Description" {
			for _, attr := range start.Attr {
				if attr.Name.Local == "Rating" {
					return parseSidecarRating(sidecarPath, attr.Value), nil
				}
			}
			continue
		}

		if start.Name.Local == "Rating" {
			var raw string
			if err := decoder.DecodeElement(&raw, &start); err != nil {
				return nil, fmt.Errorf("sidecar: failed to parse rating element in %s: %w", sidecarPath, err)
			}
			return parseSidecarRating(sidecarPath, raw), nil
		}
	}
}

func parseSidecarRating(path, value string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("sidecar: ignoring unparseable rating %q in %s", value, path)
		return nil
	}
	rating := ratings.Normalize(&v)
	if rating != nil && !ratings.IsValid(*rating) {
		log.Printf("sidecar: ignoring out-of-range rating %d in %s", *rating, path)
		return nil
	}
	return rating
}

const sidecarTemplate = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmp:Rating="%d"/>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>
`

// WriteSidecar creates a minimal sidecar carrying only a rating. Existing
// sidecars must be updated through exiftool instead so their other tags
// survive.
func WriteSidecar(sidecarPath string, rating int) error {
	if !ratings.IsValid(rating) {
		return fmt.Errorf("sidecar: refusing to write invalid rating %d to %s", rating, sidecarPath)
	}
	if err := os.WriteFile(sidecarPath, []byte(fmt.Sprintf(sidecarTemplate, rating)), 0644); err != nil {
		return fmt.Errorf("sidecar: failed to write %s: %w", sidecarPath, err)
	}
	return nil
}
