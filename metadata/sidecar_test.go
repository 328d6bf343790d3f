package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempSidecar(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img1.xmp")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, "/p/raw/img1.xmp", SidecarPath("/p/raw/img1.cr2"))
	assert.Equal(t, "/p/raw/img1.xmp", SidecarPath("/p/raw/img1.NEF"))
	assert.Equal(t, "img1.xmp", SidecarPath("img1.dng"))
}

func TestReadSidecarRatingAttributeForm(t *testing.T) {
	path := writeTempSidecar(t, `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmp:Rating="4"/>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`)

	rating, err := ReadSidecarRating(path)
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.Equal(t, 4, *rating)
}

func TestReadSidecarRatingElementForm(t *testing.T) {
	path := writeTempSidecar(t, `<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="">
   <xmp:Rating xmlns:xmp="http://ns.adobe.com/xap/1.0/">2</xmp:Rating>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>`)

	rating, err := ReadSidecarRating(path)
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.Equal(t, 2, *rating)
}

func TestReadSidecarRatingAbsent(t *testing.T) {
	path := writeTempSidecar(t, `<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/" dc:format="image/x-canon-cr2"/>
 </rdf:RDF>
</x:xmpmeta>`)

	rating, err := ReadSidecarRating(path)
	require.NoError(t, err)
	assert.Nil(t, rating)
}

func TestReadSidecarRatingZeroMeansUnrated(t *testing.T) {
	path := writeTempSidecar(t, `<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmp:Rating="0"/>
 </rdf:RDF>
</x:xmpmeta>`)

	rating, err := ReadSidecarRating(path)
	require.NoError(t, err)
	assert.Nil(t, rating)
}

func TestReadSidecarRatingGarbageValues(t *testing.T) {
	t.Run("non-numeric rating yields nil", func(t *testing.T) {
		path := writeTempSidecar(t, `<r xmlns:xmp="http://ns.adobe.com/xap/1.0/"><Description Rating="five"/></r>`)
		rating, err := ReadSidecarRating(path)
		require.NoError(t, err)
		assert.Nil(t, rating)
	})

	t.Run("out-of-range rating yields nil", func(t *testing.T) {
		path := writeTempSidecar(t, `<r><Description Rating="99"/></r>`)
		rating, err := ReadSidecarRating(path)
		require.NoError(t, err)
		assert.Nil(t, rating)
	})

	t.Run("malformed xml errors", func(t *testing.T) {
		path := writeTempSidecar(t, `<x:xmpmeta><unclosed`)
		_, err := ReadSidecarRating(path)
		assert.Error(t, err)
	})
}

func TestReadSidecarRatingMissingFile(t *testing.T) {
	_, err := ReadSidecarRating(filepath.Join(t.TempDir(), "nope.xmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteSidecarRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img1.xmp")
	require.NoError(t, WriteSidecar(path, 5))

	rating, err := ReadSidecarRating(path)
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.Equal(t, 5, *rating)
}

func TestWriteSidecarRejectsInvalidRating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img1.xmp")
	assert.Error(t, WriteSidecar(path, 0))
	assert.Error(t, WriteSidecar(path, 6))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
