package ratings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIdentity(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"img1.jpg", "img1"},
		{"img1.JPG", "img1"},
		{"img1.cr2", "img1"},
		{"img1.xmp", "img1"},
		{"archive.tar.gz", "archive.tar"},
		{"noext", "noext"},
		{".hidden", ""},
		{"trip photo 01.jpeg", "trip photo 01"},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveIdentity(tt.fileName))
		})
	}
}

func TestDeriveIdentityPairsJpgWithRaw(t *testing.T) {
	// a JPG and its RAW sibling must collapse to one identity
	assert.Equal(t, DeriveIdentity("IMG_0042.jpg"), DeriveIdentity("IMG_0042.cr2"))
	assert.Equal(t, DeriveIdentity("IMG_0042.jpg"), DeriveIdentity("IMG_0042.xmp"))
	assert.NotEqual(t, DeriveIdentity("IMG_0042.jpg"), DeriveIdentity("IMG_0043.jpg"))
}

func TestRatingValidation(t *testing.T) {
	for r := MinRating; r <= MaxRating; r++ {
		assert.True(t, IsValid(r))
		assert.NotEmpty(t, Label(r))
	}
	assert.False(t, IsValid(0))
	assert.False(t, IsValid(6))
	assert.False(t, IsValid(-1))
	assert.Empty(t, Label(0))
	assert.Empty(t, Label(9))
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Nil(t, Normalize(intPtr(0)))

	v := Normalize(intPtr(3))
	if assert.NotNil(t, v) {
		assert.Equal(t, 3, *v)
	}
}
