package utils

import (
	"path/filepath"
	"strings"
)

var supportedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

var rawImageExtensions = map[string]bool{
	".cr2": true,
	".cr3": true,
	".nef": true,
	".arw": true,
	".dng": true,
	".orf": true,
	".raf": true,
	".rw2": true,
	".pef": true,
	".srw": true,
}

// IsRasterImage checks if the filename has a common raster image extension
func IsRasterImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}

// IsRawImage checks if the filename has a known RAW camera file extension
func IsRawImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return rawImageExtensions[ext]
}

// IsXMPSidecar checks if the filename is an XMP sidecar file
func IsXMPSidecar(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".xmp"
}
