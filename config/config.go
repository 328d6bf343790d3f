package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultRatingStoresSubDir = "rating_stores"
	DefaultRawSubdir          = "raw"
)

const (
	defaultWritebackWorkers    = 4
	defaultExifToolTimeoutSecs = 30
)

type Config struct {
	// source directory (each subdirectory is a photo collection)
	RootDirectory string

	// app-level database path (collections registry, preferences)
	DatabasePath string

	// storage configuration
	MediaStoragePath string // root for generated data (per-collection rating stores)
	RatingStoresPath string // full-calculated path for rating store files

	// name of the per-collection subfolder holding RAW files
	RawSubdir string

	// exiftool settings
	ExifToolPath    string
	ExifToolTimeout time.Duration

	// worker settings
	WritebackWorkers int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	root := getEnvOrDefault("ROOT_DIRECTORY", ".")
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for root directory '%s': %w", root, err)
	}

	dbPath := getEnvOrDefault("DATABASE_PATH", "photoshelf.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	storesSubDir := getEnvOrDefault("RATING_STORES_SUBDIR", DefaultRatingStoresSubDir)
	absRatingStoresPath := filepath.Join(absMediaStorage, storesSubDir)

	rawSubdir := getEnvOrDefault("RAW_SUBDIR", DefaultRawSubdir)

	exifToolPath := getEnvOrDefault("EXIFTOOL_PATH", "exiftool")
	exifToolTimeout := time.Duration(getEnvIntOrDefault("EXIFTOOL_TIMEOUT_SECS", defaultExifToolTimeoutSecs)) * time.Second

	writebackWorkers := getEnvIntOrDefault("WRITEBACK_WORKERS", defaultWritebackWorkers)

	cfg := Config{
		RootDirectory:    absRoot,
		DatabasePath:     dbPath,
		MediaStoragePath: absMediaStorage,
		RatingStoresPath: absRatingStoresPath,
		RawSubdir:        rawSubdir,
		ExifToolPath:     exifToolPath,
		ExifToolTimeout:  exifToolTimeout,
		WritebackWorkers: writebackWorkers,
	}

	return cfg, nil
}
