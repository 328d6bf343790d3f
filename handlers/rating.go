package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/reed-hollis/photoshelfbackend/config"
	"github.com/reed-hollis/photoshelfbackend/database"
	"github.com/reed-hollis/photoshelfbackend/metadata"
	"github.com/reed-hollis/photoshelfbackend/ratings"
	"github.com/reed-hollis/photoshelfbackend/repository"
)

type RatingHandler struct {
	Cfg     config.Config
	Ratings *repository.RatingRepository
	Loader  *metadata.SnapshotLoader
}

// GetRatings returns every stored rating record for a collection, keyed by
// photo identity. A collection that was never rated yields an empty map.
// GET /api/ratings?path=rel/dir
func (rh *RatingHandler) GetRatings(w http.ResponseWriter, r *http.Request) {
	_, relKey, err := resolveCollectionPath(rh.Cfg, r.URL.Query().Get("path"))
	if err != nil {
		WriteAPIError(w, http.StatusForbidden, "forbidden_path", "collection path is outside the photo root")
		return
	}

	records, err := rh.Ratings.GetAll(relKey)
	if err != nil {
		log.Printf("Error loading ratings for %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to load ratings")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// PutRating upserts a user-assigned rating for one photo. A user rating
// never raises the overrule flag; that is reserved for explicit conflict
// resolution.
// PUT /api/ratings {"path": "...", "file": "img1.jpg", "rating": 4}
func (rh *RatingHandler) PutRating(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Path   string `json:"path"`
		File   string `json:"file"`
		Rating *int   `json:"rating"`
	}
	if err := decodeJSONBody(r, &payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if payload.File == "" || strings.ContainsAny(payload.File, "/\\") {
		WriteAPIError(w, http.StatusBadRequest, "invalid_file", "file must be a bare file name")
		return
	}

	_, relKey, err := resolveCollectionPath(rh.Cfg, payload.Path)
	if err != nil {
		WriteAPIError(w, http.StatusForbidden, "forbidden_path", "collection path is outside the photo root")
		return
	}

	identity := ratings.DeriveIdentity(payload.File)
	record, err := rh.Ratings.Upsert(relKey, identity, payload.Rating, nil)
	if err != nil {
		if errors.Is(err, database.ErrInvalidRating) {
			WriteAPIError(w, http.StatusBadRequest, "invalid_rating", err.Error())
			return
		}
		log.Printf("Error upserting rating for %s/%s: %v", relKey, identity, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to save rating")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// ResolveConflict applies one of the three fixed resolution choices to a
// detected conflict.
// POST /api/ratings/resolve {"path": "...", "file": "img1.jpg", "resolution": "use_embedded"}
func (rh *RatingHandler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Path       string `json:"path"`
		File       string `json:"file"`
		Resolution string `json:"resolution"`
	}
	if err := decodeJSONBody(r, &payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	resolution, err := ratings.ParseResolution(payload.Resolution)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_resolution", err.Error())
		return
	}

	absPath, relKey, err := resolveCollectionPath(rh.Cfg, payload.Path)
	if err != nil {
		WriteAPIError(w, http.StatusForbidden, "forbidden_path", "collection path is outside the photo root")
		return
	}

	stored, err := rh.Ratings.GetAll(relKey)
	if err != nil {
		log.Printf("Error loading ratings for %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to load ratings")
		return
	}
	snaps, err := rh.Loader.Load(r.Context(), absPath, stored)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "collection directory does not exist")
			return
		}
		log.Printf("Error loading snapshots for %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to load collection state")
		return
	}

	identity := ratings.DeriveIdentity(payload.File)
	var snap *ratings.Snapshot
	for i := range snaps {
		if snaps[i].Identity == identity {
			snap = &snaps[i]
			break
		}
	}
	if snap == nil {
		WriteAPIError(w, http.StatusNotFound, "not_found", "no such photo in collection")
		return
	}

	class := snap.Classify()
	var embedded *int
	switch class {
	case ratings.ClassJpgConflict:
		embedded = snap.Jpg
	case ratings.ClassRawConflict:
		embedded = snap.Raw
	default:
		if resolution != ratings.ResolutionIgnore {
			WriteAPIError(w, http.StatusConflict, "no_conflict", "photo has no open conflict to resolve")
			return
		}
	}

	store := rh.Ratings.ForCollection(relKey)
	if err := ratings.Resolve(store, identity, resolution, snap.Stored, embedded); err != nil {
		log.Printf("Error resolving conflict for %s/%s: %v", relKey, identity, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to resolve conflict")
		return
	}

	records, err := rh.Ratings.GetAll(relKey)
	if err != nil {
		log.Printf("Error reloading ratings for %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to reload ratings")
		return
	}
	record, ok := records[identity]
	response := map[string]interface{}{
		"identity":   identity,
		"resolution": resolution,
	}
	if ok {
		response["record"] = record
	}
	writeJSON(w, http.StatusOK, response)
}
