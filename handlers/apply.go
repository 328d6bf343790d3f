package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/reed-hollis/photoshelfbackend/config"
	"github.com/reed-hollis/photoshelfbackend/metadata"
	"github.com/reed-hollis/photoshelfbackend/ratings"
	"github.com/reed-hollis/photoshelfbackend/repository"
	"github.com/reed-hollis/photoshelfbackend/workers"
)

type ApplyHandler struct {
	Cfg     config.Config
	Ratings *repository.RatingRepository
	Loader  *metadata.SnapshotLoader
	Writer  ratings.FileRatingWriter
	Pool    *workers.WritebackPool
}

// ApplyResponse wraps the batch summary with the gate outcome so the UI can
// tell "nothing to do" apart from "blocked, resolve conflicts first".
type ApplyResponse struct {
	Blocked bool `json:"blocked"`
	ratings.ApplySummary
}

// Apply runs the batch reconciliation for a whole collection: per-photo
// authority is recomputed, write-backs fan out to files and store, and the
// overrule flags are bulk-reset once the batch settles. While any conflict
// remains the result is a defined no-op, not an error.
// POST /api/ratings/apply {"path": "rel/dir"}
func (ah *ApplyHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Path string `json:"path"`
	}
	if err := decodeJSONBody(r, &payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	absPath, relKey, err := resolveCollectionPath(ah.Cfg, payload.Path)
	if err != nil {
		WriteAPIError(w, http.StatusForbidden, "forbidden_path", "collection path is outside the photo root")
		return
	}

	stored, err := ah.Ratings.GetAll(relKey)
	if err != nil {
		log.Printf("Error loading ratings for %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to load ratings")
		return
	}
	snaps, err := ah.Loader.Load(r.Context(), absPath, stored)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "collection directory does not exist")
			return
		}
		log.Printf("Error loading snapshots for %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to load collection state")
		return
	}

	hasConflicts := ratings.HasConflicts(snaps)
	applier := ratings.Applier{
		Store:  ah.Ratings.ForCollection(relKey),
		Writer: ah.Writer,
		Pool:   ah.Pool,
	}
	summary := applier.Apply(r.Context(), snaps, hasConflicts)

	writeJSON(w, http.StatusOK, ApplyResponse{
		Blocked:      hasConflicts,
		ApplySummary: summary,
	})
}
