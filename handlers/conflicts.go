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
)

type ConflictHandler struct {
	Cfg     config.Config
	Ratings repository.RatingStoreInterface
	Loader  *metadata.SnapshotLoader
}

// ConflictListing is the response for a collection's open conflicts.
type ConflictListing struct {
	Path         string             `json:"path"`
	Conflicts    []ratings.Conflict `json:"conflicts"`
	HasConflicts bool               `json:"has_conflicts"`
}

// ListConflicts recomputes the conflict set of a collection on demand.
// Conflicts are derived facts, never persisted; resolving one (or the
// sources coming back into agreement) makes it disappear from this listing.
// GET /api/ratings/conflicts?path=rel/dir
func (ch *ConflictHandler) ListConflicts(w http.ResponseWriter, r *http.Request) {
	absPath, relKey, err := resolveCollectionPath(ch.Cfg, r.URL.Query().Get("path"))
	if err != nil {
		WriteAPIError(w, http.StatusForbidden, "forbidden_path", "collection path is outside the photo root")
		return
	}

	stored, err := ch.Ratings.GetAll(relKey)
	if err != nil {
		log.Printf("Error loading ratings for %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to load ratings")
		return
	}
	snaps, err := ch.Loader.Load(r.Context(), absPath, stored)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "collection directory does not exist")
			return
		}
		log.Printf("Error loading snapshots for %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to load collection state")
		return
	}

	conflicts := ratings.Conflicts(snaps)
	writeJSON(w, http.StatusOK, ConflictListing{
		Path:         relKey,
		Conflicts:    conflicts,
		HasConflicts: len(conflicts) > 0,
	})
}
