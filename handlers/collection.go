package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/facette/natsort"

	"github.com/reed-hollis/photoshelfbackend/config"
	"github.com/reed-hollis/photoshelfbackend/database"
	"github.com/reed-hollis/photoshelfbackend/metadata"
	"github.com/reed-hollis/photoshelfbackend/ratings"
	"github.com/reed-hollis/photoshelfbackend/realtime"
	"github.com/reed-hollis/photoshelfbackend/repository"
)

// PhotoInfo is one photo entry in a collection listing, carrying all three
// rating sources and the detector's verdict.
type PhotoInfo struct {
	FileName       string                 `json:"file_name"`
	Identity       string                 `json:"identity"`
	HasRaw         bool                   `json:"has_raw"`
	ModTime        int64                  `json:"mod_time"`
	StoredRating   *int                   `json:"stored_rating"`
	Overrule       bool                   `json:"overrule_file_rating"`
	JpgRating      *int                   `json:"jpg_rating"`
	RawRating      *int                   `json:"raw_rating"`
	RatingLabel    string                 `json:"rating_label,omitempty"`
	Classification ratings.Classification `json:"classification"`
}

// CollectionContents is the listing response for one collection directory.
type CollectionContents struct {
	Path          string      `json:"path"`
	SortOrder     string      `json:"sort_order"`
	Subfolders    []string    `json:"subfolders"`
	Photos        []PhotoInfo `json:"photos"`
	ConflictCount int         `json:"conflict_count"`
}

type CollectionHandler struct {
	Cfg         config.Config
	Ratings     repository.RatingStoreInterface
	Collections repository.CollectionRepositoryInterface
	Loader      *metadata.SnapshotLoader
	Hub         *realtime.Hub
}

// ListCollections returns every registered collection
func (ch *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := ch.Collections.ListAll()
	if err != nil {
		log.Printf("Error listing collections: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to list collections")
		return
	}
	writeJSON(w, http.StatusOK, collections)
}

// GetContents lists a collection directory with per-photo rating state.
// GET /api/collections/contents?path=rel/dir&sort=filename_nat
func (ch *CollectionHandler) GetContents(w http.ResponseWriter, r *http.Request) {
	absPath, relKey, err := resolveCollectionPath(ch.Cfg, r.URL.Query().Get("path"))
	if err != nil {
		WriteAPIError(w, http.StatusForbidden, "forbidden_path", "collection path is outside the photo root")
		return
	}

	collection, err := ch.Collections.GetOrCreateByPath(relKey)
	if err != nil {
		log.Printf("Error registering collection %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to register collection")
		return
	}
	if err := ch.Collections.TouchLastOpened(collection.ID); err != nil {
		log.Printf("Error touching collection %s: %v", relKey, err)
	}

	sortOrder := r.URL.Query().Get("sort")
	if sortOrder == "" {
		sortOrder = collection.SortOrder
	}
	if !database.IsValidSortOrder(sortOrder) {
		WriteAPIError(w, http.StatusBadRequest, "invalid_sort", "unknown sort order: "+sortOrder)
		return
	}

	snaps, err := ch.loadSnapshots(r, absPath, relKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "collection directory does not exist")
			return
		}
		log.Printf("Error loading snapshots for %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to load collection state")
		return
	}

	photos := make([]PhotoInfo, 0, len(snaps))
	conflictCount := 0
	for _, s := range snaps {
		class := s.Classify()
		if class.IsConflict() {
			conflictCount++
		}
		info := PhotoInfo{
			FileName:       s.FileName,
			Identity:       s.Identity,
			HasRaw:         s.RawPath != "",
			ModTime:        s.ModTime,
			StoredRating:   s.Stored,
			Overrule:       s.Overrule,
			JpgRating:      s.Jpg,
			RawRating:      s.Raw,
			Classification: class,
		}
		if s.Stored != nil {
			info.RatingLabel = ratings.Label(*s.Stored)
		}
		photos = append(photos, info)
	}
	sortPhotos(photos, sortOrder)

	subfolders, err := listSubfolders(absPath, ch.Cfg.RawSubdir)
	if err != nil {
		log.Printf("Error listing subfolders of %s: %v", relKey, err)
	}

	writeJSON(w, http.StatusOK, CollectionContents{
		Path:          relKey,
		SortOrder:     sortOrder,
		Subfolders:    subfolders,
		Photos:        photos,
		ConflictCount: conflictCount,
	})
}

// PhotoDetail is the response for a single active photo.
type PhotoDetail struct {
	PhotoInfo
	Metadata *metadata.Metadata `json:"metadata,omitempty"`
	Conflict *ratings.Conflict  `json:"conflict,omitempty"`
}

// GetPhoto serves the detail view for the photo the user just activated.
// Detection runs here: if the photo's sources disagree, the conflict
// descriptor is included and broadcast so the UI can present the choices.
// GET /api/collections/photo?path=rel/dir&file=img1.jpg
func (ch *CollectionHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	absPath, relKey, err := resolveCollectionPath(ch.Cfg, r.URL.Query().Get("path"))
	if err != nil {
		WriteAPIError(w, http.StatusForbidden, "forbidden_path", "collection path is outside the photo root")
		return
	}
	fileName := r.URL.Query().Get("file")
	if fileName == "" || strings.ContainsAny(fileName, "/\\") {
		WriteAPIError(w, http.StatusBadRequest, "invalid_file", "file must be a bare file name")
		return
	}

	snaps, err := ch.loadSnapshots(r, absPath, relKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "collection directory does not exist")
			return
		}
		log.Printf("Error loading snapshots for %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to load collection state")
		return
	}

	identity := ratings.DeriveIdentity(fileName)
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
	detail := PhotoDetail{
		PhotoInfo: PhotoInfo{
			FileName:       snap.FileName,
			Identity:       snap.Identity,
			HasRaw:         snap.RawPath != "",
			ModTime:        snap.ModTime,
			StoredRating:   snap.Stored,
			Overrule:       snap.Overrule,
			JpgRating:      snap.Jpg,
			RawRating:      snap.Raw,
			Classification: class,
		},
	}
	if snap.Stored != nil {
		detail.RatingLabel = ratings.Label(*snap.Stored)
	}

	if snap.JpgPath != "" {
		meta, metaErr := metadata.ExtractImageMetadata(snap.JpgPath)
		if metaErr != nil {
			log.Printf("Error extracting metadata for %s: %v", snap.JpgPath, metaErr)
		} else {
			meta.Rating = snap.Jpg
			detail.Metadata = meta
		}
	}

	if conflict, ok := ratings.ConflictFor(*snap); ok && conflict.Kind != ratings.ClassJpgRawMismatch {
		detail.Conflict = &conflict
		ch.Hub.BroadcastConflict(relKey, conflict)
	}

	writeJSON(w, http.StatusOK, detail)
}

// UpdateSortOrder persists a collection's sort order.
// PUT /api/collections/sort_order {"path": "...", "sort_order": "date_desc"}
func (ch *CollectionHandler) UpdateSortOrder(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Path      string `json:"path"`
		SortOrder string `json:"sort_order"`
	}
	if err := decodeJSONBody(r, &payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if !database.IsValidSortOrder(payload.SortOrder) {
		WriteAPIError(w, http.StatusBadRequest, "invalid_sort", "unknown sort order: "+payload.SortOrder)
		return
	}

	_, relKey, err := resolveCollectionPath(ch.Cfg, payload.Path)
	if err != nil {
		WriteAPIError(w, http.StatusForbidden, "forbidden_path", "collection path is outside the photo root")
		return
	}
	collection, err := ch.Collections.GetOrCreateByPath(relKey)
	if err != nil {
		log.Printf("Error registering collection %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to register collection")
		return
	}
	if err := ch.Collections.UpdateSortOrder(collection.ID, payload.SortOrder); err != nil {
		log.Printf("Error updating sort order for %s: %v", relKey, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to update sort order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": relKey, "sort_order": payload.SortOrder})
}

func (ch *CollectionHandler) loadSnapshots(r *http.Request, absPath, relKey string) ([]ratings.Snapshot, error) {
	stored, err := ch.Ratings.GetAll(relKey)
	if err != nil {
		return nil, err
	}
	return ch.Loader.Load(r.Context(), absPath, stored)
}

func sortPhotos(photos []PhotoInfo, order string) {
	switch order {
	case database.SortFilenameNat:
		sort.Slice(photos, func(i, j int) bool {
			return natsort.Compare(photos[i].FileName, photos[j].FileName)
		})
	case database.SortDateAsc:
		sort.Slice(photos, func(i, j int) bool { return photos[i].ModTime < photos[j].ModTime })
	case database.SortDateDesc:
		sort.Slice(photos, func(i, j int) bool { return photos[i].ModTime > photos[j].ModTime })
	case database.SortRatingDesc:
		sort.Slice(photos, func(i, j int) bool {
			ri, rj := 0, 0
			if photos[i].StoredRating != nil {
				ri = *photos[i].StoredRating
			}
			if photos[j].StoredRating != nil {
				rj = *photos[j].StoredRating
			}
			if ri != rj {
				return ri > rj
			}
			return strings.ToLower(photos[i].FileName) < strings.ToLower(photos[j].FileName)
		})
	default: // SortFilenameAsc
		sort.Slice(photos, func(i, j int) bool {
			return strings.ToLower(photos[i].FileName) < strings.ToLower(photos[j].FileName)
		})
	}
}

func listSubfolders(absPath, rawSubdir string) ([]string, error) {
	entries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, err
	}
	subfolders := make([]string, 0)
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || name == rawSubdir || strings.HasPrefix(name, ".") {
			continue
		}
		subfolders = append(subfolders, filepath.ToSlash(name))
	}
	sort.Strings(subfolders)
	return subfolders, nil
}
