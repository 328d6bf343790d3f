package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/reed-hollis/photoshelfbackend/repository"
)

type PreferenceHandler struct {
	Preferences repository.PreferenceRepositoryInterface
}

// ListPreferences returns every stored UI preference.
// GET /api/preferences
func (ph *PreferenceHandler) ListPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := ph.Preferences.ListAll()
	if err != nil {
		log.Printf("Error listing preferences: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to list preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// GetPreference returns a single preference by key.
// GET /api/preferences/{key}
func (ph *PreferenceHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	pref, err := ph.Preferences.Get(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "no such preference")
			return
		}
		log.Printf("Error getting preference %s: %v", key, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to get preference")
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

// SetPreference creates or replaces one preference value.
// PUT /api/preferences {"key": "active_folder", "value": "2024/road-trip"}
func (ph *PreferenceHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := decodeJSONBody(r, &payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if payload.Key == "" {
		WriteAPIError(w, http.StatusBadRequest, "invalid_key", "preference key must not be empty")
		return
	}

	if err := ph.Preferences.Set(payload.Key, payload.Value); err != nil {
		log.Printf("Error setting preference %s: %v", payload.Key, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to set preference")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": payload.Key, "value": payload.Value})
}
