package handlers

import (
	"net/http"

	"github.com/pantrysense/v2/internal/infrastructure/http/response"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"go.uber.org/zap"
)

// PreferenceHandlers reads and writes the signed-in user's preferences
type PreferenceHandlers struct {
	preferences inbound.PreferencesService
	logger      *zap.Logger
}

// NewPreferenceHandlers creates a new preference handlers instance
func NewPreferenceHandlers(preferences inbound.PreferencesService, logger *zap.Logger) *PreferenceHandlers {
	return &PreferenceHandlers{preferences: preferences, logger: logger.Named("preference-handlers")}
}

// Get handles GET /api/v1/preferences
func (h *PreferenceHandlers) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := sessionKey(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	prefs, err := h.preferences.Get(r.Context(), uid)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, prefs, "")
}

// Update handles PUT /api/v1/preferences. Fields left out of the body keep
// their current value.
func (h *PreferenceHandlers) Update(w http.ResponseWriter, r *http.Request) {
	uid, err := sessionKey(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	current, err := h.preferences.Get(r.Context(), uid)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	prefs := *current
	if err := decodeJSON(w, r, &prefs); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	updated, err := h.preferences.Update(r.Context(), uid, prefs)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, updated, "Preferences saved")
}
