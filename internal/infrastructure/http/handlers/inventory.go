package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/infrastructure/http/response"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"go.uber.org/zap"
)

// InventoryHandlers serves reads of the live snapshot
type InventoryHandlers struct {
	inventory inbound.InventoryService
	usage     inbound.UsageService
	logger    *zap.Logger
}

// NewInventoryHandlers creates a new inventory handlers instance
func NewInventoryHandlers(inv inbound.InventoryService, usage inbound.UsageService, logger *zap.Logger) *InventoryHandlers {
	return &InventoryHandlers{inventory: inv, usage: usage, logger: logger.Named("inventory-handlers")}
}

// List handles GET /api/v1/inventory?search=&category=
func (h *InventoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.inventory.Query(inventory.Filter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, view, "")
}

// Categories handles GET /api/v1/inventory/categories
func (h *InventoryHandlers) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.inventory.Categories()
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, categories, "")
}

// LowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandlers) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.LowStock()
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if items == nil {
		items = []inventory.Item{}
	}
	response.OK(w, http.StatusOK, items, "")
}

// Get handles GET /api/v1/inventory/{id}
func (h *InventoryHandlers) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.inventory.Item(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, item, "")
}

// Usage handles GET /api/v1/inventory/{id}/usage
func (h *InventoryHandlers) Usage(w http.ResponseWriter, r *http.Request) {
	report, err := h.usage.Estimate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, report, "")
}

// ThresholdRequest carries a threshold edit. The value may arrive as a JSON
// number or as the raw text the user typed.
type ThresholdRequest struct {
	Threshold json.RawMessage `json:"threshold"`
}

func (t ThresholdRequest) input() string {
	var s string
	if err := json.Unmarshal(t.Threshold, &s); err == nil {
		return s
	}
	return string(t.Threshold)
}

// Threshold handles POST /api/v1/inventory/{id}/threshold. The edit is only
// validated; the snapshot is never changed.
func (h *InventoryHandlers) Threshold(w http.ResponseWriter, r *http.Request) {
	var req ThresholdRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	check, err := h.inventory.ValidateThreshold(chi.URLParam(r, "id"), req.input())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, check, "Threshold is valid")
}
