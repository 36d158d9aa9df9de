package inbound

import (
	"context"
	"time"

	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/usage"
)

// InventoryService exposes the current snapshot and its derived queries
type InventoryService interface {
	Query(filter inventory.Filter) (*InventoryView, error)
	Item(id string) (inventory.Item, error)
	LowStock() ([]inventory.Item, error)
	Categories() ([]string, error)
	ValidateThreshold(id, input string) (*ThresholdCheck, error)
	// Watch streams the current state followed by every change until ctx ends
	Watch(ctx context.Context) <-chan InventoryState
}

// InventoryView is one filtered read of the snapshot
type InventoryView struct {
	Items     []inventory.Item          `json:"items"`
	Groups    []inventory.CategoryGroup `json:"groups"`
	Counts    inventory.Counts          `json:"counts"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// InventoryState is what a watcher receives: either items or an error message
type InventoryState struct {
	Items     []inventory.Item `json:"items,omitempty"`
	Error     string           `json:"error,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ThresholdCheck is the outcome of validating a threshold edit; nothing is stored
type ThresholdCheck struct {
	ItemID    string `json:"itemId"`
	Threshold int    `json:"threshold"`
	Applied   bool   `json:"applied"`
}

// UsageService projects depletion for single items
type UsageService interface {
	Estimate(ctx context.Context, itemID string) (*UsageReport, error)
}

// UsageReport is the projection plus the item it belongs to
type UsageReport struct {
	Item       inventory.Item   `json:"item"`
	Projection usage.Projection `json:"projection"`
	Source     string           `json:"source"`
}
