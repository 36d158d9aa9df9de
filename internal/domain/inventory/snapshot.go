package inventory

import (
	"strconv"
	"strings"
	"time"
)

// Snapshot is the full item list derived from one push update.
// A new snapshot replaces the previous one wholesale.
type Snapshot struct {
	items   []Item
	reading SensorReading
	builtAt time.Time
}

// BuildSnapshot expands a sensor payload into the catalog's items.
// A nil reading means the channel delivered no data.
func BuildSnapshot(reading *SensorReading, catalog []CatalogEntry) (*Snapshot, error) {
	if reading == nil {
		return nil, ErrNoData
	}

	items := make([]Item, 0, len(catalog))
	for _, entry := range catalog {
		item := Item{
			ID:        entry.ID,
			Name:      entry.Name,
			Category:  entry.Category,
			Image:     entry.Image,
			Threshold: entry.Threshold,
			Unit:      entry.Unit,
			Distance:  reading.Distance,
			Weight:    reading.Weight,
			FoodLevel: reading.FoodLevel,
			Timestamp: reading.Timestamp,
			Interval:  reading.Interval,
		}
		if entry.Override != nil {
			item.Weight = entry.Override.Weight
			item.FoodLevel = entry.Override.FoodLevel
		}
		// isLow is derived from the weight actually assigned to the item.
		item.IsLow = item.Weight < item.Threshold
		items = append(items, item)
	}

	return &Snapshot{
		items:   items,
		reading: *reading,
		builtAt: time.Now(),
	}, nil
}

// Items returns a copy of the snapshot's items in catalog order
func (s *Snapshot) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Reading returns the payload the snapshot was built from
func (s *Snapshot) Reading() SensorReading {
	return s.reading
}

// BuiltAt returns when the snapshot was constructed
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

// Item finds an item by id
func (s *Snapshot) Item(id string) (Item, error) {
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return Item{}, ErrItemNotFound
}

// LowStockIDs returns the ids of low-stock items in order
func (s *Snapshot) LowStockIDs() []string {
	return IDs(LowStock(s.items))
}

// ValidateThreshold checks a threshold entered by the user.
// Thresholds are whole numbers of zero or more; the value is not applied anywhere.
func ValidateThreshold(input string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || value < 0 {
		return 0, ErrInvalidThreshold
	}
	return value, nil
}
