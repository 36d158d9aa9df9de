package inventory

import "github.com/pantrysense/v2/internal/domain/shared"

const (
	EventSnapshotReplaced = "inventory.snapshot_replaced"
	EventLowStockChanged  = "inventory.low_stock_changed"
	EventFeedFailed       = "inventory.feed_failed"
)

// SnapshotReplacedEvent is raised every time a push replaces the snapshot
type SnapshotReplacedEvent struct {
	shared.BaseEvent
	ItemCount int
	LowStock  int
}

// LowStockChangedEvent is raised when the set of low-stock ids differs from
// the previous snapshot
type LowStockChangedEvent struct {
	shared.BaseEvent
	Items []Item
}

// FeedFailedEvent is raised when the channel reports no data or a transport error
type FeedFailedEvent struct {
	shared.BaseEvent
	Reason string
}

// NewSnapshotReplacedEvent builds the event for snapshot s
func NewSnapshotReplacedEvent(s *Snapshot) SnapshotReplacedEvent {
	items := s.Items()
	return SnapshotReplacedEvent{
		BaseEvent: shared.NewBaseEvent(EventSnapshotReplaced),
		ItemCount: len(items),
		LowStock:  len(LowStock(items)),
	}
}

// NewLowStockChangedEvent builds the event carrying the new low-stock items
func NewLowStockChangedEvent(items []Item) LowStockChangedEvent {
	return LowStockChangedEvent{
		BaseEvent: shared.NewBaseEvent(EventLowStockChanged),
		Items:     items,
	}
}

// NewFeedFailedEvent builds the event for a failed update
func NewFeedFailedEvent(reason string) FeedFailedEvent {
	return FeedFailedEvent{
		BaseEvent: shared.NewBaseEvent(EventFeedFailed),
		Reason:    reason,
	}
}

// SameIDs reports whether two id lists hold the same ids in the same order
func SameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
