package cart

import "github.com/pantrysense/v2/internal/domain/inventory"

// Event is a state transition applied by Reduce
type Event interface {
	apply(State) State
}

// Reduce applies event to state and returns the new state
func Reduce(state State, event Event) State {
	if state.selections == nil {
		state.selections = map[string]int{}
	}
	return event.apply(state)
}

// Seed resets every selector to MinQuantity for the given low-stock items.
// Previous selectors are dropped; cart entries are kept.
type Seed struct {
	Items []inventory.Item
}

func (e Seed) apply(s State) State {
	selections := make(map[string]int, len(e.Items))
	for _, item := range e.Items {
		selections[item.ID] = MinQuantity
	}
	return State{selections: selections, entries: s.entries}
}

// Increment raises an item's selector by one
type Increment struct {
	ItemID string
}

func (e Increment) apply(s State) State {
	return s.withSelection(e.ItemID, s.Selected(e.ItemID)+1)
}

// Decrement lowers an item's selector by one, never below MinQuantity
type Decrement struct {
	ItemID string
}

func (e Decrement) apply(s State) State {
	current := s.Selected(e.ItemID)
	if current <= MinQuantity {
		return s
	}
	return s.withSelection(e.ItemID, current-1)
}

// Add puts the selected quantity of Item into the cart, merging with an
// existing entry for the same item
type Add struct {
	Item inventory.Item
}

func (e Add) apply(s State) State {
	qty := s.Selected(e.Item.ID)
	entries := make([]Entry, 0, len(s.entries)+1)
	merged := false
	for _, entry := range s.entries {
		if entry.Item.ID == e.Item.ID {
			entry.Quantity += qty
			merged = true
		}
		entries = append(entries, entry)
	}
	if !merged {
		entries = append(entries, Entry{Item: e.Item, Quantity: qty})
	}
	return State{selections: s.selections, entries: entries}
}

// Remove deletes an item's entry from the cart
type Remove struct {
	ItemID string
}

func (e Remove) apply(s State) State {
	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.Item.ID != e.ItemID {
			entries = append(entries, entry)
		}
	}
	return State{selections: s.selections, entries: entries}
}

// Clear empties the cart and keeps the selectors
type Clear struct{}

func (Clear) apply(s State) State {
	return State{selections: s.selections}
}
