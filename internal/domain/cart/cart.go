// Package cart implements the shopping cart as a pure reducer over
// immutable state.
package cart

import (
	"github.com/pantrysense/v2/internal/domain/inventory"
)

// MinQuantity is the lower bound of every quantity selector
const MinQuantity = 1

// Entry pairs an item with the quantity to buy
type Entry struct {
	Item     inventory.Item `json:"item"`
	Quantity int            `json:"quantity"`
}

// State is the cart plus the per-item quantity selectors.
// Values of State are never modified in place; Reduce returns a new one.
type State struct {
	selections map[string]int
	entries    []Entry
}

// Empty returns a cart with no selectors and no entries
func Empty() State {
	return State{selections: map[string]int{}}
}

// Selected returns the current selector value for an item, MinQuantity when unset
func (s State) Selected(itemID string) int {
	if q, ok := s.selections[itemID]; ok {
		return q
	}
	return MinQuantity
}

// Selections returns a copy of the selector map
func (s State) Selections() map[string]int {
	out := make(map[string]int, len(s.selections))
	for k, v := range s.selections {
		out[k] = v
	}
	return out
}

// Entries returns a copy of the cart entries in insertion order
func (s State) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Entry returns the cart entry for an item
func (s State) Entry(itemID string) (Entry, bool) {
	for _, e := range s.entries {
		if e.Item.ID == itemID {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of cart entries
func (s State) Len() int {
	return len(s.entries)
}

func (s State) withSelection(itemID string, q int) State {
	next := s.Selections()
	next[itemID] = q
	return State{selections: next, entries: s.entries}
}
