package inventory

// Item is one named inventory entry inside a snapshot.
// Items are values; a snapshot never mutates them after construction.
type Item struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Image     string  `json:"image"`
	Threshold float64 `json:"threshold"`
	Unit      string  `json:"unit"`
	IsLow     bool    `json:"isLow"`

	Distance  float64 `json:"distance"`
	Weight    float64 `json:"weight"`
	FoodLevel float64 `json:"foodLevel"`
	Timestamp int64   `json:"timestamp"`
	Interval  int64   `json:"interval"`
}

// Names returns the item names in order
func Names(items []Item) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}

// IDs returns the item ids in order
func IDs(items []Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
