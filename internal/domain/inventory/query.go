package inventory

import "strings"

// CategoryGroup is one category and its items in snapshot order
type CategoryGroup struct {
	Category string `json:"category"`
	Items    []Item `json:"items"`
}

// Counts summarises a list of items
type Counts struct {
	Total      int `json:"total"`
	LowStock   int `json:"lowStock"`
	Categories int `json:"categories"`
}

// Filter combines the search and category filters; both must match
type Filter struct {
	Search   string
	Category string
}

// Apply runs both filters over items
func (f Filter) Apply(items []Item) []Item {
	return FilterByCategory(FilterBySearch(items, f.Search), f.Category)
}

// GroupByCategory groups items by category. Groups appear in order of first
// occurrence and each keeps the input order of its items.
func GroupByCategory(items []Item) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, CategoryGroup{Category: item.Category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// Flatten concatenates groups back into a single list
func Flatten(groups []CategoryGroup) []Item {
	var items []Item
	for _, group := range groups {
		items = append(items, group.Items...)
	}
	return items
}

// Categories returns the distinct categories in order of first occurrence
func Categories(items []Item) []string {
	groups := GroupByCategory(items)
	categories := make([]string, 0, len(groups))
	for _, group := range groups {
		categories = append(categories, group.Category)
	}
	return categories
}

// FilterBySearch keeps items whose name contains query, ignoring case.
// An empty query keeps everything.
func FilterBySearch(items []Item, query string) []Item {
	if query == "" {
		return items
	}
	needle := strings.ToLower(query)
	var out []Item
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			out = append(out, item)
		}
	}
	return out
}

// FilterByCategory keeps items in category. An empty category keeps everything.
func FilterByCategory(items []Item, category string) []Item {
	if category == "" {
		return items
	}
	var out []Item
	for _, item := range items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// LowStock keeps the items flagged as low
func LowStock(items []Item) []Item {
	var out []Item
	for _, item := range items {
		if item.IsLow {
			out = append(out, item)
		}
	}
	return out
}

// Count computes the summary counts for items
func Count(items []Item) Counts {
	return Counts{
		Total:      len(items),
		LowStock:   len(LowStock(items)),
		Categories: len(Categories(items)),
	}
}
