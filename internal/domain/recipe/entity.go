// Package recipe holds the recipe model and the matching rules that score,
// filter and tier generated recipes against the current inventory.
package recipe

// Ingredient is one line of a recipe
type Ingredient struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	Available bool   `json:"available"`
}

// Recipe is a generated recipe. Times are in minutes.
type Recipe struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Ingredients     []Ingredient `json:"ingredients"`
	Steps           []string     `json:"steps"`
	PreparationTime int          `json:"preparationTime"`
	CookingTime     int          `json:"cookingTime"`
	Servings        int          `json:"servings"`
	ImageURL        string       `json:"imageUrl,omitempty"`
	MatchScore      int          `json:"matchScore"`
}

// TotalTime returns preparation plus cooking minutes
func (r Recipe) TotalTime() int {
	return r.PreparationTime + r.CookingTime
}

// AvailableCount returns how many ingredients are marked available
func (r Recipe) AvailableCount() int {
	n := 0
	for _, ing := range r.Ingredients {
		if ing.Available {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers can rescore without sharing slices
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	out.Steps = append([]string(nil), r.Steps...)
	return out
}
