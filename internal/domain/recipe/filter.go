package recipe

import "strings"

// Filter combines a name search with a mood; a recipe must pass both
type Filter struct {
	Search string
	Mood   Mood
}

// Matches reports whether r passes the filter
func (f Filter) Matches(r Recipe) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.Search)) {
		return false
	}
	return f.Mood.Allows(r)
}

// Apply keeps the recipes passing the filter, in order
func (f Filter) Apply(recipes []Recipe) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// FindByID returns the recipe with id from recipes
func FindByID(recipes []Recipe, id string) (Recipe, error) {
	for _, r := range recipes {
		if r.ID == id {
			return r, nil
		}
	}
	return Recipe{}, ErrRecipeNotFound
}
