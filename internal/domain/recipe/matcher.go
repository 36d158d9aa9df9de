package recipe

import (
	"math"
	"strings"
)

// IsAvailable reports whether an ingredient matches an inventory name.
// A match is a case-insensitive substring in either direction.
func IsAvailable(ingredient string, inventory []string) bool {
	needle := strings.ToLower(strings.TrimSpace(ingredient))
	if needle == "" {
		return false
	}
	for _, name := range inventory {
		have := strings.ToLower(strings.TrimSpace(name))
		if have == "" {
			continue
		}
		if strings.Contains(have, needle) || strings.Contains(needle, have) {
			return true
		}
	}
	return false
}

// MatchScore is round(100 * available / total). A recipe without
// ingredients scores 0.
func MatchScore(r Recipe) int {
	total := len(r.Ingredients)
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.AvailableCount()) / float64(total)))
}

// Match marks availability against the inventory names and recomputes the
// match score of every recipe. With no inventory names the availability flags
// supplied by the generator are kept and only the score is recomputed.
// The input slice is not modified.
func Match(recipes []Recipe, inventory []string) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		scored := r.Clone()
		if len(inventory) > 0 {
			for i := range scored.Ingredients {
				scored.Ingredients[i].Available = IsAvailable(scored.Ingredients[i].Name, inventory)
			}
		}
		scored.MatchScore = MatchScore(scored)
		out = append(out, scored)
	}
	return out
}

// Tiers holds recipes partitioned by match score
type Tiers struct {
	Great []Recipe `json:"great"`
	Good  []Recipe `json:"good"`
	Other []Recipe `json:"other"`
}

// Partition splits recipes into tiers, keeping input order inside each tier
func Partition(recipes []Recipe) Tiers {
	tiers := Tiers{
		Great: []Recipe{},
		Good:  []Recipe{},
		Other: []Recipe{},
	}
	for _, r := range recipes {
		switch TierFor(r.MatchScore) {
		case TierGreat:
			tiers.Great = append(tiers.Great, r)
		case TierGood:
			tiers.Good = append(tiers.Good, r)
		default:
			tiers.Other = append(tiers.Other, r)
		}
	}
	return tiers
}

// All concatenates the tiers in tier order
func (t Tiers) All() []Recipe {
	out := make([]Recipe, 0, t.Len())
	out = append(out, t.Great...)
	out = append(out, t.Good...)
	return append(out, t.Other...)
}

// Len returns the number of recipes across tiers
func (t Tiers) Len() int {
	return len(t.Great) + len(t.Good) + len(t.Other)
}
