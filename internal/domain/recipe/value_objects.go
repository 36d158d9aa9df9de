package recipe

import (
	"fmt"
	"strings"
)

// Mood selects which recipes suit the user right now
type Mood string

const (
	MoodAll        Mood = "All"
	MoodQuick      Mood = "Quick"
	MoodEasy       Mood = "Easy"
	MoodVegetarian Mood = "Vegetarian"
	MoodSpicy      Mood = "Spicy"
)

const (
	// QuickMaxMinutes bounds preparation plus cooking time for the Quick mood
	QuickMaxMinutes = 30
	// EasyMaxSteps bounds the step count for the Easy mood
	EasyMaxSteps = 5
)

// nonVegetarianTerms are matched as lowercase substrings of ingredient names
var nonVegetarianTerms = []string{"chicken", "beef", "pork", "fish"}

// Moods lists every mood in display order
func Moods() []Mood {
	return []Mood{MoodAll, MoodQuick, MoodEasy, MoodVegetarian, MoodSpicy}
}

// ParseMood parses a mood name case-insensitively. Empty means All.
func ParseMood(s string) (Mood, error) {
	if strings.TrimSpace(s) == "" {
		return MoodAll, nil
	}
	for _, m := range Moods() {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMood, s)
}

// Allows reports whether r passes the mood filter
func (m Mood) Allows(r Recipe) bool {
	switch m {
	case MoodQuick:
		return r.TotalTime() <= QuickMaxMinutes
	case MoodEasy:
		return len(r.Steps) <= EasyMaxSteps
	case MoodVegetarian:
		for _, ing := range r.Ingredients {
			name := strings.ToLower(ing.Name)
			for _, term := range nonVegetarianTerms {
				if strings.Contains(name, term) {
					return false
				}
			}
		}
		return true
	case MoodSpicy:
		// Spicy has no rule yet and lets every recipe through.
		return true
	default:
		return true
	}
}

// Tier buckets recipes by match score
type Tier string

const (
	TierGreat Tier = "great"
	TierGood  Tier = "good"
	TierOther Tier = "other"
)

const (
	GreatMinScore = 80
	GoodMinScore  = 50
)

// TierFor returns the tier for a match score
func TierFor(score int) Tier {
	switch {
	case score >= GreatMinScore:
		return TierGreat
	case score >= GoodMinScore:
		return TierGood
	default:
		return TierOther
	}
}
