package user

import "github.com/pantrysense/v2/internal/domain/cart"

// Preferences is the fixed set of user toggles
type Preferences struct {
	DarkMode          bool   `json:"darkMode" mapstructure:"dark_mode"`
	Notifications     bool   `json:"notifications" mapstructure:"notifications"`
	StockAlerts       bool   `json:"stockAlerts" mapstructure:"stock_alerts"`
	RecipeSuggestions bool   `json:"recipeSuggestions" mapstructure:"recipe_suggestions"`
	DefaultGrocery    string `json:"defaultGrocery" mapstructure:"default_grocery"`
}

// DefaultPreferences returns the settings a new user starts with
func DefaultPreferences() Preferences {
	return Preferences{
		DarkMode:          false,
		Notifications:     true,
		StockAlerts:       true,
		RecipeSuggestions: true,
		DefaultGrocery:    "zepto",
	}
}

// Validate checks that the grocery partner is known
func (p Preferences) Validate() error {
	if _, err := cart.LookupPartner(p.DefaultGrocery); err != nil {
		return ErrUnknownGrocery
	}
	return nil
}
