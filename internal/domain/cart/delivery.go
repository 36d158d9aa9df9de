package cart

import (
	"errors"
	"strings"
)

// ErrUnknownPartner is returned for delivery partners without a link
var ErrUnknownPartner = errors.New("unknown delivery partner")

// Partner is a grocery delivery app the cart can be handed off to
type Partner struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Partners returns the supported delivery partners
func Partners() []Partner {
	return []Partner{
		{Key: "zepto", Name: "Zepto", URL: "https://www.zeptonow.com/"},
		{Key: "blinkit", Name: "Blinkit", URL: "https://blinkit.com/"},
	}
}

// LookupPartner finds a partner by key, ignoring case
func LookupPartner(key string) (Partner, error) {
	for _, p := range Partners() {
		if strings.EqualFold(p.Key, key) {
			return p, nil
		}
	}
	return Partner{}, ErrUnknownPartner
}
