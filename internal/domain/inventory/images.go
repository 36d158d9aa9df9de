package inventory

import "strings"

// DefaultFoodImage is used when no picture is known for a food name
const DefaultFoodImage = "https://images.pexels.com/photos/1640774/pexels-photo-1640774.jpeg"

var foodImages = map[string]string{
	"rice":     "https://images.pexels.com/photos/4198050/pexels-photo-4198050.jpeg",
	"chicken":  "https://images.pexels.com/photos/2338407/pexels-photo-2338407.jpeg",
	"tomatoes": "https://images.pexels.com/photos/1327838/pexels-photo-1327838.jpeg",
	"onions":   "https://images.pexels.com/photos/4197447/pexels-photo-4197447.jpeg",
	"potatoes": "https://images.pexels.com/photos/144248/potatoes-vegetables-erdfrucht-144248.jpeg",
	"garlic":   "https://images.pexels.com/photos/4197442/pexels-photo-4197442.jpeg",
	"flour":    "https://images.pexels.com/photos/5765/flour-food-kitchen-bakery.jpg",
	"oil":      "https://images.pexels.com/photos/725998/pexels-photo-725998.jpeg",
	"salt":     "https://images.pexels.com/photos/531247/pexels-photo-531247.jpeg",
	"sugar":    "https://images.pexels.com/photos/1109087/pexels-photo-1109087.jpeg",
}

// ImageFor looks a food name up in the known picture set, falling back to
// DefaultFoodImage. The lookup is an exact match on the lowercased name.
func ImageFor(foodName string) string {
	if url, ok := foodImages[strings.ToLower(strings.TrimSpace(foodName))]; ok {
		return url
	}
	return DefaultFoodImage
}
