package inventory

// Override replaces the shared sensor weight and fill level for a demo item
type Override struct {
	Weight    float64
	FoodLevel float64
}

// CatalogEntry is the fixed identity record merged with each sensor payload
type CatalogEntry struct {
	ID        string
	Name      string
	Category  string
	Image     string
	Threshold float64
	Unit      string
	// Override is nil for the live item, which reflects the raw sensor values.
	Override *Override
}

// DefaultCatalog returns the eight kitchen items the sensor payload expands into.
// Only the first entry is live; the rest overlay static demo values.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{
			ID:        "1",
			Name:      "Rice",
			Category:  "Grains",
			Image:     "https://images.pexels.com/photos/4198050/pexels-photo-4198050.jpeg",
			Threshold: 500,
			Unit:      "g",
		},
		{
			ID:        "2",
			Name:      "Wheat Flour",
			Category:  "Grains",
			Image:     "https://images.pexels.com/photos/5765/flour-food-kitchen-bakery.jpg",
			Threshold: 300,
			Unit:      "g",
			Override:  &Override{Weight: 1200, FoodLevel: 80},
		},
		{
			ID:        "3",
			Name:      "Onions",
			Category:  "Vegetables",
			Image:     "https://images.pexels.com/photos/4197447/pexels-photo-4197447.jpeg",
			Threshold: 200,
			Unit:      "g",
			Override:  &Override{Weight: 150, FoodLevel: 15},
		},
		{
			ID:        "4",
			Name:      "Tomatoes",
			Category:  "Vegetables",
			Image:     "https://images.pexels.com/photos/1327838/pexels-photo-1327838.jpeg",
			Threshold: 300,
			Unit:      "g",
			Override:  &Override{Weight: 450, FoodLevel: 65},
		},
		{
			ID:        "5",
			Name:      "Chicken",
			Category:  "Meat",
			Image:     "https://images.pexels.com/photos/2338407/pexels-photo-2338407.jpeg",
			Threshold: 400,
			Unit:      "g",
			Override:  &Override{Weight: 750, FoodLevel: 75},
		},
		{
			ID:        "6",
			Name:      "Garlic",
			Category:  "Spices",
			Image:     "https://images.pexels.com/photos/4197442/pexels-photo-4197442.jpeg",
			Threshold: 50,
			Unit:      "g",
			Override:  &Override{Weight: 30, FoodLevel: 20},
		},
		{
			ID:        "7",
			Name:      "Turmeric",
			Category:  "Spices",
			Image:     "https://images.pexels.com/photos/4198762/pexels-photo-4198762.jpeg",
			Threshold: 30,
			Unit:      "g",
			Override:  &Override{Weight: 45, FoodLevel: 60},
		},
		{
			ID:        "8",
			Name:      "Milk",
			Category:  "Dairy",
			Image:     "https://images.pexels.com/photos/2064359/pexels-photo-2064359.jpeg",
			Threshold: 200,
			Unit:      "ml",
			Override:  &Override{Weight: 450, FoodLevel: 90},
		},
	}
}

// LiveItemID returns the id of the first entry without an override
func LiveItemID(catalog []CatalogEntry) (string, bool) {
	for _, entry := range catalog {
		if entry.Override == nil {
			return entry.ID, true
		}
	}
	return "", false
}
