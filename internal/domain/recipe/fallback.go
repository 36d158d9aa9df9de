package recipe

// FallbackSuggestion is returned when the suggestion call fails or answers empty
const FallbackSuggestion = "Based on your ingredients, I suggest making a delicious curry today!"

// FallbackRecipes returns the built-in recipe set served whenever generation
// fails. Each call returns fresh slices.
func FallbackRecipes() []Recipe {
	return []Recipe{
		{
			ID:   "1",
			Name: "Butter Chicken",
			Ingredients: []Ingredient{
				{Name: "Chicken", Quantity: "500g", Available: true},
				{Name: "Butter", Quantity: "100g", Available: true},
				{Name: "Tomato Puree", Quantity: "200g", Available: true},
				{Name: "Cream", Quantity: "100ml", Available: false},
				{Name: "Garam Masala", Quantity: "2 tsp", Available: true},
			},
			Steps: []string{
				"Marinate chicken with yogurt and spices for 30 minutes",
				"Heat butter in a pan and cook chicken until golden",
				"Add tomato puree and simmer for 15 minutes",
				"Stir in cream and garam masala",
				"Simmer until chicken is cooked through and sauce thickens",
			},
			PreparationTime: 40,
			CookingTime:     30,
			Servings:        4,
			ImageURL:        "https://images.pexels.com/photos/7625056/pexels-photo-7625056.jpeg",
			MatchScore:      85,
		},
		{
			ID:   "2",
			Name: "Vegetable Biryani",
			Ingredients: []Ingredient{
				{Name: "Basmati Rice", Quantity: "300g", Available: true},
				{Name: "Mixed Vegetables", Quantity: "400g", Available: true},
				{Name: "Onions", Quantity: "2 medium", Available: true},
				{Name: "Biryani Masala", Quantity: "2 tbsp", Available: true},
				{Name: "Yogurt", Quantity: "100g", Available: false},
			},
			Steps: []string{
				"Soak rice for 30 minutes, then par-boil it",
				"Sauté onions until golden brown",
				"Add vegetables and spices, cook for 5 minutes",
				"Layer par-boiled rice and vegetable mixture",
				"Cover and cook on low heat for 15-20 minutes",
			},
			PreparationTime: 45,
			CookingTime:     30,
			Servings:        4,
			ImageURL:        "https://images.pexels.com/photos/7625089/pexels-photo-7625089.jpeg",
			MatchScore:      92,
		},
		{
			ID:   "3",
			Name: "Masala Dosa",
			Ingredients: []Ingredient{
				{Name: "Dosa Batter", Quantity: "500g", Available: true},
				{Name: "Potatoes", Quantity: "4 medium", Available: true},
				{Name: "Onions", Quantity: "2 medium", Available: true},
				{Name: "Green Chillies", Quantity: "3", Available: true},
				{Name: "Mustard Seeds", Quantity: "1 tsp", Available: true},
			},
			Steps: []string{
				"Boil and mash potatoes",
				"Temper mustard seeds, add onions and green chillies",
				"Add mashed potatoes and mix well",
				"Spread dosa batter on a hot pan",
				"Add potato filling and fold the dosa",
			},
			PreparationTime: 20,
			CookingTime:     15,
			Servings:        3,
			ImageURL:        "https://images.pexels.com/photos/5560763/pexels-photo-5560763.jpeg",
			MatchScore:      78,
		},
	}
}
