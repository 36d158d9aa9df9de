// Package testutils provides test data factories, mocks and database helpers
package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/pantrysense/v2/internal/domain/capture"
	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/recipe"
	"github.com/pantrysense/v2/internal/domain/user"
)

// Factory creates seeded test data so failures reproduce
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a new factory with a seeded faker
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Reading returns a plausible sensor payload
func (f *Factory) Reading() inventory.SensorReading {
	level := f.faker.Float64Range(0, 100)
	return inventory.SensorReading{
		Distance:  30 * (1 - level/100),
		Weight:    f.faker.Float64Range(0, 2000),
		FoodLevel: level,
		Timestamp: time.Now().UnixMilli(),
		Interval:  5000,
	}
}

// Readings returns n readings with strictly decreasing weight, oldest first
func (f *Factory) Readings(n int, start, step float64) []inventory.SensorReading {
	out := make([]inventory.SensorReading, 0, n)
	at := time.Now().Add(-time.Duration(n) * time.Hour)
	for i := 0; i < n; i++ {
		r := f.Reading()
		r.Weight = start - float64(i)*step
		r.Timestamp = at.Add(time.Duration(i) * time.Hour).UnixMilli()
		out = append(out, r)
	}
	return out
}

// Credentials returns a valid email and password pair
func (f *Factory) Credentials() user.Credentials {
	return user.Credentials{
		Email:    f.faker.Email(),
		Password: f.faker.Password(true, true, true, false, false, 12),
	}
}

// Identity returns a provider user record
func (f *Factory) Identity() *user.Identity {
	return &user.Identity{
		UID:         uuid.NewString(),
		Email:       f.faker.Email(),
		DisplayName: f.faker.Name(),
	}
}

// Capture returns stored capture metadata
func (f *Factory) Capture() *capture.Capture {
	c, err := capture.New(f.faker.Word()+".jpg", int64(f.faker.IntRange(1, 1<<20)))
	if err != nil {
		panic(err)
	}
	c.URL = "https://cdn.example.test/" + c.ObjectKey
	return c
}

// Item returns an inventory item with an isLow flag consistent with its weight
func (f *Factory) Item() inventory.Item {
	threshold := float64(f.faker.IntRange(50, 500))
	weight := f.faker.Float64Range(0, 1000)
	return inventory.Item{
		ID:        uuid.NewString(),
		Name:      f.faker.Noun(),
		Category:  f.faker.RandomString([]string{"Grains", "Vegetables", "Meat", "Spices", "Dairy"}),
		Image:     inventory.DefaultFoodImage,
		Threshold: threshold,
		Unit:      "g",
		IsLow:     weight < threshold,
		Weight:    weight,
		FoodLevel: f.faker.Float64Range(0, 100),
		Timestamp: time.Now().UnixMilli(),
		Interval:  5000,
	}
}

// Items returns n distinct items
func (f *Factory) Items(n int) []inventory.Item {
	items := make([]inventory.Item, 0, n)
	for i := 0; i < n; i++ {
		item := f.Item()
		item.ID = fmt.Sprintf("%d", i+1)
		items = append(items, item)
	}
	return items
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	r recipe.Recipe
}

// NewRecipeBuilder creates a new recipe builder with default values
func NewRecipeBuilder() *RecipeBuilder {
	faker := gofakeit.New(time.Now().UnixNano())
	return &RecipeBuilder{r: recipe.Recipe{
		ID:   uuid.NewString(),
		Name: faker.Sentence(2),
		Ingredients: []recipe.Ingredient{
			{Name: "Rice", Quantity: "200g", Available: true},
			{Name: "Onions", Quantity: "1 medium", Available: true},
		},
		Steps:           []string{"Prepare", "Cook", "Serve"},
		PreparationTime: 10,
		CookingTime:     15,
		Servings:        2,
		MatchScore:      100,
	}}
}

// WithID sets the recipe id
func (b *RecipeBuilder) WithID(id string) *RecipeBuilder {
	b.r.ID = id
	return b
}

// WithName sets the recipe name
func (b *RecipeBuilder) WithName(name string) *RecipeBuilder {
	b.r.Name = name
	return b
}

// WithIngredients replaces the ingredient list
func (b *RecipeBuilder) WithIngredients(ingredients ...recipe.Ingredient) *RecipeBuilder {
	b.r.Ingredients = ingredients
	return b
}

// WithSteps replaces the steps
func (b *RecipeBuilder) WithSteps(steps ...string) *RecipeBuilder {
	b.r.Steps = steps
	return b
}

// WithTimes sets preparation and cooking minutes
func (b *RecipeBuilder) WithTimes(prep, cook int) *RecipeBuilder {
	b.r.PreparationTime = prep
	b.r.CookingTime = cook
	return b
}

// WithScore sets the match score
func (b *RecipeBuilder) WithScore(score int) *RecipeBuilder {
	b.r.MatchScore = score
	return b
}

// Build returns the recipe
func (b *RecipeBuilder) Build() recipe.Recipe {
	return b.r.Clone()
}

// Ingredient is shorthand for an ingredient with a fixed quantity
func Ingredient(name string, available bool) recipe.Ingredient {
	return recipe.Ingredient{Name: name, Quantity: "1", Available: available}
}
