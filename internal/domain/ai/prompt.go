// Package ai defines the prompts sent to text-generation providers
package ai

import (
	"fmt"
	"strings"
)

const (
	RecipeSystemPrompt     = "You are a helpful cooking assistant that generates recipes based on available ingredients."
	SuggestionSystemPrompt = "You are a helpful cooking assistant that suggests dishes based on available ingredients."

	// recipeFormat asks for the exact shape the recipe parser accepts
	recipeFormat = `Respond with ONLY a JSON array, no other text. Each element must have the form:
{"id":"1","name":"Dish","ingredients":[{"name":"Rice","quantity":"300g","available":true}],"steps":["Step"],"preparationTime":10,"cookingTime":20,"servings":2,"imageUrl":"","matchScore":80}`
)

// Generation defaults for recipe batches and single suggestions
const (
	DefaultTemperature     = 0.7
	RecipeMaxTokens        = 1000
	SuggestionMaxTokens    = 200
	DefaultRecipeBatchSize = 3
)

// RecipeRequest asks for a batch of recipes
type RecipeRequest struct {
	Ingredients []string `json:"ingredients"`
	Mood        string   `json:"mood,omitempty"`
}

// UserPrompt renders the user message for a recipe batch
func (r RecipeRequest) UserPrompt() string {
	prompt := fmt.Sprintf("Generate recipe suggestions using these ingredients: %s", strings.Join(r.Ingredients, ", "))
	if r.Mood != "" {
		prompt += moodSuffix(r.Mood)
	}
	return prompt + "\n\n" + recipeFormat
}

// SuggestionRequest asks for a single free-text dish idea
type SuggestionRequest struct {
	Ingredients []string `json:"ingredients"`
	Mood        string   `json:"mood,omitempty"`
}

// UserPrompt renders the user message for a suggestion
func (r SuggestionRequest) UserPrompt() string {
	prompt := fmt.Sprintf("Suggest a dish I can make with these ingredients: %s", strings.Join(r.Ingredients, ", "))
	if r.Mood != "" {
		prompt += moodSuffix(r.Mood)
	}
	return prompt
}

func moodSuffix(mood string) string {
	return fmt.Sprintf(". I'm in the mood for something %s", mood)
}
