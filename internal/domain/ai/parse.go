package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pantrysense/v2/internal/domain/recipe"
)

// ErrNoJSON is returned when a completion carries no JSON payload
var ErrNoJSON = errors.New("completion contains no JSON")

// ExtractJSON pulls the outermost JSON array or object out of model output,
// dropping markdown fences and any prose around it.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return "", ErrNoJSON
	}
	closer := "]"
	if text[start] == '{' {
		closer = "}"
	}
	end := strings.LastIndex(text, closer)
	if end <= start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

// ParseRecipes decodes a recipe batch from model output. Both a bare array
// and an object with a "recipes" field are accepted. Missing ids are filled
// with the 1-based position.
func ParseRecipes(text string) ([]recipe.Recipe, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var recipes []recipe.Recipe
	if strings.HasPrefix(raw, "{") {
		var wrapped struct {
			Recipes []recipe.Recipe `json:"recipes"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return nil, fmt.Errorf("decode recipe object: %w", err)
		}
		recipes = wrapped.Recipes
	} else if err := json.Unmarshal([]byte(raw), &recipes); err != nil {
		return nil, fmt.Errorf("decode recipe array: %w", err)
	}

	if len(recipes) == 0 {
		return nil, recipe.ErrEmptyBatch
	}
	for i := range recipes {
		if recipes[i].ID == "" {
			recipes[i].ID = fmt.Sprintf("%d", i+1)
		}
	}
	return recipes, nil
}
