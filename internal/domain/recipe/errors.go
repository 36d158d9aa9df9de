package recipe

import "errors"

// Domain errors for recipe operations

var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrUnknownMood    = errors.New("unknown mood")
	ErrEmptyBatch     = errors.New("generator returned no recipes")
)
