package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pantrysense/v2/internal/infrastructure/http/response"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"go.uber.org/zap"
)

// RecipeHandlers handles recipe generation and browsing
type RecipeHandlers struct {
	recipes inbound.RecipeService
	logger  *zap.Logger
}

// NewRecipeHandlers creates a new recipe handlers instance
func NewRecipeHandlers(recipes inbound.RecipeService, logger *zap.Logger) *RecipeHandlers {
	return &RecipeHandlers{recipes: recipes, logger: logger.Named("recipe-handlers")}
}

// Generate handles POST /api/v1/recipes/generate
func (h *RecipeHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	session, err := sessionKey(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	var cmd inbound.GenerateRecipesCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	batch, err := h.recipes.Generate(r.Context(), session, cmd)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, batch, "")
}

// List handles GET /api/v1/recipes?mood=&search=
func (h *RecipeHandlers) List(w http.ResponseWriter, r *http.Request) {
	session, err := sessionKey(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	q := r.URL.Query()
	list, err := h.recipes.List(r.Context(), session, inbound.RecipeQuery{
		Search: q.Get("search"),
		Mood:   q.Get("mood"),
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, list, "")
}

// Get handles GET /api/v1/recipes/{id}
func (h *RecipeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	session, err := sessionKey(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	rec, err := h.recipes.Get(r.Context(), session, chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, rec, "")
}

// Suggest handles POST /api/v1/recipes/suggestion
func (h *RecipeHandlers) Suggest(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.SuggestCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	suggestion, err := h.recipes.Suggest(r.Context(), cmd)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, suggestion, "")
}
