package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"brewcost/internal/catalog"
	applog "brewcost/internal/log"
	"brewcost/models"
)

// RecipeResource handles REST-style interactions for recipes, including the
// manual link subresource for individual ingredient lines.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if store == nil {
		applog.Debug(r.Context(), "recipe request without catalog")
		writeJSONError(w, http.StatusServiceUnavailable, "catalog not available")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/recipes")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r)
		case http.MethodPost:
			createRecipe(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	segments := strings.Split(path, "/")
	id := segments[0]

	// /api/recipes/{id}/ingredients/{index}/link
	if len(segments) == 4 && segments[1] == "ingredients" && segments[3] == "link" {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		index, err := strconv.Atoi(segments[2])
		if err != nil {
			writeJSONError(w, http.StatusNotFound, "recipe ingredient not found")
			return
		}
		linkRecipeIngredient(w, r, id, index)
		return
	}
	if len(segments) > 1 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showRecipe(w, r, id)
	case http.MethodPut, http.MethodPatch:
		updateRecipe(w, r, id)
	case http.MethodDelete:
		deleteRecipe(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request) {
	recipes := store.Recipes()
	applog.Debug(r.Context(), "listing recipes", "count", len(recipes))
	writeJSON(w, http.StatusOK, recipes)
}

func showRecipe(w http.ResponseWriter, r *http.Request, id string) {
	recipe, err := store.Recipe(id)
	if err != nil {
		if catalog.IsNotFound(err) {
			writeJSONError(w, http.StatusNotFound, "recipe not found")
			return
		}
		applog.Error(r.Context(), "failed to load recipe", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func createRecipe(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	var recipe models.Recipe
	applyRecipeFields(r, &recipe, body)

	saved, err := store.UpsertRecipe(recipe)
	if err != nil {
		applog.Error(r.Context(), "failed to create recipe", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to save recipe")
		return
	}
	applog.Info(r.Context(), "recipe created", "id", saved.ID, "name", saved.Name, "lines", len(saved.Ingredients))
	writeJSON(w, http.StatusCreated, saved)
}

func updateRecipe(w http.ResponseWriter, r *http.Request, id string) {
	recipe, err := store.Recipe(id)
	if err != nil {
		if catalog.IsNotFound(err) {
			writeJSONError(w, http.StatusNotFound, "recipe not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	applyRecipeFields(r, &recipe, body)
	recipe.ID = id

	saved, err := store.UpsertRecipe(recipe)
	if err != nil {
		applog.Error(r.Context(), "failed to update recipe", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to save recipe")
		return
	}
	applog.Info(r.Context(), "recipe updated", "id", saved.ID, "name", saved.Name)
	writeJSON(w, http.StatusOK, saved)
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, id string) {
	removed, err := store.DeleteRecipe(id)
	if err != nil {
		applog.Error(r.Context(), "failed to delete recipe", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe")
		return
	}
	if !removed {
		writeJSONError(w, http.StatusNotFound, "recipe not found")
		return
	}
	applog.Info(r.Context(), "recipe deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func linkRecipeIngredient(w http.ResponseWriter, r *http.Request, recipeID string, index int) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	ingredientID, _ := stringField(body, "ingredient_id")
	if ingredientID == "" {
		writeJSONError(w, http.StatusBadRequest, "ingredient_id is required")
		return
	}

	recipe, err := store.LinkIngredient(recipeID, index, ingredientID)
	if err != nil {
		if catalog.IsNotFound(err) {
			writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		applog.Error(r.Context(), "failed to link recipe ingredient", "recipe", recipeID, "index", index, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to link ingredient")
		return
	}
	applog.Info(r.Context(), "recipe ingredient linked", "recipe", recipeID, "index", index, "ingredient", ingredientID)
	writeJSON(w, http.StatusOK, recipe)
}

// Unresolved lists every recipe line that needs operator review.
func Unresolved(w http.ResponseWriter, r *http.Request) {
	if store == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "catalog not available")
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rows := store.Unresolved()
	if rows == nil {
		rows = []catalog.UnresolvedIngredient{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(rows),
		"unresolved": rows,
	})
}

// Reload discards the in-memory catalog and reloads it from persistence.
func Reload(w http.ResponseWriter, r *http.Request) {
	if store == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "catalog not available")
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ingredients, recipes, err := store.Reload()
	if err != nil {
		applog.Error(r.Context(), "catalog reload failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to reload catalog")
		return
	}
	applog.Info(r.Context(), "catalog reloaded", "ingredients", ingredients, "recipes", recipes)
	writeJSON(w, http.StatusOK, map[string]int{
		"ingredients": ingredients,
		"recipes":     recipes,
	})
}

// applyRecipeFields overlays the editable fields present in the request
// body. A present ingredients key replaces the whole line list; the catalog
// re-resolves any unlinked lines on save.
func applyRecipeFields(r *http.Request, recipe *models.Recipe, body map[string]any) {
	ctx := r.Context()

	if v, ok := stringField(body, "name"); ok {
		recipe.Name = v
	}
	if v, ok := stringField(body, "concept"); ok {
		recipe.Concept = v
	}
	if v, ok := stringField(body, "submitted_by"); ok {
		recipe.SubmittedBy = v
	}
	if v, ok := intField(body, "portions"); ok {
		recipe.Portions = v
	}
	if v, ok := floatField(ctx, body, "prep_time_minutes"); ok {
		recipe.PrepTimeMinutes = v
	}
	if v, ok := floatField(ctx, body, "labor_cost"); ok {
		recipe.LaborCost = v
	}
	if v, ok := floatField(ctx, body, "sale_price"); ok {
		recipe.SalePrice = v
	}
	if v, ok := floatField(ctx, body, "margin_factor"); ok {
		if v != nil {
			recipe.MarginFactor = *v
		} else {
			recipe.MarginFactor = 0
		}
	}

	if raw, present := body["ingredients"]; present {
		if lines, ok := raw.([]any); ok {
			recipe.Ingredients = parseRecipeLines(ctx, lines)
		}
	}
}

func parseRecipeLines(ctx context.Context, raw []any) []models.RecipeIngredient {
	lines := make([]models.RecipeIngredient, 0, len(raw))
	for _, entry := range raw {
		body, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		var line models.RecipeIngredient
		if v, ok := stringField(body, "name"); ok {
			line.Name = v
		}
		if v, ok := stringField(body, "ingredient_id"); ok {
			line.IngredientID = v
		}
		if v, ok := floatField(ctx, body, "quantity"); ok {
			line.Quantity = v
		}
		if v, ok := floatField(ctx, body, "unit_cost"); ok {
			line.UnitCost = v
		}
		if v, ok := floatField(ctx, body, "match_confidence"); ok && v != nil {
			line.MatchConfidence = *v
		}
		if v, ok := stringField(body, "match_reason"); ok {
			line.MatchReason = v
		}
		lines = append(lines, line)
	}
	return lines
}
