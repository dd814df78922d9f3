package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"brewcost/internal/catalog"
	applog "brewcost/internal/log"
	"brewcost/models"
)

// IngredientResource handles REST-style interactions for catalog rows.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if store == nil {
		applog.Debug(r.Context(), "ingredient request without catalog")
		writeJSONError(w, http.StatusServiceUnavailable, "catalog not available")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, id)
	case http.MethodPut, http.MethodPatch:
		updateIngredient(w, r, id)
	case http.MethodDelete:
		deleteIngredient(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients := store.Ingredients()
	applog.Debug(r.Context(), "listing ingredients", "count", len(ingredients))
	writeJSON(w, http.StatusOK, ingredients)
}

func showIngredient(w http.ResponseWriter, r *http.Request, id string) {
	ing, err := store.Ingredient(id)
	if err != nil {
		if catalog.IsNotFound(err) {
			writeJSONError(w, http.StatusNotFound, "ingredient not found")
			return
		}
		applog.Error(r.Context(), "failed to load ingredient", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	var ing models.Ingredient
	applyIngredientFields(r.Context(), &ing, body)

	saved, err := store.UpsertIngredient(ing)
	if err != nil {
		applog.Error(r.Context(), "failed to create ingredient", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to save ingredient")
		return
	}
	applog.Info(r.Context(), "ingredient created", "id", saved.ID, "name", saved.Name)
	writeJSON(w, http.StatusCreated, saved)
}

func updateIngredient(w http.ResponseWriter, r *http.Request, id string) {
	ing, err := store.Ingredient(id)
	if err != nil {
		if catalog.IsNotFound(err) {
			writeJSONError(w, http.StatusNotFound, "ingredient not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	applyIngredientFields(r.Context(), &ing, body)
	ing.ID = id

	saved, err := store.UpsertIngredient(ing)
	if err != nil {
		applog.Error(r.Context(), "failed to update ingredient", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to save ingredient")
		return
	}
	applog.Info(r.Context(), "ingredient updated", "id", saved.ID, "name", saved.Name)
	writeJSON(w, http.StatusOK, saved)
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, id string) {
	removed, err := store.DeleteIngredient(id)
	if err != nil {
		applog.Error(r.Context(), "failed to delete ingredient", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}
	if !removed {
		writeJSONError(w, http.StatusNotFound, "ingredient not found")
		return
	}
	applog.Info(r.Context(), "ingredient deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// applyIngredientFields overlays the editable fields present in the request
// body onto the ingredient. Absent keys leave the current value alone.
func applyIngredientFields(ctx context.Context, ing *models.Ingredient, body map[string]any) {
	if v, ok := stringField(body, "name"); ok {
		ing.Name = v
	}
	if v, ok := stringField(body, "category"); ok {
		ing.Category = v
	}
	if v, ok := stringField(body, "supplier"); ok {
		ing.Supplier = v
	}
	if v, ok := stringField(body, "notes"); ok {
		ing.Notes = v
	}
	if v, ok := floatField(ctx, body, "cost"); ok {
		ing.Cost = v
	}
	if v, ok := floatField(ctx, body, "units"); ok {
		ing.Units = v
	}
	if v, ok := floatField(ctx, body, "unit_sale"); ok {
		ing.UnitSale = v
	}
	if v, ok := floatField(ctx, body, "case_profit"); ok {
		ing.CaseProfit = v
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return nil, false
	}
	return body, true
}

func stringField(body map[string]any, key string) (string, bool) {
	raw, present := body[key]
	if !present {
		return "", false
	}
	value, ok := raw.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func intField(body map[string]any, key string) (int, bool) {
	raw, present := body[key]
	if !present {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// floatField reads an optional numeric field. Null and the empty string
// clear the value; a value that cannot be parsed is dropped from the edit
// rather than failing it.
func floatField(ctx context.Context, body map[string]any, key string) (*float64, bool) {
	raw, present := body[key]
	if !present {
		return nil, false
	}
	switch v := raw.(type) {
	case nil:
		return nil, true
	case float64:
		return &v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, true
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			applog.Debug(ctx, "dropping unparseable numeric field", "field", key, "value", v)
			return nil, false
		}
		return &parsed, true
	default:
		applog.Debug(ctx, "dropping non-numeric field", "field", key)
		return nil, false
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
