package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"brewcost/internal/catalog"
	"brewcost/models"
)

func TestRecipeCreateResolvesLines(t *testing.T) {
	cat := withTestCatalog(t)
	milk := seedIngredient(t, cat, "Whole Milk", "Dairy", 6.0, 12)

	req := jsonRequest(t, http.MethodPost, "/api/recipes", map[string]any{
		"name":     "Latte",
		"portions": 1,
		"ingredients": []map[string]any{
			{"name": "Whole Milk", "quantity": 2},
		},
	})
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var recipe models.Recipe
	decodeResponse(t, w, &recipe)
	if len(recipe.Ingredients) != 1 {
		t.Fatalf("lines = %d, want 1", len(recipe.Ingredients))
	}
	line := recipe.Ingredients[0]
	if line.IngredientID != milk.ID {
		t.Fatalf("line linked to %q, want %q", line.IngredientID, milk.ID)
	}
	if line.MatchReason != models.MatchExact || line.MatchConfidence != 1.0 {
		t.Fatalf("match = %q/%v, want exact/1.0", line.MatchReason, line.MatchConfidence)
	}
	if line.TotalCost == nil || *line.TotalCost != 1.0 {
		t.Fatalf("TotalCost = %v, want 1.0", line.TotalCost)
	}
	if recipe.CostPerRecipe == nil || *recipe.CostPerRecipe != 1.0 {
		t.Fatalf("CostPerRecipe = %v, want 1.0", recipe.CostPerRecipe)
	}
}

func TestRecipeCreateDefaultsPortions(t *testing.T) {
	cat := withTestCatalog(t)
	seedIngredient(t, cat, "Whole Milk", "Dairy", 6.0, 12)

	req := jsonRequest(t, http.MethodPost, "/api/recipes", map[string]any{
		"name": "Latte",
		"ingredients": []map[string]any{
			{"name": "Whole Milk", "quantity": 2},
		},
	})
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var recipe models.Recipe
	decodeResponse(t, w, &recipe)
	if recipe.Portions != 1 {
		t.Fatalf("Portions = %d, want default 1", recipe.Portions)
	}
	if recipe.CostPerPortion == nil || *recipe.CostPerPortion != 1.0 {
		t.Fatalf("CostPerPortion = %v, want 1.0", recipe.CostPerPortion)
	}
	if recipe.MinSalePrice == nil {
		t.Fatal("MinSalePrice should be present once portions defaults")
	}
}

func TestRecipePartialUpdateKeepsLines(t *testing.T) {
	cat := withTestCatalog(t)
	seedIngredient(t, cat, "Whole Milk", "Dairy", 6.0, 12)
	created, err := cat.UpsertRecipe(models.Recipe{
		Name:     "Latte",
		Portions: 1,
		Ingredients: []models.RecipeIngredient{
			{Name: "Whole Milk", Quantity: f64(2)},
		},
	})
	if err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	req := jsonRequest(t, http.MethodPut, "/api/recipes/"+created.ID, map[string]any{
		"sale_price": 5.50,
	})
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var recipe models.Recipe
	decodeResponse(t, w, &recipe)
	if recipe.SalePrice == nil || *recipe.SalePrice != 5.50 {
		t.Fatalf("SalePrice = %v, want 5.50", recipe.SalePrice)
	}
	if len(recipe.Ingredients) != 1 || recipe.Ingredients[0].IngredientID == "" {
		t.Fatalf("lines lost on partial update: %+v", recipe.Ingredients)
	}
}

func TestRecipeLinkSubresource(t *testing.T) {
	cat := withTestCatalog(t)
	syrup := seedIngredient(t, cat, "House Caramel", "Syrups", 12.0, 40)
	created, err := cat.UpsertRecipe(models.Recipe{
		Name:     "Caramel Latte",
		Portions: 1,
		Ingredients: []models.RecipeIngredient{
			{Name: "carmel sauce (homemade)", Quantity: f64(1)},
		},
	})
	if err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	req := jsonRequest(t, http.MethodPost, "/api/recipes/"+created.ID+"/ingredients/0/link", map[string]any{
		"ingredient_id": syrup.ID,
	})
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var recipe models.Recipe
	decodeResponse(t, w, &recipe)
	line := recipe.Ingredients[0]
	if line.IngredientID != syrup.ID || line.MatchReason != models.MatchManual {
		t.Fatalf("line = %+v, want manual link to %q", line, syrup.ID)
	}
	if line.UnitCost == nil || *line.UnitCost != 0.3 {
		t.Fatalf("UnitCost = %v, want 0.3 from the linked row", line.UnitCost)
	}
}

func TestRecipeLinkUnknownIndexIsNotFound(t *testing.T) {
	cat := withTestCatalog(t)
	syrup := seedIngredient(t, cat, "House Caramel", "Syrups", 12.0, 40)
	created, err := cat.UpsertRecipe(models.Recipe{Name: "Empty", Portions: 1})
	if err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	req := jsonRequest(t, http.MethodPost, "/api/recipes/"+created.ID+"/ingredients/5/link", map[string]any{
		"ingredient_id": syrup.ID,
	})
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestUnresolvedListsUnlinkedLines(t *testing.T) {
	cat := withTestCatalog(t)
	if _, err := cat.UpsertRecipe(models.Recipe{
		Name:     "Mystery Drink",
		Portions: 1,
		Ingredients: []models.RecipeIngredient{
			{Name: "unobtainium extract", Quantity: f64(1), UnitCost: f64(2)},
		},
	}); err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/unresolved", nil)
	w := httptest.NewRecorder()
	Unresolved(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Count      int                            `json:"count"`
		Unresolved []catalog.UnresolvedIngredient `json:"unresolved"`
	}
	decodeResponse(t, w, &resp)
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.Unresolved[0].Name != "unobtainium extract" {
		t.Fatalf("row = %+v", resp.Unresolved[0])
	}
}

func TestReloadReportsCounts(t *testing.T) {
	cat := withTestCatalog(t)
	seedIngredient(t, cat, "Whole Milk", "Dairy", 6.0, 12)

	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
	w := httptest.NewRecorder()
	Reload(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]int
	decodeResponse(t, w, &resp)
	if resp["ingredients"] != 1 || resp["recipes"] != 0 {
		t.Fatalf("counts = %v", resp)
	}
}

func TestRecipeDelete(t *testing.T) {
	cat := withTestCatalog(t)
	created, err := cat.UpsertRecipe(models.Recipe{Name: "Short Lived", Portions: 1})
	if err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/recipes/"+created.ID, nil)
	w := httptest.NewRecorder()
	RecipeResource(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if _, err := cat.Recipe(created.ID); !catalog.IsNotFound(err) {
		t.Fatalf("expected recipe gone, got %v", err)
	}
}
