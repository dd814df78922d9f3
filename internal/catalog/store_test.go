package catalog

import (
	"errors"
	"math"
	"testing"

	"brewcost/internal/storage/jsonstore"
	"brewcost/models"
)

func f64(v float64) *float64 { return &v }

func openTestStore(t *testing.T) *Store {
	t.Helper()

	gw, err := jsonstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("jsonstore.New returned error: %v", err)
	}
	store, err := Open(gw)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	return store
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestUpsertIngredientDerivesPerUnitFigures(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	ing, err := store.UpsertIngredient(models.Ingredient{
		Name:     "Coffee Beans",
		Category: "Coffee",
		Cost:     f64(55),
		Units:    f64(100),
		UnitSale: f64(1.25),
		// Derived inputs are ignored, never trusted.
		CostPerUnit: f64(9999),
	})
	if err != nil {
		t.Fatalf("UpsertIngredient returned error: %v", err)
	}

	if ing.ID != models.IngredientID("Coffee", "Coffee Beans") {
		t.Fatalf("unexpected id %q", ing.ID)
	}
	if ing.CostPerUnit == nil || !almostEqual(*ing.CostPerUnit, 0.55) {
		t.Fatalf("cost_per_unit = %v, want 0.55", ing.CostPerUnit)
	}
	if ing.UnitProfit == nil || !almostEqual(*ing.UnitProfit, 0.70) {
		t.Fatalf("unit_profit = %v, want 0.70", ing.UnitProfit)
	}
}

func TestUpsertIngredientMissingInputsLeaveDerivedAbsent(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	ing, err := store.UpsertIngredient(models.Ingredient{
		Name:     "Cinnamon",
		Category: "Spices",
		Cost:     f64(12),
		Units:    f64(0),
	})
	if err != nil {
		t.Fatalf("UpsertIngredient returned error: %v", err)
	}
	if ing.CostPerUnit != nil {
		t.Fatalf("cost_per_unit should be absent when units is zero, got %v", *ing.CostPerUnit)
	}
	if ing.UnitProfit != nil {
		t.Fatal("unit_profit should be absent without cost_per_unit")
	}
}

func TestUpsertIngredientCollisionIsIdentity(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	first, err := store.UpsertIngredient(models.Ingredient{Name: "Oat Milk", Category: "Dairy", Cost: f64(4)})
	if err != nil {
		t.Fatalf("UpsertIngredient returned error: %v", err)
	}
	second, err := store.UpsertIngredient(models.Ingredient{Name: "Oat Milk", Category: "Dairy", Cost: f64(5)})
	if err != nil {
		t.Fatalf("UpsertIngredient returned error: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("same (category, name) should be the same row: %q vs %q", first.ID, second.ID)
	}
	if len(store.Ingredients()) != 1 {
		t.Fatalf("expected a single catalog row, got %d", len(store.Ingredients()))
	}
	if got, _ := store.Ingredient(first.ID); *got.Cost != 5 {
		t.Fatalf("update did not apply, cost = %v", *got.Cost)
	}
}

func TestRecipeAutoResolutionAndCosting(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	beans, err := store.UpsertIngredient(models.Ingredient{
		Name:     "Coffee Beans",
		Category: "Coffee",
		Cost:     f64(55),
		Units:    f64(100),
	})
	if err != nil {
		t.Fatalf("UpsertIngredient returned error: %v", err)
	}

	recipe, err := store.UpsertRecipe(models.Recipe{
		Name:         "Latte",
		Portions:     1,
		LaborCost:    f64(0.50),
		SalePrice:    f64(4.50),
		MarginFactor: 1.66,
		Ingredients: []models.RecipeIngredient{{
			Name:     "coffee beans",
			Quantity: f64(2),
		}},
	})
	if err != nil {
		t.Fatalf("UpsertRecipe returned error: %v", err)
	}

	line := recipe.Ingredients[0]
	if line.IngredientID != beans.ID {
		t.Fatalf("line linked to %q, want %q", line.IngredientID, beans.ID)
	}
	if line.MatchConfidence != 1.0 || line.MatchReason != models.MatchExact {
		t.Fatalf("expected exact match, got %f %q", line.MatchConfidence, line.MatchReason)
	}
	if line.UnitCost == nil || !almostEqual(*line.UnitCost, 0.55) {
		t.Fatalf("unit_cost = %v, want 0.55", line.UnitCost)
	}
	if line.TotalCost == nil || !almostEqual(*line.TotalCost, 1.10) {
		t.Fatalf("total_cost = %v, want 1.10", line.TotalCost)
	}

	checks := []struct {
		name  string
		field *float64
		want  float64
	}{
		{"cost_per_recipe", recipe.CostPerRecipe, 1.10},
		{"cost_per_portion", recipe.CostPerPortion, 1.10},
		{"cost_plus_labor", recipe.CostPlusLabor, 1.60},
		{"min_sale_price", recipe.MinSalePrice, 2.656},
		{"profit_per_sale", recipe.ProfitPerSale, 2.90},
	}
	for _, check := range checks {
		if check.field == nil {
			t.Fatalf("%s is absent, want %f", check.name, check.want)
		}
		if !almostEqual(*check.field, check.want) {
			t.Fatalf("%s = %f, want %f", check.name, *check.field, check.want)
		}
	}
}

func TestCascadeOnIngredientPriceChange(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	ing, err := store.UpsertIngredient(models.Ingredient{
		Name:     "Butter",
		Category: "Dairy",
		Cost:     f64(50),
		Units:    f64(100),
	})
	if err != nil {
		t.Fatalf("UpsertIngredient returned error: %v", err)
	}

	recipe, err := store.UpsertRecipe(models.Recipe{
		Name:     "Biscuits",
		Portions: 1,
		Ingredients: []models.RecipeIngredient{{
			Name:     "butter",
			Quantity: f64(4),
		}},
	})
	if err != nil {
		t.Fatalf("UpsertRecipe returned error: %v", err)
	}
	if recipe.CostPerRecipe == nil || !almostEqual(*recipe.CostPerRecipe, 2.00) {
		t.Fatalf("cost_per_recipe = %v, want 2.00", recipe.CostPerRecipe)
	}

	// Doubling cost per unit must move the recipe by quantity * delta.
	ing.Cost = f64(100)
	if _, err := store.UpsertIngredient(ing); err != nil {
		t.Fatalf("UpsertIngredient returned error: %v", err)
	}

	updated, err := store.Recipe(recipe.ID)
	if err != nil {
		t.Fatalf("Recipe returned error: %v", err)
	}
	if updated.CostPerRecipe == nil || !almostEqual(*updated.CostPerRecipe, 4.00) {
		t.Fatalf("cost_per_recipe after cascade = %v, want 4.00", updated.CostPerRecipe)
	}
	if !almostEqual(*updated.CostPerRecipe-*recipe.CostPerRecipe, 4*(1.00-0.50)) {
		t.Fatal("cascade delta must equal quantity times the per-unit change")
	}
}

func TestPropagationIdempotence(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	if _, err := store.UpsertIngredient(models.Ingredient{
		Name: "Flour", Category: "Baking", Cost: f64(30), Units: f64(60),
	}); err != nil {
		t.Fatalf("UpsertIngredient returned error: %v", err)
	}

	recipe, err := store.UpsertRecipe(models.Recipe{
		Name:      "Scone",
		Portions:  8,
		LaborCost: f64(3),
		SalePrice: f64(3.25),
		Ingredients: []models.RecipeIngredient{{
			Name:     "flour",
			Quantity: f64(6),
		}},
	})
	if err != nil {
		t.Fatalf("UpsertRecipe returned error: %v", err)
	}

	if err := store.RecalculateRecipe(recipe.ID); err != nil {
		t.Fatalf("RecalculateRecipe returned error: %v", err)
	}
	first, _ := store.Recipe(recipe.ID)

	if err := store.RecalculateRecipe(recipe.ID); err != nil {
		t.Fatalf("RecalculateRecipe returned error: %v", err)
	}
	second, _ := store.Recipe(recipe.ID)

	pairs := [][2]*float64{
		{first.CostPerRecipe, second.CostPerRecipe},
		{first.CostPerPortion, second.CostPerPortion},
		{first.CostPlusLabor, second.CostPlusLabor},
		{first.MinSalePrice, second.MinSalePrice},
		{first.ProfitPerSale, second.ProfitPerSale},
	}
	for i, pair := range pairs {
		if (pair[0] == nil) != (pair[1] == nil) {
			t.Fatalf("field %d presence changed between recomputes", i)
		}
		if pair[0] != nil && *pair[0] != *pair[1] {
			t.Fatalf("field %d not bit-identical: %v vs %v", i, *pair[0], *pair[1])
		}
	}
}

func TestZeroPortionsLeaveCostPerPortionAbsent(t *testing.T) {
	t.Parallel()

	// A stored document can carry an explicit zero; the load path keeps it.
	espressoID := models.IngredientID("Coffee", "Espresso")
	gw := &flakyGateway{
		ingredients: []models.Ingredient{{
			ID: espressoID, Name: "Espresso", Category: "Coffee", Cost: f64(10), Units: f64(10),
		}},
		recipes: []models.Recipe{{
			Name:     "Test Batch",
			Portions: 0,
			Ingredients: []models.RecipeIngredient{{
				Name:         "espresso",
				IngredientID: espressoID,
				Quantity:     f64(1),
			}},
		}},
	}
	store, err := Open(gw)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	recipes := store.Recipes()
	if len(recipes) != 1 {
		t.Fatalf("expected one recipe, got %d", len(recipes))
	}
	recipe := recipes[0]

	if recipe.Portions != 0 {
		t.Fatalf("explicit zero portions was rewritten to %d", recipe.Portions)
	}
	if recipe.CostPerRecipe == nil {
		t.Fatal("cost_per_recipe should still be present")
	}
	if recipe.CostPerPortion != nil {
		t.Fatalf("cost_per_portion should be absent with zero portions, got %v", *recipe.CostPerPortion)
	}
	if recipe.MinSalePrice != nil {
		t.Fatal("min_sale_price should be absent with zero portions")
	}
}

func TestUpsertRecipeDefaultsPortionsToOne(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	if _, err := store.UpsertIngredient(models.Ingredient{
		Name: "Espresso", Category: "Coffee", Cost: f64(10), Units: f64(10),
	}); err != nil {
		t.Fatalf("UpsertIngredient returned error: %v", err)
	}

	recipe, err := store.UpsertRecipe(models.Recipe{
		Name: "Single Shot",
		Ingredients: []models.RecipeIngredient{{
			Name:     "espresso",
			Quantity: f64(1),
		}},
	})
	if err != nil {
		t.Fatalf("UpsertRecipe returned error: %v", err)
	}

	if recipe.Portions != 1 {
		t.Fatalf("portions = %d, want default 1", recipe.Portions)
	}
	if recipe.CostPerPortion == nil || !almostEqual(*recipe.CostPerPortion, 1.0) {
		t.Fatalf("cost_per_portion = %v, want 1.0", recipe.CostPerPortion)
	}
	if recipe.MinSalePrice == nil {
		t.Fatal("min_sale_price should be present with defaulted portions")
	}
}

func TestManualLinkOverridesResolver(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	house, err := store.UpsertIngredient(models.Ingredient{
		Name: "House Espresso Blend", Category: "Coffee", Cost: f64(80), Units: f64(160),
	})
	if err != nil {
		t.Fatalf("UpsertIngredient returned error: %v", err)
	}

	recipe, err := store.UpsertRecipe(models.Recipe{
		Name:     "Cortado",
		Portions: 1,
		Ingredients: []models.RecipeIngredient{{
			Name:     "the usual beans",
			Quantity: f64(2),
		}},
	})
	if err != nil {
		t.Fatalf("UpsertRecipe returned error: %v", err)
	}
	if recipe.Ingredients[0].IngredientID != "" {
		t.Fatalf("expected no automatic link, got %q", recipe.Ingredients[0].IngredientID)
	}

	linked, err := store.LinkIngredient(recipe.ID, 0, house.ID)
	if err != nil {
		t.Fatalf("LinkIngredient returned error: %v", err)
	}

	line := linked.Ingredients[0]
	if line.IngredientID != house.ID || line.MatchConfidence != 1.0 || line.MatchReason != models.MatchManual {
		t.Fatalf("manual link metadata wrong: %+v", line)
	}
	if line.UnitCost == nil || !almostEqual(*line.UnitCost, 0.50) {
		t.Fatalf("unit_cost = %v, want 0.50", line.UnitCost)
	}
	if linked.CostPerRecipe == nil || !almostEqual(*linked.CostPerRecipe, 1.00) {
		t.Fatalf("cost_per_recipe = %v, want 1.00", linked.CostPerRecipe)
	}
}

func TestLinkIngredientUnknownTargets(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	if _, err := store.LinkIngredient("missing", 0, "also-missing"); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	recipe, err := store.UpsertRecipe(models.Recipe{
		Name:        "Empty",
		Portions:    1,
		Ingredients: []models.RecipeIngredient{{Name: "water", Quantity: f64(1)}},
	})
	if err != nil {
		t.Fatalf("UpsertRecipe returned error: %v", err)
	}

	if _, err := store.LinkIngredient(recipe.ID, 5, "nope"); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError for out-of-range index, got %v", err)
	}
}

func TestUnresolvedListing(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	beans, err := store.UpsertIngredient(models.Ingredient{
		Name: "Coffee Beans", Category: "Coffee", Cost: f64(55), Units: f64(100),
	})
	if err != nil {
		t.Fatalf("UpsertIngredient returned error: %v", err)
	}

	recipe, err := store.UpsertRecipe(models.Recipe{
		Name:     "Mystery Drink",
		Portions: 1,
		Ingredients: []models.RecipeIngredient{
			{Name: "coffee beans", Quantity: f64(1)},
			{Name: "secret syrup", Quantity: f64(1)},
		},
	})
	if err != nil {
		t.Fatalf("UpsertRecipe returned error: %v", err)
	}

	unresolved := store.Unresolved()
	if len(unresolved) != 1 {
		t.Fatalf("expected 1 unresolved line, got %d", len(unresolved))
	}
	if unresolved[0].Name != "secret syrup" || unresolved[0].Reason != models.MatchNone {
		t.Fatalf("unexpected unresolved entry: %+v", unresolved[0])
	}

	// Deleting a linked ingredient leaves the link dangling and flagged.
	if _, err := store.DeleteIngredient(beans.ID); err != nil {
		t.Fatalf("DeleteIngredient returned error: %v", err)
	}

	unresolved = store.Unresolved()
	if len(unresolved) != 2 {
		t.Fatalf("expected 2 unresolved lines after delete, got %d", len(unresolved))
	}

	var dangling *UnresolvedIngredient
	for i := range unresolved {
		if unresolved[i].Dangling {
			dangling = &unresolved[i]
		}
	}
	if dangling == nil {
		t.Fatal("expected a dangling entry after ingredient delete")
	}
	if dangling.RecipeID != recipe.ID || dangling.LinkedID != beans.ID {
		t.Fatalf("dangling entry points at the wrong link: %+v", dangling)
	}
}

func TestRecalculateUnknownIDsAreIntegrityErrors(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	var integrity *DataIntegrityError
	if err := store.RecalculateRecipe("missing"); !errors.As(err, &integrity) {
		t.Fatalf("expected DataIntegrityError, got %v", err)
	}
	if err := store.RecalculateIngredient("missing"); !errors.As(err, &integrity) {
		t.Fatalf("expected DataIntegrityError, got %v", err)
	}
}

func TestReloadRebuildsDerivedState(t *testing.T) {
	t.Parallel()

	gw, err := jsonstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("jsonstore.New returned error: %v", err)
	}

	cost := 55.0
	units := 100.0
	qty := 2.0
	if err := gw.SaveIngredients([]models.Ingredient{{
		Name: "Coffee Beans", Category: "Coffee", Cost: &cost, Units: &units,
	}}); err != nil {
		t.Fatalf("SaveIngredients returned error: %v", err)
	}
	if err := gw.SaveRecipes([]models.Recipe{{
		Name:     "Latte",
		Portions: 1,
		Ingredients: []models.RecipeIngredient{{
			Name:            "coffee beans",
			IngredientID:    models.IngredientID("Coffee", "Coffee Beans"),
			Quantity:        &qty,
			MatchConfidence: 1.0,
			MatchReason:     models.MatchExact,
		}},
	}}); err != nil {
		t.Fatalf("SaveRecipes returned error: %v", err)
	}

	store, err := Open(gw)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	recipes := store.Recipes()
	if len(recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(recipes))
	}
	if recipes[0].CostPerRecipe == nil || !almostEqual(*recipes[0].CostPerRecipe, 1.10) {
		t.Fatalf("derived fields not rebuilt on load: %v", recipes[0].CostPerRecipe)
	}

	ingredientCount, recipeCount, err := store.Reload()
	if err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	if ingredientCount != 1 || recipeCount != 1 {
		t.Fatalf("Reload counts = (%d, %d), want (1, 1)", ingredientCount, recipeCount)
	}
}
