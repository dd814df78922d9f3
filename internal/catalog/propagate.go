package catalog

// Propagation keeps every derived numeric field consistent with its inputs.
// Missing inputs never raise; they make the dependent field absent. The one
// exception named by the costing rules is labor cost, which defaults to zero
// inside a sum without affecting its own presence.

import "brewcost/models"

// recalcIngredient refreshes an ingredient's derived per-unit figures.
func recalcIngredient(ing *models.Ingredient) {
	if ing.Cost != nil && ing.Units != nil && *ing.Units > 0 {
		perUnit := *ing.Cost / *ing.Units
		ing.CostPerUnit = &perUnit
	} else {
		ing.CostPerUnit = nil
	}

	if ing.UnitSale != nil && ing.CostPerUnit != nil {
		profit := *ing.UnitSale - *ing.CostPerUnit
		ing.UnitProfit = &profit
	} else {
		ing.UnitProfit = nil
	}
}

// recalcRecipe refreshes every derived field on a recipe. Linked lines pull
// their unit cost from the catalog; a dangling link keeps its captured cost
// and is reported by Unresolved instead of being silently unlinked.
// Callers must hold the write lock.
func (s *Store) recalcRecipe(recipe *models.Recipe) {
	for i := range recipe.Ingredients {
		line := &recipe.Ingredients[i]
		if line.IngredientID == "" {
			continue
		}
		master, ok := s.ingredientsByID[line.IngredientID]
		if !ok || master.CostPerUnit == nil {
			continue
		}

		unitCost := *master.CostPerUnit
		line.UnitCost = &unitCost
		if line.Quantity != nil {
			total := *line.Quantity * unitCost
			line.TotalCost = &total
		}
	}

	total := 0.0
	contributes := false
	for i := range recipe.Ingredients {
		if recipe.Ingredients[i].TotalCost != nil {
			total += *recipe.Ingredients[i].TotalCost
			contributes = true
		}
	}
	if contributes && total > 0 {
		recipe.CostPerRecipe = &total
	} else {
		recipe.CostPerRecipe = nil
	}

	if recipe.CostPerRecipe != nil && recipe.Portions > 0 {
		perPortion := *recipe.CostPerRecipe / float64(recipe.Portions)
		recipe.CostPerPortion = &perPortion
	} else {
		recipe.CostPerPortion = nil
	}

	if recipe.CostPerRecipe != nil {
		labor := 0.0
		if recipe.LaborCost != nil {
			labor = *recipe.LaborCost
		}
		plusLabor := *recipe.CostPerRecipe + labor
		recipe.CostPlusLabor = &plusLabor
	} else {
		recipe.CostPlusLabor = nil
	}

	if recipe.CostPlusLabor != nil && recipe.Portions > 0 {
		minPrice := (*recipe.CostPlusLabor / float64(recipe.Portions)) * recipe.MarginFactor
		recipe.MinSalePrice = &minPrice
	} else {
		recipe.MinSalePrice = nil
	}

	if recipe.SalePrice != nil && recipe.CostPerPortion != nil {
		labor := 0.0
		if recipe.LaborCost != nil {
			labor = *recipe.LaborCost
		}
		profit := *recipe.SalePrice - *recipe.CostPerPortion - labor/float64(recipe.Portions)
		recipe.ProfitPerSale = &profit
	} else {
		recipe.ProfitPerSale = nil
	}
}

// cascade recomputes every recipe referencing the given ingredient and
// returns whether any recipe was touched. Callers must hold the write lock.
func (s *Store) cascade(ingredientID string) bool {
	touched := false
	for recipeID := range s.dependents[ingredientID] {
		if recipe, ok := s.recipesByID[recipeID]; ok {
			s.recalcRecipe(recipe)
			touched = true
		}
	}
	return touched
}
