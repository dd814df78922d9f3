// Package catalog holds the authoritative in-memory ingredient and recipe
// collections and keeps every derived cost figure consistent under edits.
// Reads may run concurrently; every mutation runs under a single writer
// lock and completes its full propagation cascade and persistence write
// before the lock is released, so observers never see stale derived fields
// or partial cascades.
package catalog

import (
	"fmt"
	"strings"

	"brewcost/internal/match"
	"brewcost/internal/storage"
	"brewcost/models"

	"sync"
)

// Store is the entity store: an explicit, lifetime-scoped instance owned by
// the serving layer.
type Store struct {
	mu      sync.RWMutex
	gateway storage.Gateway

	ingredients     []*models.Ingredient
	ingredientsByID map[string]*models.Ingredient

	recipes     []*models.Recipe
	recipesByID map[string]*models.Recipe

	// dependents is the reverse index from ingredient id to the recipes
	// referencing it. Derived cache only: Reload rebuilds it from the lines.
	dependents map[string]map[string]struct{}
}

// UnresolvedIngredient is one row of the needs-review listing: a recipe line
// that is unlinked, linked with low confidence, or dangling after a catalog
// delete.
type UnresolvedIngredient struct {
	RecipeID   string   `json:"recipe_id"`
	RecipeName string   `json:"recipe_name"`
	Index      int      `json:"index"`
	Name       string   `json:"name"`
	UnitCost   *float64 `json:"unit_cost"`
	LinkedID   string   `json:"linked_id,omitempty"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reason,omitempty"`
	Dangling   bool     `json:"dangling,omitempty"`
}

// Open loads both collections through the gateway, recomputes every derived
// field against current prices and builds the lookup structures.
func Open(gw storage.Gateway) (*Store, error) {
	if gw == nil {
		return nil, fmt.Errorf("catalog: nil gateway")
	}
	s := &Store{gateway: gw}
	if _, _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload discards the in-memory state and reloads it from the gateway,
// returning the loaded ingredient and recipe counts.
func (s *Store) Reload() (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ingredients, err := s.gateway.LoadIngredients()
	if err != nil {
		return 0, 0, fmt.Errorf("load ingredients: %w", err)
	}
	recipes, err := s.gateway.LoadRecipes()
	if err != nil {
		return 0, 0, fmt.Errorf("load recipes: %w", err)
	}

	s.ingredients = make([]*models.Ingredient, 0, len(ingredients))
	s.ingredientsByID = make(map[string]*models.Ingredient, len(ingredients))
	for i := range ingredients {
		ing := ingredients[i]
		if ing.ID == "" {
			ing.ID = models.IngredientID(ing.Category, ing.Name)
		}
		recalcIngredient(&ing)
		s.ingredients = append(s.ingredients, &ing)
		s.ingredientsByID[ing.ID] = &ing
	}

	s.recipes = make([]*models.Recipe, 0, len(recipes))
	s.recipesByID = make(map[string]*models.Recipe, len(recipes))
	s.dependents = make(map[string]map[string]struct{})
	for i := range recipes {
		recipe := recipes[i]
		if recipe.ID == "" {
			recipe.ID = models.RecipeID(recipe.Name)
		}
		if recipe.MarginFactor == 0 {
			recipe.MarginFactor = models.DefaultMarginFactor
		}
		s.recipes = append(s.recipes, &recipe)
		s.recipesByID[recipe.ID] = &recipe
		s.indexRecipe(&recipe)
	}

	for _, recipe := range s.recipes {
		s.recalcRecipe(recipe)
	}

	return len(s.ingredients), len(s.recipes), nil
}

// Ingredients returns a copy of the catalog in load order.
func (s *Store) Ingredients() []models.Ingredient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Ingredient, 0, len(s.ingredients))
	for _, ing := range s.ingredients {
		out = append(out, *ing)
	}
	return out
}

// Ingredient returns a single catalog row by id.
func (s *Store) Ingredient(id string) (models.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ing, ok := s.ingredientsByID[id]
	if !ok {
		return models.Ingredient{}, &NotFoundError{Kind: "ingredient", ID: id}
	}
	return *ing, nil
}

// UpsertIngredient creates or replaces a catalog row. An empty id derives
// one from the (category, name) pair; a derived id that already exists is
// the same ingredient and the row is updated in place. Derived fields in
// the input are ignored and recomputed, and every recipe referencing the
// row is recomputed before the gateway save.
func (s *Store) UpsertIngredient(fields models.Ingredient) (models.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(fields.Name) == "" {
		fields.Name = "New Ingredient"
	}
	if strings.TrimSpace(fields.Category) == "" {
		fields.Category = "Uncategorized"
	}

	id := fields.ID
	if id == "" {
		id = models.IngredientID(fields.Category, fields.Name)
	}

	ing, exists := s.ingredientsByID[id]
	if !exists {
		ing = &models.Ingredient{ID: id}
		s.ingredients = append(s.ingredients, ing)
		s.ingredientsByID[id] = ing
	}

	ing.Name = fields.Name
	ing.Category = fields.Category
	ing.Cost = fields.Cost
	ing.Units = fields.Units
	ing.UnitSale = fields.UnitSale
	ing.CaseProfit = fields.CaseProfit
	ing.Supplier = fields.Supplier
	ing.Notes = fields.Notes

	recalcIngredient(ing)
	cascaded := s.cascade(id)

	if err := s.gateway.SaveIngredients(s.snapshotIngredients()); err != nil {
		return *ing, fmt.Errorf("save ingredients: %w", err)
	}
	if cascaded {
		if err := s.gateway.SaveRecipes(s.snapshotRecipes()); err != nil {
			return *ing, fmt.Errorf("save recipes: %w", err)
		}
	}

	return *ing, nil
}

// DeleteIngredient removes a catalog row. Recipe lines that reference it
// keep their link and their last known costs; they surface in Unresolved
// as dangling until relinked.
func (s *Store) DeleteIngredient(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ingredientsByID[id]; !ok {
		return false, nil
	}

	delete(s.ingredientsByID, id)
	for i, ing := range s.ingredients {
		if ing.ID == id {
			s.ingredients = append(s.ingredients[:i], s.ingredients[i+1:]...)
			break
		}
	}

	cascaded := s.cascade(id)

	if err := s.gateway.SaveIngredients(s.snapshotIngredients()); err != nil {
		return true, fmt.Errorf("save ingredients: %w", err)
	}
	if cascaded {
		if err := s.gateway.SaveRecipes(s.snapshotRecipes()); err != nil {
			return true, fmt.Errorf("save recipes: %w", err)
		}
	}
	return true, nil
}

// Recipes returns a deep copy of every recipe.
func (s *Store) Recipes() []models.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Recipe, 0, len(s.recipes))
	for _, recipe := range s.recipes {
		out = append(out, copyRecipe(recipe))
	}
	return out
}

// Recipe returns a deep copy of a single recipe by id.
func (s *Store) Recipe(id string) (models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipe, ok := s.recipesByID[id]
	if !ok {
		return models.Recipe{}, &NotFoundError{Kind: "recipe", ID: id}
	}
	return copyRecipe(recipe), nil
}

// UpsertRecipe creates or replaces a recipe. Unlinked lines that look like
// real ingredients are resolved against the current catalog before the
// recipe is recomputed and saved. Lines the caller filtered out as labels
// are kept verbatim but never resolved.
func (s *Store) UpsertRecipe(fields models.Recipe) (models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(fields.Name) == "" {
		fields.Name = "New Recipe"
	}

	id := fields.ID
	if id == "" {
		id = models.RecipeID(fields.Name)
	}

	recipe, exists := s.recipesByID[id]
	if !exists {
		recipe = &models.Recipe{ID: id}
		s.recipes = append(s.recipes, recipe)
		s.recipesByID[id] = recipe
	} else {
		s.unindexRecipe(recipe)
	}

	recipe.Name = fields.Name
	recipe.Concept = fields.Concept
	recipe.SubmittedBy = fields.SubmittedBy
	recipe.Portions = fields.Portions
	if recipe.Portions == 0 {
		recipe.Portions = 1
	}
	recipe.PrepTimeMinutes = fields.PrepTimeMinutes
	recipe.LaborCost = fields.LaborCost
	recipe.SalePrice = fields.SalePrice
	recipe.MarginFactor = fields.MarginFactor
	if recipe.MarginFactor == 0 {
		recipe.MarginFactor = models.DefaultMarginFactor
	}
	recipe.Ingredients = append([]models.RecipeIngredient(nil), fields.Ingredients...)

	catalogRows := s.snapshotIngredients()
	for i := range recipe.Ingredients {
		line := &recipe.Ingredients[i]
		if line.IngredientID != "" {
			continue
		}
		if !match.Candidate(line.Name, line.Quantity, line.UnitCost) {
			continue
		}
		result := match.Resolve(line.Name, line.UnitCost, catalogRows, match.DefaultThreshold)
		line.IngredientID = result.IngredientID
		line.MatchConfidence = result.Confidence
		line.MatchReason = result.Reason
	}

	s.indexRecipe(recipe)
	s.recalcRecipe(recipe)

	if err := s.gateway.SaveRecipes(s.snapshotRecipes()); err != nil {
		return copyRecipe(recipe), fmt.Errorf("save recipes: %w", err)
	}
	return copyRecipe(recipe), nil
}

// DeleteRecipe removes a recipe and its reverse-index entries.
func (s *Store) DeleteRecipe(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, ok := s.recipesByID[id]
	if !ok {
		return false, nil
	}

	s.unindexRecipe(recipe)
	delete(s.recipesByID, id)
	for i, r := range s.recipes {
		if r.ID == id {
			s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
			break
		}
	}

	if err := s.gateway.SaveRecipes(s.snapshotRecipes()); err != nil {
		return true, fmt.Errorf("save recipes: %w", err)
	}
	return true, nil
}

// LinkIngredient manually links one recipe line to a catalog row, bypassing
// the resolver: confidence 1.0, reason manual. The owning recipe is
// recomputed and saved before returning.
func (s *Store) LinkIngredient(recipeID string, index int, ingredientID string) (models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, ok := s.recipesByID[recipeID]
	if !ok {
		return models.Recipe{}, &NotFoundError{Kind: "recipe", ID: recipeID}
	}
	if index < 0 || index >= len(recipe.Ingredients) {
		return models.Recipe{}, &NotFoundError{Kind: "recipe ingredient", ID: fmt.Sprintf("%s[%d]", recipeID, index)}
	}
	if _, ok := s.ingredientsByID[ingredientID]; !ok {
		return models.Recipe{}, &NotFoundError{Kind: "ingredient", ID: ingredientID}
	}

	line := &recipe.Ingredients[index]
	line.IngredientID = ingredientID
	line.MatchConfidence = 1.0
	line.MatchReason = models.MatchManual

	s.addDependent(ingredientID, recipeID)
	s.recalcRecipe(recipe)

	if err := s.gateway.SaveRecipes(s.snapshotRecipes()); err != nil {
		return copyRecipe(recipe), fmt.Errorf("save recipes: %w", err)
	}
	return copyRecipe(recipe), nil
}

// Unresolved lists every recipe line needing operator review: no link, a
// link below the 0.8 confidence bar, or a link whose catalog row was
// deleted. Read-only diagnostic view, not a stored state.
func (s *Store) Unresolved() []UnresolvedIngredient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []UnresolvedIngredient
	for _, recipe := range s.recipes {
		for i := range recipe.Ingredients {
			line := recipe.Ingredients[i]

			dangling := false
			if line.IngredientID != "" {
				_, linked := s.ingredientsByID[line.IngredientID]
				dangling = !linked
			}

			if line.IngredientID != "" && line.MatchConfidence >= 0.8 && !dangling {
				continue
			}

			out = append(out, UnresolvedIngredient{
				RecipeID:   recipe.ID,
				RecipeName: recipe.Name,
				Index:      i,
				Name:       line.Name,
				UnitCost:   line.UnitCost,
				LinkedID:   line.IngredientID,
				Confidence: line.MatchConfidence,
				Reason:     line.MatchReason,
				Dangling:   dangling,
			})
		}
	}
	return out
}

// RecalculateIngredient re-runs ingredient-level propagation and its
// cascade for an existing row. Unknown ids are a data-integrity error.
func (s *Store) RecalculateIngredient(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ing, ok := s.ingredientsByID[id]
	if !ok {
		return &DataIntegrityError{Op: "recalculate ingredient", Detail: fmt.Sprintf("unknown ingredient %q", id)}
	}

	recalcIngredient(ing)
	cascaded := s.cascade(id)

	if err := s.gateway.SaveIngredients(s.snapshotIngredients()); err != nil {
		return fmt.Errorf("save ingredients: %w", err)
	}
	if cascaded {
		if err := s.gateway.SaveRecipes(s.snapshotRecipes()); err != nil {
			return fmt.Errorf("save recipes: %w", err)
		}
	}
	return nil
}

// RecalculateRecipe re-runs recipe-level propagation for an existing
// recipe. Unknown ids are a data-integrity error.
func (s *Store) RecalculateRecipe(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, ok := s.recipesByID[id]
	if !ok {
		return &DataIntegrityError{Op: "recalculate recipe", Detail: fmt.Sprintf("unknown recipe %q", id)}
	}

	s.recalcRecipe(recipe)

	if err := s.gateway.SaveRecipes(s.snapshotRecipes()); err != nil {
		return fmt.Errorf("save recipes: %w", err)
	}
	return nil
}

func (s *Store) indexRecipe(recipe *models.Recipe) {
	for i := range recipe.Ingredients {
		if id := recipe.Ingredients[i].IngredientID; id != "" {
			s.addDependent(id, recipe.ID)
		}
	}
}

func (s *Store) unindexRecipe(recipe *models.Recipe) {
	for i := range recipe.Ingredients {
		if id := recipe.Ingredients[i].IngredientID; id != "" {
			if set, ok := s.dependents[id]; ok {
				delete(set, recipe.ID)
				if len(set) == 0 {
					delete(s.dependents, id)
				}
			}
		}
	}
}

func (s *Store) addDependent(ingredientID, recipeID string) {
	set, ok := s.dependents[ingredientID]
	if !ok {
		set = make(map[string]struct{})
		s.dependents[ingredientID] = set
	}
	set[recipeID] = struct{}{}
}

func (s *Store) snapshotIngredients() []models.Ingredient {
	out := make([]models.Ingredient, 0, len(s.ingredients))
	for _, ing := range s.ingredients {
		out = append(out, *ing)
	}
	return out
}

func (s *Store) snapshotRecipes() []models.Recipe {
	out := make([]models.Recipe, 0, len(s.recipes))
	for _, recipe := range s.recipes {
		out = append(out, copyRecipe(recipe))
	}
	return out
}

func copyRecipe(recipe *models.Recipe) models.Recipe {
	out := *recipe
	out.Ingredients = append([]models.RecipeIngredient(nil), recipe.Ingredients...)
	return out
}
