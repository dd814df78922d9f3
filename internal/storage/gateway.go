// Package storage defines the persistence boundary for the catalog. The
// catalog treats a Gateway as a synchronous whole-collection load/save
// surface; it never assumes incremental or partial persistence.
package storage

import "brewcost/models"

// Gateway durably stores the catalog collections as structured documents.
// Save calls replace the entire collection; a failed save must leave the
// previously persisted snapshot intact.
type Gateway interface {
	LoadIngredients() ([]models.Ingredient, error)
	LoadRecipes() ([]models.Recipe, error)
	SaveIngredients(ingredients []models.Ingredient) error
	SaveRecipes(recipes []models.Recipe) error
}
