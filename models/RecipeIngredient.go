package models

// Match reasons recorded on a recipe ingredient line. A line is linked
// automatically by the resolver (exact, contains, fuzzy, cost_hint) or by an
// operator (manual); none marks a line the resolver could not place.
const (
	MatchExact    = "exact"
	MatchContains = "contains"
	MatchFuzzy    = "fuzzy"
	MatchCostHint = "cost_hint"
	MatchManual   = "manual"
	MatchNone     = "none"
)

// RecipeIngredient is one free-text line inside a recipe. IngredientID is a
// weak reference into the catalog; when set, UnitCost tracks the linked
// ingredient's CostPerUnit, otherwise it keeps whatever was captured at
// authoring time.
type RecipeIngredient struct {
	Name            string   `json:"name"`
	IngredientID    string   `json:"ingredient_id,omitempty"`
	Quantity        *float64 `json:"quantity"`
	UnitCost        *float64 `json:"unit_cost"`
	TotalCost       *float64 `json:"total_cost"`
	MatchConfidence float64  `json:"match_confidence"`
	MatchReason     string   `json:"match_reason,omitempty"`
}
