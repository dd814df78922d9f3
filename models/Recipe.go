package models

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// DefaultMarginFactor is the markup multiplier applied when a recipe does
// not specify its own target (a 66% margin target).
const DefaultMarginFactor = 1.66

// Recipe is a costed recipe owning an ordered list of ingredient lines.
// The trailing block of fields is derived by the catalog's propagation pass
// and is absent whenever its inputs are incomplete.
type Recipe struct {
	ID              string   `gorm:"primaryKey;size:12" json:"id"`
	Name            string   `gorm:"not null" json:"name"`
	Concept         string   `json:"concept,omitempty"`
	SubmittedBy     string   `json:"submitted_by,omitempty"`
	Portions        int      `gorm:"not null;default:1" json:"portions"`
	PrepTimeMinutes *float64 `json:"prep_time_minutes"`
	LaborCost       *float64 `json:"labor_cost"`
	SalePrice       *float64 `json:"sale_price"`
	MarginFactor    float64  `gorm:"not null;default:1.66" json:"margin_factor"`

	Ingredients []RecipeIngredient `gorm:"-" json:"ingredients"`

	CostPerRecipe  *float64 `json:"cost_per_recipe"`
	CostPerPortion *float64 `json:"cost_per_portion"`
	CostPlusLabor  *float64 `json:"cost_plus_labor"`
	MinSalePrice   *float64 `json:"min_sale_price"`
	ProfitPerSale  *float64 `json:"profit_per_sale"`
}

// UnmarshalJSON defaults portions to 1 when the document omits it. A stored
// "portions": 0 is kept as written.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type alias Recipe
	r.Portions = 1
	return json.Unmarshal(data, (*alias)(r))
}

// RecipeID derives the stable identifier for a recipe name.
func RecipeID(name string) string {
	key := strings.ToLower("recipe:" + name)
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:12]
}
