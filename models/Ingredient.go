package models

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Ingredient is a canonical catalog row: a raw material with its package
// price and the per-unit figures derived from it. CostPerUnit and UnitProfit
// are never edited directly; the catalog recomputes them from their inputs.
type Ingredient struct {
	ID          string   `gorm:"primaryKey;size:12" json:"id"`
	Name        string   `gorm:"not null" json:"name"`
	Category    string   `gorm:"not null;default:Uncategorized" json:"category"`
	Cost        *float64 `json:"cost"`
	Units       *float64 `json:"units"`
	CostPerUnit *float64 `json:"cost_per_unit"`
	UnitSale    *float64 `json:"unit_sale"`
	UnitProfit  *float64 `json:"unit_profit"`
	CaseProfit  *float64 `json:"case_profit"`
	Supplier    string   `json:"supplier,omitempty"`
	Notes       string   `gorm:"type:text" json:"notes,omitempty"`
}

// IngredientID derives the stable identifier for a (category, name) pair.
// Two rows that normalize to the same pair are the same ingredient.
func IngredientID(category, name string) string {
	key := strings.ToLower(category + ":" + name)
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:12]
}
