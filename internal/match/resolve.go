package match

import (
	"math"
	"strings"

	"brewcost/models"
)

// DefaultThreshold is the minimum confidence at which a resolved candidate
// is accepted without operator review.
const DefaultThreshold = 0.6

// Result is the outcome of resolving one reference against the catalog.
// IngredientID is empty when no candidate cleared the threshold; Confidence
// then carries the best score seen so operators can triage near-misses.
type Result struct {
	IngredientID string
	Confidence   float64
	Reason       string
}

// Resolve finds the best canonical ingredient for a free-text reference.
//
// Two ordered passes keep a single running best candidate. The first pass
// compares normalized names: equality short-circuits with confidence 1.0,
// substring containment records a 0.9 candidate. The second pass scores every
// catalog row with an edit-distance ratio, boosted when the observed unit
// cost sits close to the candidate's cost per unit (+0.2 inside a cent, +0.1
// inside a dime), clamped at 1.0. Ties keep the first candidate seen.
func Resolve(name string, observedUnitCost *float64, catalog []models.Ingredient, threshold float64) Result {
	reference := Normalize(name)
	if reference == "" {
		return Result{Reason: models.MatchNone}
	}

	best := Result{Reason: models.MatchNone}

	for i := range catalog {
		candidate := Normalize(catalog[i].Name)
		if candidate == "" {
			continue
		}

		if reference == candidate {
			return Result{IngredientID: catalog[i].ID, Confidence: 1.0, Reason: models.MatchExact}
		}

		if strings.Contains(reference, candidate) || strings.Contains(candidate, reference) {
			if 0.9 > best.Confidence {
				best = Result{IngredientID: catalog[i].ID, Confidence: 0.9, Reason: models.MatchContains}
			}
		}
	}

	for i := range catalog {
		score := Similarity(reference, Normalize(catalog[i].Name))
		reason := models.MatchFuzzy

		if observedUnitCost != nil && catalog[i].CostPerUnit != nil {
			diff := math.Abs(*observedUnitCost - *catalog[i].CostPerUnit)
			switch {
			case diff < 0.01:
				score += 0.2
			case diff < 0.1:
				score += 0.1
			}
			if diff < 0.1 {
				reason = models.MatchCostHint
			}
		}

		if score > 1.0 {
			score = 1.0
		}

		if score > best.Confidence {
			best = Result{IngredientID: catalog[i].ID, Confidence: score, Reason: reason}
		}
	}

	if best.IngredientID != "" && best.Confidence >= threshold {
		return best
	}

	return Result{Confidence: best.Confidence, Reason: models.MatchNone}
}
