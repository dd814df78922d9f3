// Command import_recipes loads a costing workbook into the catalog. The
// workbook carries an Ingredients sheet (Name, Category, Cost, Units, Unit
// Sale, Supplier, Notes) and a Recipes sheet with one row per ingredient
// line (Recipe, Ingredient, Quantity, Unit Cost, Portions, Sale Price,
// Labor Cost). Rows that look like section labels rather than ingredients
// are kept on the recipe but never linked; everything else runs through the
// resolver, and lines it cannot place are printed for manual review.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"brewcost/internal/catalog"
	"brewcost/internal/config"
	"brewcost/internal/storage"
	"brewcost/internal/storage/dbstore"
	"brewcost/internal/storage/jsonstore"
	"brewcost/models"
)

const (
	ingredientSheet = "Ingredients"
	recipeSheet     = "Recipes"
)

func main() {
	workbookPath := "costing.xlsx"
	if len(os.Args) > 1 {
		workbookPath = os.Args[1]
	}

	if err := run(workbookPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(workbookPath string) error {
	if strings.TrimSpace(workbookPath) == "" {
		return fmt.Errorf("workbook path must not be empty")
	}
	if _, err := os.Stat(workbookPath); err != nil {
		return fmt.Errorf("locate workbook: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var gateway storage.Gateway
	if cfg.Database.URL != "" {
		store, err := dbstore.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		gateway = store
	} else {
		store, err := jsonstore.New(cfg.Data.Dir)
		if err != nil {
			return fmt.Errorf("open document store: %w", err)
		}
		gateway = store
	}

	cat, err := catalog.Open(gateway)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}

	workbook, err := excelize.OpenFile(workbookPath)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	ingredients, err := readIngredientSheet(workbook)
	if err != nil {
		return fmt.Errorf("read ingredient sheet: %w", err)
	}
	for _, ing := range ingredients {
		if _, err := cat.UpsertIngredient(ing); err != nil {
			return fmt.Errorf("import ingredient %q: %w", ing.Name, err)
		}
	}

	recipes, err := readRecipeSheet(workbook)
	if err != nil {
		return fmt.Errorf("read recipe sheet: %w", err)
	}
	for _, recipe := range recipes {
		if _, err := cat.UpsertRecipe(recipe); err != nil {
			return fmt.Errorf("import recipe %q: %w", recipe.Name, err)
		}
	}

	fmt.Printf("imported %d ingredients and %d recipes\n", len(ingredients), len(recipes))

	unresolved := cat.Unresolved()
	if len(unresolved) == 0 {
		return nil
	}
	fmt.Printf("%d recipe lines need manual review:\n", len(unresolved))
	for _, row := range unresolved {
		fmt.Printf("  %s: %q (confidence %.2f)\n", row.RecipeName, row.Name, row.Confidence)
	}
	return nil
}

func readIngredientSheet(workbook *excelize.File) ([]models.Ingredient, error) {
	rows, err := workbook.GetRows(ingredientSheet)
	if err != nil {
		return nil, err
	}

	var out []models.Ingredient
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		name := strings.TrimSpace(cell(row, 0))
		if name == "" {
			continue
		}
		out = append(out, models.Ingredient{
			Name:     name,
			Category: strings.TrimSpace(cell(row, 1)),
			Cost:     parseCell(cell(row, 2)),
			Units:    parseCell(cell(row, 3)),
			UnitSale: parseCell(cell(row, 4)),
			Supplier: strings.TrimSpace(cell(row, 5)),
			Notes:    strings.TrimSpace(cell(row, 6)),
		})
	}
	return out, nil
}

func readRecipeSheet(workbook *excelize.File) ([]models.Recipe, error) {
	rows, err := workbook.GetRows(recipeSheet)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*models.Recipe)
	var order []string

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		recipeName := strings.TrimSpace(cell(row, 0))
		if recipeName == "" {
			continue
		}

		recipe, ok := byName[recipeName]
		if !ok {
			recipe = &models.Recipe{Name: recipeName, Portions: 1}
			byName[recipeName] = recipe
			order = append(order, recipeName)
		}

		// Recipe-level values repeat on each row; the first non-empty wins.
		if recipe.Portions <= 1 {
			if portions := parseCell(cell(row, 4)); portions != nil && *portions > 0 {
				recipe.Portions = int(*portions)
			}
		}
		if recipe.SalePrice == nil {
			recipe.SalePrice = parseCell(cell(row, 5))
		}
		if recipe.LaborCost == nil {
			recipe.LaborCost = parseCell(cell(row, 6))
		}

		lineName := strings.TrimSpace(cell(row, 1))
		if lineName == "" {
			continue
		}
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			Name:     lineName,
			Quantity: parseCell(cell(row, 2)),
			UnitCost: parseCell(cell(row, 3)),
		})
	}

	out := make([]models.Recipe, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

func cell(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return row[index]
}

// parseCell reads a workbook cell as an optional number. Currency symbols
// and thousands separators survive the spreadsheet export, so strip them
// before parsing; anything still unparseable is treated as absent.
func parseCell(raw string) *float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}
