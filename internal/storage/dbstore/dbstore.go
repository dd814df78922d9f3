// Package dbstore persists the catalog in a relational database through
// gorm. Ingredients map to columns; a recipe's ingredient lines travel as a
// single JSON document column, so the recipe row stays the unit of
// persistence the catalog expects.
package dbstore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"brewcost/internal/config"
	"brewcost/models"
)

// Store is a storage.Gateway backed by a gorm connection.
type Store struct {
	db *gorm.DB
}

type recipeRow struct {
	ID              string `gorm:"primaryKey;size:12"`
	Name            string `gorm:"not null"`
	Concept         string
	SubmittedBy     string
	Portions        int `gorm:"not null;default:1"`
	PrepTimeMinutes *float64
	LaborCost       *float64
	SalePrice       *float64
	MarginFactor    float64        `gorm:"not null;default:1.66"`
	Lines           datatypes.JSON `gorm:"not null"`
	CostPerRecipe   *float64
	CostPerPortion  *float64
	CostPlusLabor   *float64
	MinSalePrice    *float64
	ProfitPerSale   *float64
}

func (recipeRow) TableName() string { return "recipes" }

// Open connects to the database named by cfg.URL, applies the schema and
// returns a Store. A postgres:// URL selects the postgres driver; anything
// else is treated as a sqlite file path.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	gormCfg := &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(cfg.URL, "postgres://") || strings.HasPrefix(cfg.URL, "postgresql://") {
		dialector = postgres.Open(cfg.URL)
	} else {
		dialector = sqlite.Open(cfg.URL)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := db.AutoMigrate(&models.Ingredient{}, &recipeRow{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying gorm handle for collaborators that manage their
// own tables, such as the authentication handlers.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// LoadIngredients reads the full ingredient collection in name order.
func (s *Store) LoadIngredients() ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := s.db.Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	return ingredients, nil
}

// LoadRecipes reads the full recipe collection, decoding each row's line
// document.
func (s *Store) LoadRecipes() ([]models.Recipe, error) {
	var rows []recipeRow
	if err := s.db.Order("name asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}

	recipes := make([]models.Recipe, 0, len(rows))
	for _, row := range rows {
		recipe, err := row.toRecipe()
		if err != nil {
			return nil, fmt.Errorf("load recipe %q: %w", row.ID, err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// SaveIngredients replaces the ingredient collection in one transaction.
func (s *Store) SaveIngredients(ingredients []models.Ingredient) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Ingredient{}).Error; err != nil {
			return fmt.Errorf("clear ingredients: %w", err)
		}
		if len(ingredients) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(ingredients, 200).Error; err != nil {
			return fmt.Errorf("write ingredients: %w", err)
		}
		return nil
	})
}

// SaveRecipes replaces the recipe collection in one transaction.
func (s *Store) SaveRecipes(recipes []models.Recipe) error {
	rows := make([]recipeRow, 0, len(recipes))
	for i := range recipes {
		row, err := toRow(recipes[i])
		if err != nil {
			return fmt.Errorf("encode recipe %q: %w", recipes[i].ID, err)
		}
		rows = append(rows, row)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&recipeRow{}).Error; err != nil {
			return fmt.Errorf("clear recipes: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("write recipes: %w", err)
		}
		return nil
	})
}

func toRow(recipe models.Recipe) (recipeRow, error) {
	lines := recipe.Ingredients
	if lines == nil {
		lines = []models.RecipeIngredient{}
	}
	document, err := json.Marshal(lines)
	if err != nil {
		return recipeRow{}, err
	}

	return recipeRow{
		ID:              recipe.ID,
		Name:            recipe.Name,
		Concept:         recipe.Concept,
		SubmittedBy:     recipe.SubmittedBy,
		Portions:        recipe.Portions,
		PrepTimeMinutes: recipe.PrepTimeMinutes,
		LaborCost:       recipe.LaborCost,
		SalePrice:       recipe.SalePrice,
		MarginFactor:    recipe.MarginFactor,
		Lines:           datatypes.JSON(document),
		CostPerRecipe:   recipe.CostPerRecipe,
		CostPerPortion:  recipe.CostPerPortion,
		CostPlusLabor:   recipe.CostPlusLabor,
		MinSalePrice:    recipe.MinSalePrice,
		ProfitPerSale:   recipe.ProfitPerSale,
	}, nil
}

func (row recipeRow) toRecipe() (models.Recipe, error) {
	var lines []models.RecipeIngredient
	if len(row.Lines) > 0 {
		if err := json.Unmarshal(row.Lines, &lines); err != nil {
			return models.Recipe{}, err
		}
	}

	return models.Recipe{
		ID:              row.ID,
		Name:            row.Name,
		Concept:         row.Concept,
		SubmittedBy:     row.SubmittedBy,
		Portions:        row.Portions,
		PrepTimeMinutes: row.PrepTimeMinutes,
		LaborCost:       row.LaborCost,
		SalePrice:       row.SalePrice,
		MarginFactor:    row.MarginFactor,
		Ingredients:     lines,
		CostPerRecipe:   row.CostPerRecipe,
		CostPerPortion:  row.CostPerPortion,
		CostPlusLabor:   row.CostPlusLabor,
		MinSalePrice:    row.MinSalePrice,
		ProfitPerSale:   row.ProfitPerSale,
	}, nil
}
