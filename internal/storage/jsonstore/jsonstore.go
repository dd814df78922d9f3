// Package jsonstore persists the catalog as two JSON documents in a data
// directory. Writes go through a temp file and rename so a failed save never
// clobbers the previous snapshot.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"brewcost/models"
)

const (
	ingredientsFile = "ingredients.json"
	recipesFile     = "recipes.json"
)

// Store reads and writes the catalog document files under Dir.
type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// LoadIngredients reads the ingredient document; a missing file is an empty
// catalog, not an error.
func (s *Store) LoadIngredients() ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := s.read(ingredientsFile, &ingredients); err != nil {
		return nil, err
	}
	return ingredients, nil
}

// LoadRecipes reads the recipe document; a missing file is an empty set.
func (s *Store) LoadRecipes() ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := s.read(recipesFile, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// SaveIngredients replaces the ingredient document.
func (s *Store) SaveIngredients(ingredients []models.Ingredient) error {
	return s.write(ingredientsFile, ingredients)
}

// SaveRecipes replaces the recipe document.
func (s *Store) SaveRecipes(recipes []models.Recipe) error {
	return s.write(recipesFile, recipes)
}

func (s *Store) read(name string, out any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *Store) write(name string, payload any) error {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	target := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("stage %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("stage %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
