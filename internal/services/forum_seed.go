package services

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultCategories []byte

type categoryFile struct {
	Categories []models.ForumCategory `yaml:"categories"`
}

// ParseCategories decodes a category seed file. Empty data means the built-in set.
func ParseCategories(data []byte) ([]models.ForumCategory, error) {
	if len(data) == 0 {
		data = defaultCategories
	}
	var f categoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	seen := make(map[string]bool, len(f.Categories))
	for i := range f.Categories {
		c := &f.Categories[i]
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("category %d: %w", i, err)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate category id %q", c.ID)
		}
		seen[c.ID] = true
	}
	return f.Categories, nil
}

// SeedCategories upserts the categories in data. Running it again is harmless.
func SeedCategories(ctx context.Context, forum store.ForumStore, data []byte) (int, error) {
	cats, err := ParseCategories(data)
	if err != nil {
		return 0, err
	}
	for i := range cats {
		if err := forum.UpsertCategory(ctx, &cats[i]); err != nil {
			return i, fmt.Errorf("seed category %s: %w", cats[i].ID, err)
		}
	}
	return len(cats), nil
}
