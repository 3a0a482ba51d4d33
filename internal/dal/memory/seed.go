package memory

import (
	"fmt"

	"github.com/corray333/littlelemon/internal/service/models/category"
	"github.com/corray333/littlelemon/internal/service/models/menuitem"
	"github.com/corray333/littlelemon/internal/service/models/user"
	"github.com/shopspring/decimal"
)

// Seed is the initial content of a memory store, read from the storage.memory.seed config key.
type Seed struct {
	Categories []SeedCategory `mapstructure:"categories"`
	MenuItems  []SeedMenuItem `mapstructure:"menu_items"`
	Users      []SeedUser     `mapstructure:"users"`
}

type SeedCategory struct {
	Slug  string `mapstructure:"slug"`
	Title string `mapstructure:"title"`
}

type SeedMenuItem struct {
	Title    string `mapstructure:"title"`
	Price    string `mapstructure:"price"`
	Category string `mapstructure:"category"`
	Featured bool   `mapstructure:"featured"`
}

type SeedUser struct {
	Username string   `mapstructure:"username"`
	Email    string   `mapstructure:"email"`
	Groups   []string `mapstructure:"groups"`
}

// Load fills the store with seed. Menu items reference categories by slug.
func (s *Store) Load(seed Seed) error {
	slugs := make(map[string]int64, len(seed.Categories))
	for _, c := range seed.Categories {
		stored := s.AddCategory(category.Category{Slug: c.Slug, Title: c.Title})
		slugs[c.Slug] = stored.ID
	}

	for _, m := range seed.MenuItems {
		price, err := decimal.NewFromString(m.Price)
		if err != nil {
			return fmt.Errorf("invalid price %q of menu item %q: %w", m.Price, m.Title, err)
		}

		categoryID, ok := slugs[m.Category]
		if !ok {
			return fmt.Errorf("menu item %q references unknown category %q", m.Title, m.Category)
		}

		s.AddMenuItem(menuitem.MenuItem{
			Title:      m.Title,
			Price:      price,
			CategoryID: categoryID,
			Featured:   m.Featured,
		})
	}

	for _, u := range seed.Users {
		s.AddUser(user.User{Username: u.Username, Email: u.Email, Groups: u.Groups})
	}

	return nil
}
