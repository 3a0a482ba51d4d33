package menusvc

import (
	"context"
	"errors"
	"testing"

	"github.com/corray333/littlelemon/internal/dal/memory"
	"github.com/corray333/littlelemon/internal/service/models/menuitem"
	"github.com/corray333/littlelemon/internal/service/models/sortspec"
	"github.com/corray333/littlelemon/internal/service/svcerr"
)

func newService(t *testing.T) *MenuService {
	t.Helper()

	store := memory.NewStore()
	err := store.Load(memory.Seed{
		Categories: []memory.SeedCategory{
			{Slug: "bakery", Title: "Bakery"},
			{Slug: "drinks", Title: "Drinks"},
		},
		MenuItems: []memory.SeedMenuItem{
			{Title: "cake", Price: "3", Category: "bakery", Featured: true},
			{Title: "bread", Price: "2", Category: "bakery"},
			{Title: "bun", Price: "2", Category: "bakery"},
			{Title: "lemonade", Price: "4.50", Category: "drinks", Featured: true},
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	return MustNewMenuService(WithUnitOfWork(store.Factory()))
}

func titles(items []menuitem.MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}

	return out
}

func TestListMenuItems(t *testing.T) {
	svc := newService(t)
	featured := true

	tests := []struct {
		name  string
		model ListMenuItemsModel
		sort  string
		want  []string
	}{
		{name: "everything", want: []string{"cake", "bread", "bun", "lemonade"}},
		{name: "by category", model: ListMenuItemsModel{CategorySlug: "drinks"}, want: []string{"lemonade"}},
		{name: "unknown category", model: ListMenuItemsModel{CategorySlug: "soups"}, want: []string{}},
		{name: "featured", model: ListMenuItemsModel{Featured: &featured}, want: []string{"cake", "lemonade"}},
		{name: "price then title descending", sort: "price,-title", want: []string{"bun", "bread", "cake", "lemonade"}},
		{name: "price descending", sort: "-price", want: []string{"lemonade", "cake", "bread", "bun"}},
		{name: "paged", model: ListMenuItemsModel{Page: 2, PageSize: 3}, want: []string{"lemonade"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := sortspec.Parse(tt.sort, menuitem.SortFields)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.model.Sort = keys

			items, err := svc.ListMenuItems(context.Background(), tt.model)
			if err != nil {
				t.Fatalf("ListMenuItems() error = %v", err)
			}
			got := titles(items)
			if len(got) != len(tt.want) {
				t.Fatalf("ListMenuItems() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ListMenuItems() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestGetMenuItem(t *testing.T) {
	svc := newService(t)

	item, err := svc.GetMenuItem(context.Background(), 4)
	if err != nil {
		t.Fatalf("GetMenuItem() error = %v", err)
	}
	if item.Title != "lemonade" || item.Price.String() != "4.5" {
		t.Errorf("GetMenuItem() = %+v", item)
	}

	if _, err := svc.GetMenuItem(context.Background(), 40); !errors.Is(err, svcerr.ErrNotFound) {
		t.Errorf("GetMenuItem() error = %v, want not found", err)
	}
}

func TestListCategories(t *testing.T) {
	categories, err := newService(t).ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 2 || categories[0].Slug != "bakery" || categories[1].Slug != "drinks" {
		t.Errorf("ListCategories() = %+v", categories)
	}
}
