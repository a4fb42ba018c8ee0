package menu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/lifecycle/pkg/enums/station"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/seed"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
)

const demoSeedApplication = "lifecycle_demo"

// Repos groups the repositories the demo seeds write to.
type Repos struct {
	MenuItems MenuItemRepo
	Staff     StaffRepo
}

// ApplyDemoSeeds seeds demo menu items and kitchen staff once per database.
func ApplyDemoSeeds(ctx context.Context, repos Repos, db *mongo.Database, logger aqm.Logger) error {
	if db == nil {
		return errors.New("database is required for demo seeding")
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	tracker := seed.NewMongoTracker(db)
	logger.Info("Applying demo menu and staff seeds")
	if err := seed.Apply(ctx, tracker, DemoSeeds(repos), demoSeedApplication); err != nil {
		return fmt.Errorf("demo seed failed: %w", err)
	}
	logger.Info("Demo menu and staff seeds applied")
	return nil
}

func DemoSeeds(repos Repos) []seed.Seed {
	return []seed.Seed{
		{
			ID:          "2025-03-01_demo_menu_items_v1",
			Description: "Create demo menu items with stations, prep times and allergens",
			Run: func(ctx context.Context) error {
				for _, it := range DemoMenuItems() {
					item := it
					if err := repos.MenuItems.Create(ctx, &item); err != nil {
						return fmt.Errorf("seed menu item %s: %w", item.ShortCode, err)
					}
				}
				return nil
			},
		},
		{
			ID:          "2025-03-01_demo_kitchen_staff_v1",
			Description: "Create demo kitchen staff",
			Run: func(ctx context.Context) error {
				for _, s := range DemoStaff() {
					member := s
					if err := repos.Staff.Create(ctx, &member); err != nil {
						return fmt.Errorf("seed staff %s: %w", member.Name, err)
					}
				}
				return nil
			},
		},
	}
}

// DemoMenuItems uses fixed IDs so demo orders can reference them.
func DemoMenuItems() []MenuItem {
	st := station.Stations
	now := time.Now().UTC()
	item := func(id, code, name string, stn station.Station, prep int, price string, allergens ...string) MenuItem {
		return MenuItem{
			ID:          uuid.MustParse(id),
			ShortCode:   code,
			Name:        name,
			Station:     stn.Code(),
			PrepMinutes: prep,
			Allergens:   allergens,
			Price:       decimal.RequireFromString(price),
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	return []MenuItem{
		item("6f1c2b9e-0000-4000-8000-000000000001", "BURG", "Classic Burger", st.Grill, 12, "12.50", "gluten", "dairy"),
		item("6f1c2b9e-0000-4000-8000-000000000002", "STEAK", "Ribeye Steak", st.Grill, 20, "28.00"),
		item("6f1c2b9e-0000-4000-8000-000000000003", "FRIES", "French Fries", st.Fry, 6, "4.25"),
		item("6f1c2b9e-0000-4000-8000-000000000004", "CALA", "Fried Calamari", st.Fry, 9, "11.00", "shellfish", "gluten"),
		item("6f1c2b9e-0000-4000-8000-000000000005", "CAES", "Caesar Salad", st.Salad, 7, "9.75", "egg", "fish", "dairy"),
		item("6f1c2b9e-0000-4000-8000-000000000006", "SOUP", "Tomato Soup", st.Hot, 8, "6.50"),
		item("6f1c2b9e-0000-4000-8000-000000000007", "CARP", "Beef Carpaccio", st.Cold, 10, "14.00"),
		item("6f1c2b9e-0000-4000-8000-000000000008", "TIRA", "Tiramisu", st.Dessert, 5, "7.50", "egg", "dairy", "gluten"),
		item("6f1c2b9e-0000-4000-8000-000000000009", "LEMO", "Lemonade", st.Beverage, 2, "3.50"),
	}
}

func DemoStaff() []Staff {
	now := time.Now().UTC()
	return []Staff{
		{ID: "staff-001", Name: "Marta", Role: RoleChef, Active: true, CreatedAt: now},
		{ID: "staff-002", Name: "Jonas", Role: RoleSousChef, Active: true, CreatedAt: now},
		{ID: "staff-003", Name: "Ines", Role: RoleLineCook, Active: true, CreatedAt: now},
		{ID: "staff-004", Name: "Pablo", Role: RoleLineCook, Active: true, CreatedAt: now},
		{ID: "staff-005", Name: "Lucia", Role: RoleServer, Active: true, CreatedAt: now},
	}
}
