package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/lifecycle/cmd/utils/internal/seeding"
	"github.com/appetiteclub/lifecycle/internal/kitchen"
	"github.com/appetiteclub/lifecycle/internal/menu"
	"github.com/appetiteclub/lifecycle/internal/mongo"
	"github.com/aquamarinepk/aqm"
)

// SeedDemo seeds the demo menu and staff, then places demo orders through
// the lifecycle service so tickets carry real stations and cascades.
func SeedDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo seeding process...")

	store, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer store.Stop(ctx)

	db := store.GetDatabase()
	menuItems := mongo.NewMenuItemRepo(db)
	staff := mongo.NewStaffRepo(db)

	if err := menu.ApplyDemoSeeds(ctx, menu.Repos{MenuItems: menuItems, Staff: staff}, db, logger); err != nil {
		return err
	}

	count, err := mongo.CountOrdersByServer(ctx, db, seeding.DemoServer)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Demo orders already present, skipping", "count", count)
		return nil
	}

	service := kitchen.NewService(kitchen.ServiceDeps{
		Orders:       mongo.NewOrderRepo(db),
		Tickets:      mongo.NewTicketRepo(db),
		Reservations: mongo.NewReservationRepo(db),
		Snapshots:    menu.NewSnapshotter(menuItems, staff, nil, logger),
		Logger:       logger,
	})

	placed, err := seeding.SeedOrders(ctx, service, seeding.DemoOrders(), logger)
	if err != nil {
		return fmt.Errorf("seed demo orders: %w", err)
	}

	logger.Info("Demo orders seeded", "count", placed)
	return nil
}
