package commands

import (
	"context"

	"github.com/appetiteclub/lifecycle/cmd/utils/internal/seeding"
	"github.com/appetiteclub/lifecycle/internal/mongo"
	"github.com/aquamarinepk/aqm"
)

// ClearDemo removes demo orders and their kitchen orders. The demo menu
// and staff stay; re-seeding them is a no-op.
func ClearDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo data cleanup...")

	store, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer store.Stop(ctx)

	orders, tickets, err := mongo.DeleteByServer(ctx, store.GetDatabase(), seeding.DemoServer)
	if err != nil {
		return err
	}

	logger.Info("Deleted demo kitchen orders", "count", tickets)
	logger.Info("Deleted demo orders", "count", orders)
	return nil
}
