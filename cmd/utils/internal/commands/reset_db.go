package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
)

// ResetDB drops the lifecycle database - USE WITH CAUTION
func ResetDB(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	store, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer store.Stop(ctx)

	db := store.GetDatabase()
	logger.Infof("DANGER: dropping database %s, this cannot be undone", db.Name())

	if err := db.Drop(ctx); err != nil {
		return fmt.Errorf("drop database %s: %w", db.Name(), err)
	}

	logger.Info("Database dropped", "database", db.Name())
	return nil
}
