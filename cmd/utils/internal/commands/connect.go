package commands

import (
	"context"

	"github.com/appetiteclub/lifecycle/internal/mongo"
	"github.com/aquamarinepk/aqm"
)

// connect opens the lifecycle database described by db.mongo.url and
// db.mongo.name.
func connect(ctx context.Context, config *aqm.Config, logger aqm.Logger) (*mongo.BaseRepo, error) {
	store := mongo.NewBaseRepo(config, logger)
	if err := store.Start(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
