package menu

import (
	"context"

	"github.com/google/uuid"
)

type MenuItemRepo interface {
	Create(ctx context.Context, item *MenuItem) error
	Get(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	ListActive(ctx context.Context) ([]MenuItem, error)
}

type StaffRepo interface {
	Create(ctx context.Context, s *Staff) error
	ListActive(ctx context.Context) ([]Staff, error)
}

// LoadSource reports how many pending or preparing items each chef holds.
type LoadSource interface {
	ChefLoads() map[string]int
}
