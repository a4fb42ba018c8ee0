package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/aquamarinepk/aqm"
	"golang.org/x/sync/errgroup"
)

var ErrMenuItemNotFound = errors.New("menu item not found")

// Catalog is an in-memory snapshot of active menu items. It implements
// lifecycle.MenuCatalog.
type Catalog struct {
	items map[lifecycle.MenuItemID]MenuItem
	err   error
}

func NewCatalog(items []MenuItem) *Catalog {
	c := &Catalog{items: make(map[lifecycle.MenuItemID]MenuItem, len(items))}
	for _, it := range items {
		c.items[it.ID] = it
	}
	return c
}

func (c *Catalog) Lookup(id lifecycle.MenuItemID) (MenuItem, error) {
	if c.err != nil {
		return MenuItem{}, c.err
	}
	it, ok := c.items[id]
	if !ok {
		return MenuItem{}, fmt.Errorf("%s: %w", id, ErrMenuItemNotFound)
	}
	return it, nil
}

func (c *Catalog) LookupStation(id lifecycle.MenuItemID) (string, error) {
	it, err := c.Lookup(id)
	if err != nil {
		return "", err
	}
	return it.Station, nil
}

func (c *Catalog) LookupPrepTime(id lifecycle.MenuItemID) (int, error) {
	it, err := c.Lookup(id)
	if err != nil {
		return 0, err
	}
	if it.PrepMinutes <= 0 {
		return 0, fmt.Errorf("%s has no prep time", id)
	}
	return it.PrepMinutes, nil
}

func (c *Catalog) LookupAllergens(id lifecycle.MenuItemID) ([]string, error) {
	it, err := c.Lookup(id)
	if err != nil {
		return nil, err
	}
	return it.Allergens, nil
}

// Roster is a snapshot of kitchen staff on shift. It implements
// lifecycle.StaffRoster.
type Roster struct {
	staff []lifecycle.StaffMember
	err   error
}

func NewRoster(staff []Staff, loads map[string]int) *Roster {
	r := &Roster{}
	for _, s := range staff {
		if !s.Active || !s.IsKitchen() {
			continue
		}
		r.staff = append(r.staff, lifecycle.StaffMember{
			ID:          s.ID,
			Name:        s.Name,
			CurrentLoad: loads[s.Key()],
		})
	}
	return r
}

func (r *Roster) ActiveKitchenStaff() ([]lifecycle.StaffMember, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.staff, nil
}

// Snapshotter builds catalog and roster snapshots from the repositories.
type Snapshotter struct {
	items  MenuItemRepo
	staff  StaffRepo
	loads  LoadSource
	logger aqm.Logger
}

func NewSnapshotter(items MenuItemRepo, staff StaffRepo, loads LoadSource, logger aqm.Logger) *Snapshotter {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Snapshotter{items: items, staff: staff, loads: loads, logger: logger}
}

// Snapshot loads menu items and staff concurrently. A failing repository
// does not fail the snapshot: the affected side answers every lookup with
// the load error so callers fall back to their defaults.
func (s *Snapshotter) Snapshot(ctx context.Context) (*Catalog, *Roster) {
	var (
		items    []MenuItem
		staff    []Staff
		itemsErr error
		staffErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.items == nil {
			itemsErr = errors.New("no menu item repository")
			return nil
		}
		items, itemsErr = s.items.ListActive(gctx)
		return nil
	})
	g.Go(func() error {
		if s.staff == nil {
			staffErr = errors.New("no staff repository")
			return nil
		}
		staff, staffErr = s.staff.ListActive(gctx)
		return nil
	})
	_ = g.Wait()

	catalog := NewCatalog(items)
	if itemsErr != nil {
		s.logger.Error("menu snapshot degraded", "error", itemsErr)
		catalog.err = fmt.Errorf("load menu items: %w", itemsErr)
	}

	var loads map[string]int
	if s.loads != nil {
		loads = s.loads.ChefLoads()
	}
	roster := NewRoster(staff, loads)
	if staffErr != nil {
		s.logger.Error("staff snapshot degraded", "error", staffErr)
		roster.err = fmt.Errorf("load staff: %w", staffErr)
	}

	return catalog, roster
}
