package seeding

import (
	"context"
	"fmt"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/appetiteclub/lifecycle/pkg/enums/itemstatus"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// DemoServer marks orders created by the demo seed.
const DemoServer = "demo-seed"

// Placer is the slice of the lifecycle service the seed drives.
type Placer interface {
	PlaceOrder(ctx context.Context, order lifecycle.Order) (lifecycle.PlaceResult, error)
	TransitionItem(ctx context.Context, ticketID lifecycle.KitchenOrderID, req lifecycle.ItemTransition) (lifecycle.TransitionResult, error)
}

// DemoOrder is an order to place plus how far its items are advanced.
type DemoOrder struct {
	Order    lifecycle.Order
	Progress string
}

type line struct {
	menuItem string
	qty      int
	notes    string
}

func demoOrder(table string, guests int, progress string, lines ...line) DemoOrder {
	o := lifecycle.Order{
		TableNumber: table,
		ServerName:  DemoServer,
		GuestCount:  guests,
	}
	for _, l := range lines {
		o.Items = append(o.Items, lifecycle.LineItem{
			MenuItemID: uuid.MustParse(l.menuItem),
			Quantity:   l.qty,
			Notes:      l.notes,
		})
	}
	return DemoOrder{Order: o, Progress: progress}
}

// Menu ids match the demo menu seeded by the service.
const (
	burger    = "6f1c2b9e-0000-4000-8000-000000000001"
	steak     = "6f1c2b9e-0000-4000-8000-000000000002"
	fries     = "6f1c2b9e-0000-4000-8000-000000000003"
	calamari  = "6f1c2b9e-0000-4000-8000-000000000004"
	caesar    = "6f1c2b9e-0000-4000-8000-000000000005"
	soup      = "6f1c2b9e-0000-4000-8000-000000000006"
	carpaccio = "6f1c2b9e-0000-4000-8000-000000000007"
	tiramisu  = "6f1c2b9e-0000-4000-8000-000000000008"
	lemonade  = "6f1c2b9e-0000-4000-8000-000000000009"
)

// DemoOrders spreads tickets over every item status and several stations.
func DemoOrders() []DemoOrder {
	pending := itemstatus.Statuses.Pending.Code()
	preparing := itemstatus.Statuses.Preparing.Code()
	ready := itemstatus.Statuses.Ready.Code()
	delivered := itemstatus.Statuses.Delivered.Code()

	return []DemoOrder{
		demoOrder("1", 2, pending,
			line{burger, 2, "one medium, one well done"},
			line{fries, 2, ""},
			line{lemonade, 2, ""},
		),
		demoOrder("2", 4, preparing,
			line{steak, 1, "rare"},
			line{caesar, 2, "no anchovies"},
			line{soup, 1, ""},
		),
		demoOrder("3", 3, ready,
			line{calamari, 1, ""},
			line{carpaccio, 1, ""},
			line{lemonade, 3, ""},
		),
		demoOrder("4", 6, pending,
			line{burger, 3, ""},
			line{steak, 2, ""},
			line{fries, 3, "extra salt"},
			line{caesar, 1, ""},
			line{tiramisu, 2, ""},
		),
		demoOrder("5", 2, delivered,
			line{soup, 2, ""},
			line{tiramisu, 2, ""},
		),
	}
}

// progression lists the item statuses walked to reach target.
func progression(target string) []string {
	steps := []string{
		itemstatus.Statuses.Preparing.Code(),
		itemstatus.Statuses.Ready.Code(),
		itemstatus.Statuses.Delivered.Code(),
	}
	for i, s := range steps {
		if s == target {
			return steps[:i+1]
		}
	}
	return nil
}

// SeedOrders places every demo order through the lifecycle service and
// advances its items, so tickets and cascades are real.
func SeedOrders(ctx context.Context, placer Placer, orders []DemoOrder, logger aqm.Logger) (int, error) {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	placed := 0
	for _, demo := range orders {
		res, err := placer.PlaceOrder(ctx, demo.Order)
		if err != nil {
			return placed, fmt.Errorf("place demo order for table %s: %w", demo.Order.TableNumber, err)
		}
		placed++

		for _, step := range progression(demo.Progress) {
			for _, item := range res.KitchenOrder.Items {
				tr, err := placer.TransitionItem(ctx, res.KitchenOrder.ID, lifecycle.ItemTransition{
					ItemID: item.ID,
					Status: step,
				})
				if err != nil {
					return placed, fmt.Errorf("advance demo item %s to %s: %w", item.Name, step, err)
				}
				if tr.Partial() {
					logger.Info("Demo order did not follow its ticket", "order_id", res.Order.ID, "error", tr.CascadeErr)
				}
			}
		}
		logger.Info("Demo order placed", "table", demo.Order.TableNumber, "progress", demo.Progress)
	}
	return placed, nil
}
