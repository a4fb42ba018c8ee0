package lifecycle

import (
	"sort"
	"time"

	"github.com/appetiteclub/lifecycle/pkg/enums/itemstatus"
	"github.com/appetiteclub/lifecycle/pkg/enums/station"
	"github.com/google/uuid"
)

// MenuCatalog resolves menu item attributes needed by the kitchen.
type MenuCatalog interface {
	LookupStation(id MenuItemID) (string, error)
	LookupPrepTime(id MenuItemID) (int, error)
	LookupAllergens(id MenuItemID) ([]string, error)
}

// StaffMember is an active kitchen staff member and the number of items
// currently assigned to them in pending or preparing state.
type StaffMember struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CurrentLoad int    `json:"current_load"`
}

// StaffRoster lists the kitchen staff on shift.
type StaffRoster interface {
	ActiveKitchenStaff() ([]StaffMember, error)
}

// Composer turns an accepted Order into a KitchenOrder.
type Composer struct {
	catalog MenuCatalog
	roster  StaffRoster
	newID   func() uuid.UUID
}

func NewComposer(catalog MenuCatalog, roster StaffRoster) *Composer {
	return &Composer{catalog: catalog, roster: roster, newID: uuid.New}
}

// Composition is the ticket produced by Compose plus any collaborator
// lookups that degraded to defaults.
type Composition struct {
	Ticket   KitchenOrder
	Warnings []error
}

// Compose builds one pending KitchenOrderItem per line item. Station
// misses fall back to grill, roster misses leave items unassigned and
// allergen misses raise the alert.
func (c *Composer) Compose(order Order, now time.Time) (Composition, error) {
	if len(order.Items) == 0 {
		return Composition{}, ErrEmptyOrder
	}

	var warnings []error
	chefs := newChefPicker(nil)
	if c.roster != nil {
		staff, err := c.roster.ActiveKitchenStaff()
		if err != nil {
			warnings = append(warnings, &LookupError{Collaborator: "staff roster", Ref: "active kitchen staff", Err: err})
		} else {
			chefs = newChefPicker(staff)
		}
	}

	ticket := KitchenOrder{
		ID:          c.newID(),
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		ServerName:  order.ServerName,
		Items:       make([]KitchenOrderItem, 0, len(order.Items)),
		Status:      itemstatus.Statuses.Pending.Code(),
		Coursing:    CoursingNone,
		Notes:       order.SpecialInstructions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, li := range order.Items {
		st, err := c.station(li.MenuItemID)
		if err != nil {
			warnings = append(warnings, err)
		}

		alert, err := c.allergenAlert(li.MenuItemID)
		if err != nil {
			warnings = append(warnings, err)
		}

		ticket.Items = append(ticket.Items, KitchenOrderItem{
			ID:                c.newID(),
			LineItemID:        li.ID,
			MenuItemID:        li.MenuItemID,
			Name:              li.Name,
			Quantity:          li.Quantity,
			Status:            itemstatus.Statuses.Pending.Code(),
			Station:           st,
			Chef:              chefs.pick(),
			ModificationNotes: li.Notes,
			AllergenAlert:     alert,
		})
	}

	return Composition{Ticket: ticket, Warnings: warnings}, nil
}

func (c *Composer) station(id MenuItemID) (string, error) {
	if c.catalog == nil {
		return station.Default.Code(), &LookupError{Collaborator: "menu catalog", Ref: id.String()}
	}
	code, err := c.catalog.LookupStation(id)
	if err != nil {
		return station.Default.Code(), &LookupError{Collaborator: "menu catalog", Ref: id.String(), Err: err}
	}
	if station.ByName(code) == nil {
		return station.Default.Code(), &LookupError{Collaborator: "menu catalog", Ref: id.String()}
	}
	return code, nil
}

func (c *Composer) allergenAlert(id MenuItemID) (bool, error) {
	if c.catalog == nil {
		return true, &LookupError{Collaborator: "menu catalog", Ref: id.String()}
	}
	allergens, err := c.catalog.LookupAllergens(id)
	if err != nil {
		return true, &LookupError{Collaborator: "menu catalog", Ref: id.String(), Err: err}
	}
	return len(allergens) > 0, nil
}

// chefPicker assigns the least loaded staff member, lowest id on ties.
// Items assigned during the same composition count towards the load.
type chefPicker struct {
	staff []StaffMember
}

func newChefPicker(staff []StaffMember) *chefPicker {
	s := make([]StaffMember, len(staff))
	copy(s, staff)
	return &chefPicker{staff: s}
}

func (p *chefPicker) pick() string {
	if len(p.staff) == 0 {
		return ""
	}

	sort.SliceStable(p.staff, func(a, b int) bool {
		if p.staff[a].CurrentLoad != p.staff[b].CurrentLoad {
			return p.staff[a].CurrentLoad < p.staff[b].CurrentLoad
		}
		return p.staff[a].ID < p.staff[b].ID
	})

	chosen := &p.staff[0]
	chosen.CurrentLoad++
	if chosen.Name != "" {
		return chosen.Name
	}
	return chosen.ID
}
