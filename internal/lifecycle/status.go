package lifecycle

import (
	"github.com/appetiteclub/lifecycle/pkg/enums/itemstatus"
	"github.com/appetiteclub/lifecycle/pkg/enums/orderstatus"
	"github.com/appetiteclub/lifecycle/pkg/enums/reservationstatus"
	"github.com/google/uuid"
)

const (
	EntityOrder       = "order"
	EntityItem        = "kitchen_order_item"
	EntityReservation = "reservation"
)

// Machine is a finite-state machine expressed as a lookup table from the
// current state to the set of legal next states.
type Machine struct {
	entity      string
	order       []string
	transitions map[string]map[string]struct{}
}

func newMachine(entity string, order []string, table map[string][]string) Machine {
	transitions := make(map[string]map[string]struct{}, len(table))
	for from, targets := range table {
		set := make(map[string]struct{}, len(targets))
		for _, to := range targets {
			set[to] = struct{}{}
		}
		transitions[from] = set
	}
	return Machine{entity: entity, order: order, transitions: transitions}
}

var (
	ReservationMachine = reservationMachine()
	OrderMachine       = orderMachine()
	ItemMachine        = itemMachine()
)

func reservationMachine() Machine {
	s := reservationstatus.Statuses
	return newMachine(EntityReservation,
		[]string{s.Pending.Code(), s.Confirmed.Code(), s.Seated.Code(), s.Completed.Code(), s.Cancelled.Code(), s.NoShow.Code()},
		map[string][]string{
			s.Pending.Code():   {s.Confirmed.Code(), s.Cancelled.Code()},
			s.Confirmed.Code(): {s.Seated.Code(), s.Cancelled.Code(), s.NoShow.Code()},
			s.Seated.Code():    {s.Completed.Code(), s.Cancelled.Code()},
			s.Completed.Code(): {},
			s.Cancelled.Code(): {s.Pending.Code()},
			s.NoShow.Code():    {s.Pending.Code()},
		})
}

func orderMachine() Machine {
	s := orderstatus.Statuses
	return newMachine(EntityOrder,
		[]string{s.Pending.Code(), s.Preparing.Code(), s.Ready.Code(), s.Delivered.Code(), s.Cancelled.Code()},
		map[string][]string{
			s.Pending.Code():   {s.Preparing.Code(), s.Cancelled.Code()},
			s.Preparing.Code(): {s.Ready.Code(), s.Cancelled.Code()},
			s.Ready.Code():     {s.Delivered.Code()},
			s.Delivered.Code(): {},
			s.Cancelled.Code(): {},
		})
}

// itemMachine has no pending -> ready shortcut.
func itemMachine() Machine {
	s := itemstatus.Statuses
	return newMachine(EntityItem,
		[]string{s.Pending.Code(), s.Preparing.Code(), s.Ready.Code(), s.Delivered.Code()},
		map[string][]string{
			s.Pending.Code():   {s.Preparing.Code()},
			s.Preparing.Code(): {s.Ready.Code()},
			s.Ready.Code():     {s.Delivered.Code()},
			s.Delivered.Code(): {},
		})
}

// Entity names the kind of record this machine governs.
func (m Machine) Entity() string {
	return m.entity
}

// States lists every known state in declaration order.
func (m Machine) States() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Known reports whether state belongs to this machine.
func (m Machine) Known(state string) bool {
	_, ok := m.transitions[state]
	return ok
}

func (m Machine) CanTransition(from, to string) bool {
	_, ok := m.transitions[from][to]
	return ok
}

// Next returns the legal successors of from, in declaration order.
// Terminal and unknown states yield an empty slice.
func (m Machine) Next(from string) []string {
	targets := m.transitions[from]
	out := make([]string, 0, len(targets))
	for _, s := range m.order {
		if _, ok := targets[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Terminal reports whether from has no successors.
func (m Machine) Terminal(from string) bool {
	return m.Known(from) && len(m.transitions[from]) == 0
}

// Validate returns an *InvalidTransitionError unless from -> to is legal.
func (m Machine) Validate(id uuid.UUID, from, to string) error {
	if m.CanTransition(from, to) {
		return nil
	}
	return &InvalidTransitionError{Entity: m.entity, ID: id, From: from, To: to}
}
