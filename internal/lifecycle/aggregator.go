package lifecycle

import "github.com/appetiteclub/lifecycle/pkg/enums/itemstatus"

// AggregateStatus derives a ticket status from its items:
// all delivered -> delivered, all ready or delivered -> ready,
// any preparing or beyond -> preparing, otherwise pending.
func AggregateStatus(items []KitchenOrderItem) string {
	s := itemstatus.Statuses
	if len(items) == 0 {
		return s.Pending.Code()
	}

	var delivered, ready, started int
	for _, item := range items {
		switch item.Status {
		case s.Delivered.Code():
			delivered++
			ready++
			started++
		case s.Ready.Code():
			ready++
			started++
		case s.Preparing.Code():
			started++
		}
	}

	switch {
	case delivered == len(items):
		return s.Delivered.Code()
	case ready == len(items):
		return s.Ready.Code()
	case started > 0:
		return s.Preparing.Code()
	default:
		return s.Pending.Code()
	}
}

// NextAggregate recomputes the aggregate and rejects any move away from
// delivered.
func NextAggregate(current string, items []KitchenOrderItem) (string, error) {
	next := AggregateStatus(items)
	if current == itemstatus.Statuses.Delivered.Code() && next != current {
		return current, ErrAggregateRegression
	}
	return next, nil
}
