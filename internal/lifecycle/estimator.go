package lifecycle

import (
	"strings"
	"time"

	"github.com/appetiteclub/lifecycle/pkg/enums/priority"
)

// DefaultPrepMinutes is used when the catalog has no prep time for an item.
const DefaultPrepMinutes = 15

const highPriorityItemCount = 4

// MaxBottleneck caps an estimate so prep x quantity cannot overflow.
const MaxBottleneck = 7 * 24 * time.Hour

// Priority picks exactly one rule, in order: VIP instructions, then
// more than four items, then normal.
func Priority(specialInstructions string, itemCount int) string {
	switch {
	case strings.Contains(strings.ToLower(specialInstructions), "vip"):
		return priority.Priorities.Rush.Code()
	case itemCount > highPriorityItemCount:
		return priority.Priorities.High.Code()
	default:
		return priority.Priorities.Normal.Code()
	}
}

// Estimate is the result of EstimateDelivery.
type Estimate struct {
	Bottleneck time.Duration
	DeliverAt  time.Time
	Warnings   []error
}

// EstimateDelivery uses a bottleneck model: stations work in parallel so
// the slowest prep time x quantity gates delivery.
func EstimateDelivery(items []KitchenOrderItem, catalog MenuCatalog, now time.Time) Estimate {
	var est Estimate
	maxMinutes := int64(MaxBottleneck / time.Minute)
	var longest int64
	for _, item := range items {
		minutes := DefaultPrepMinutes
		if catalog == nil {
			est.Warnings = append(est.Warnings, &LookupError{Collaborator: "menu catalog", Ref: item.MenuItemID.String()})
		} else if m, err := catalog.LookupPrepTime(item.MenuItemID); err != nil {
			est.Warnings = append(est.Warnings, &LookupError{Collaborator: "menu catalog", Ref: item.MenuItemID.String(), Err: err})
		} else {
			minutes = m
		}

		if d := bottleneckMinutes(minutes, item.Quantity, maxMinutes); d > longest {
			longest = d
		}
	}

	est.Bottleneck = time.Duration(longest) * time.Minute
	est.DeliverAt = now.Add(est.Bottleneck).Truncate(time.Second)
	return est
}

// bottleneckMinutes is minutes x quantity saturated at limit.
func bottleneckMinutes(minutes, quantity int, limit int64) int64 {
	if minutes <= 0 || quantity <= 0 {
		return 0
	}
	m, q := int64(minutes), int64(quantity)
	if m > limit || q > limit/m {
		return limit
	}
	return m * q
}

// IsOverdue is a read-only alert; it never changes state.
func IsOverdue(ticket KitchenOrder, now time.Time) bool {
	if !ticket.Active() || ticket.EstimatedDeliveryTime.IsZero() {
		return false
	}
	return now.After(ticket.EstimatedDeliveryTime)
}
