package orders

import "slices"

// Filter selects a subset of a listing.
type Filter string

const (
	FilterNone         Filter = ""
	FilterPending      Filter = "pending"
	FilterHighPriority Filter = "high_priority"
)

// ParseFilter maps a query token to a Filter; unknown tokens mean no filtering.
func ParseFilter(token string) Filter {
	switch f := Filter(token); f {
	case FilterPending, FilterHighPriority:
		return f
	default:
		return FilterNone
	}
}

func (f Filter) keep(o Order) bool {
	switch f {
	case FilterPending:
		return !o.Stages.Dispatched()
	case FilterHighPriority:
		return o.IsHighPriority
	default:
		return true
	}
}

// Apply returns the orders f keeps, preserving their order.
func (f Filter) Apply(orders []Order) []Order {
	if f == FilterNone {
		return orders
	}
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if f.keep(o) {
			out = append(out, o)
		}
	}
	return out
}

// SortNewestFirst orders by created_at descending. Equal timestamps keep their
// incoming (collection) order.
func SortNewestFirst(orders []Order) {
	slices.SortStableFunc(orders, func(a, b Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// Dispatched reports whether the order has reached sent_to_delhi or any later stage.
func (s Stages) Dispatched() bool {
	return s.SentToDelhi || s.LeftXportel || s.ReachedCountry || s.Delivered
}

// Fulfillment status labels, most advanced first.
const (
	StatusDelivered   = "Delivered"
	StatusInTransit   = "In Transit"
	StatusDispatched  = "Dispatched"
	StatusReady       = "Ready"
	StatusWashing     = "Washing"
	StatusCustomizing = "Customizing"
	StatusInProgress  = "In Progress"
	StatusUnfulfilled = "Unfulfilled"
)

// Label names the most advanced milestone set. left_xportel has no label of its own.
func (s Stages) Label() string {
	switch {
	case s.Delivered:
		return StatusDelivered
	case s.ReachedCountry:
		return StatusInTransit
	case s.SentToDelhi:
		return StatusDispatched
	case s.ReadyToDispatch:
		return StatusReady
	case s.Washing:
		return StatusWashing
	case s.Customizing:
		return StatusCustomizing
	case s.InEmbroidery:
		return StatusInProgress
	default:
		return StatusUnfulfilled
	}
}
