package domain

import "strings"

type OrderStatus string

const (
	StatusPendingPayment   OrderStatus = "PENDING_PAYMENT"
	StatusPaid             OrderStatus = "PAID"
	StatusProcessing       OrderStatus = "PROCESSING"
	StatusShipping         OrderStatus = "SHIPPING"
	StatusCompleted        OrderStatus = "COMPLETED"
	StatusCancelledByUser  OrderStatus = "CANCELLED_BY_USER"
	StatusCancelledByAdmin OrderStatus = "CANCELLED_BY_ADMIN"
	StatusExpired          OrderStatus = "EXPIRED"
)

// Actor identifies who is asking for a status change. The transition table
// is actor-gated: customers may only cancel their own pending orders, admins
// drive fulfillment, and the system owns payment success and expiry.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorAdmin    Actor = "admin"
	ActorSystem   Actor = "system"
)

// transitions is the single authority on legal status changes. Terminal
// statuses have no entry: nothing leaves them.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPendingPayment: {
		StatusPaid,
		StatusCancelledByUser,
		StatusCancelledByAdmin,
		StatusExpired,
	},
	StatusPaid: {
		StatusProcessing,
		StatusCancelledByAdmin,
	},
	StatusProcessing: {
		StatusShipping,
		StatusCancelledByAdmin,
	},
	StatusShipping: {
		StatusCompleted,
	},
}

func (s OrderStatus) IsTerminal() bool {
	_, ok := transitions[s]
	return !ok
}

// ReleasesStock reports whether entering this status must return the
// order's quantities to the catalog.
func (s OrderStatus) ReleasesStock() bool {
	return s == StatusCancelledByUser ||
		s == StatusCancelledByAdmin ||
		s == StatusExpired
}

func (s OrderStatus) String() string {
	return string(s)
}

// CanTransition consults the transition table only; actor gating is a
// separate check so races and permission failures stay distinguishable in
// logs.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ActorAllowed reports whether the actor may request the target status at
// all. PAID is reserved for the payment path and EXPIRED for the sweeper,
// both running as ActorSystem.
func ActorAllowed(actor Actor, to OrderStatus) bool {
	switch actor {
	case ActorCustomer:
		return to == StatusCancelledByUser
	case ActorAdmin:
		switch to {
		case StatusProcessing, StatusShipping, StatusCompleted, StatusCancelledByAdmin:
			return true
		}
		return false
	case ActorSystem:
		return to == StatusPaid || to == StatusExpired
	}
	return false
}

// statusAliases maps loose spellings seen in older admin tooling onto the
// canonical set. Normalization happens once at the boundary, never in
// comparisons.
var statusAliases = map[string]OrderStatus{
	"PENDING":        StatusPendingPayment,
	"CANCELLED_AUTO": StatusExpired,
	"SHIPPED":        StatusShipping,
	"ON_DELIVERY":    StatusShipping,
	"DELIVERED":      StatusCompleted,
}

// ParseStatus normalizes raw client input to a canonical status.
func ParseStatus(raw string) (OrderStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := statusAliases[normalized]; ok {
		return alias, nil
	}
	s := OrderStatus(normalized)
	switch s {
	case StatusPendingPayment, StatusPaid, StatusProcessing,
		StatusShipping, StatusCompleted, StatusCancelledByUser,
		StatusCancelledByAdmin, StatusExpired:
		return s, nil
	}
	return "", ErrUnknownStatus
}
