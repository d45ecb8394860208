package record

import (
	"fmt"

	"github.com/ebayops/backend/internal/domain/shared"
)

// OrderStatus represents the workflow status of an imported order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal checks if the status is a workflow end state
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks if transition to target status is allowed.
// Self-transitions are never allowed.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// ValidTargets returns every status reachable from the current one.
// Terminal states return an empty, non-nil slice.
func (s OrderStatus) ValidTargets() []OrderStatus {
	targets := make([]OrderStatus, 0, 2)
	for _, candidate := range AllOrderStatuses() {
		if s.CanTransitionTo(candidate) {
			targets = append(targets, candidate)
		}
	}
	return targets
}

// AllOrderStatuses returns every known status in workflow order
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}
}

// ParseOrderStatus parses a string into an OrderStatus
func ParseOrderStatus(value string) (OrderStatus, error) {
	status := OrderStatus(value)
	if !status.IsValid() {
		return "", shared.NewDomainError("INVALID_TARGET_STATUS",
			fmt.Sprintf("unknown order status: %s", value))
	}
	return status, nil
}

// NewInvalidTransitionError builds the failure for a disallowed status change
func NewInvalidTransitionError(current, target OrderStatus) *shared.DomainError {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("invalid transition from %s to %s", current, target))
}
