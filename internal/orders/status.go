package orders

import (
	"fmt"

	"github.com/ekaraca/restaurant_pos/internal/apperr"
)

type Status string

const (
	// StatusPendingApproval is the entry state for customer self-service
	// orders; staff must approve before the kitchen sees them.
	StatusPendingApproval Status = "PENDING_APPROVAL"
	// StatusPending is the entry state for staff-created orders.
	StatusPending   Status = "PENDING"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusServed    Status = "SERVED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// transitions is the single source of truth for the order lifecycle. Every
// status check in the codebase goes through this table.
var transitions = map[Status][]Status{
	StatusPendingApproval: {StatusPending, StatusCancelled},
	StatusPending:         {StatusPreparing, StatusCancelled},
	StatusPreparing:       {StatusReady, StatusCancelled},
	StatusReady:           {StatusServed, StatusCancelled},
	StatusServed:          {StatusPaid},
	StatusPaid:            {},
	StatusCancelled:       {},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: unknown status %q", apperr.ErrInvalidInput, s)
	}
	return st, nil
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}
