package order

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Status represents the lifecycle state of an order. It implements a state
// machine with a fixed transition graph:
//
//	pending ──> accepted ──> preparing ──> ready ──┬──> out_for_delivery ──> completed
//	   │           │            │            ├──────────> completed
//	   │           │            │            └──> cancelled
//	   └───────────┴────────────┴──> cancelled
//
// completed and cancelled are terminal: they accept no further transitions.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status of a submitted, non-draft order.
	Pending

	// Accepted indicates the kitchen has acknowledged the order.
	Accepted

	// Preparing indicates the order is being cooked.
	Preparing

	// Ready indicates the order is ready for handoff or dispatch.
	Ready

	// OutForDelivery indicates a courier has left with the order.
	OutForDelivery

	// Completed indicates the order was handed over. Terminal.
	Completed

	// Cancelled indicates the order was called off. Terminal, not a deletion.
	Cancelled
)

// ErrInvalidTransition is the unwrap target for rejected status changes.
var ErrInvalidTransition = errors.New("invalid status transition")

// InvalidTransitionError reports an attempted status change outside the
// allowed transition graph. The order it was attempted on is left untouched.
type InvalidTransitionError struct {
	From Status
	To   Status
}

// NewInvalidTransitionError creates an InvalidTransitionError for the given edge.
func NewInvalidTransitionError(from, to Status) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// getStatusStrings returns a map of Status values to their wire representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Pending:        "pending",
		Accepted:       "accepted",
		Preparing:      "preparing",
		Ready:          "ready",
		OutForDelivery: "out_for_delivery",
		Completed:      "completed",
		Cancelled:      "cancelled",
	}
}

// getAllowedTransitions returns the closed transition graph.
// Terminal statuses map to empty sets.
func getAllowedTransitions() map[Status][]Status {
	return map[Status][]Status{
		Pending:        {Accepted, Cancelled},
		Accepted:       {Preparing, Cancelled},
		Preparing:      {Ready, Cancelled},
		Ready:          {OutForDelivery, Completed, Cancelled},
		OutForDelivery: {Completed},
		Completed:      {},
		Cancelled:      {},
	}
}

// AllStatuses returns every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{Pending, Accepted, Preparing, Ready, OutForDelivery, Completed, Cancelled}
}

// ActiveStatuses returns the non-terminal statuses, i.e. the set of statuses
// an order can hold while it still belongs to active working views.
func ActiveStatuses() []Status {
	return []Status{Pending, Accepted, Preparing, Ready, OutForDelivery}
}

// StatusFromString parses a wire representation such as "pending".
// Returns an error for unrecognized values.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the Status is a member of the closed enum.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getAllowedTransitions()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", int(s)))
	}
	return nil
}

// String returns the wire representation of the status.
// Implements fmt.Stringer; safe on any value including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status accepts no further transitions.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// CanTransitionTo reports whether next is a member of the allowed set
// for the current status.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range getAllowedTransitions()[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo validates the edge s -> next against the transition graph.
//
// Returns:
//   - (next, nil) when the transition is allowed
//   - (0, *InvalidTransitionError) otherwise
func (s Status) TransitionTo(next Status) (Status, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if err := next.Validate(); err != nil {
		return 0, err
	}
	if !s.CanTransitionTo(next) {
		return 0, NewInvalidTransitionError(s, next)
	}
	return next, nil
}

// VerifyTransitionGraph exhaustively checks the transition table:
// every status has an entry, every edge targets a valid status, terminal
// statuses have no outgoing edges and non-terminal statuses have at least one.
// The composition root calls this once at startup so a broken table fails
// fast instead of rejecting transitions at runtime.
func VerifyTransitionGraph() error {
	transitions := getAllowedTransitions()

	for _, s := range AllStatuses() {
		edges, ok := transitions[s]
		if !ok {
			return fmt.Errorf("status %s has no transition table entry", s)
		}

		if s.IsTerminal() && len(edges) > 0 {
			return fmt.Errorf("terminal status %s has outgoing transitions", s)
		}
		if !s.IsTerminal() && len(edges) == 0 {
			return fmt.Errorf("non-terminal status %s has no outgoing transitions", s)
		}

		for _, next := range edges {
			if err := next.Validate(); err != nil {
				return fmt.Errorf("status %s transitions to invalid status %d: %w", s, int(next), err)
			}
			if next == Pending {
				return fmt.Errorf("status %s transitions back to initial status", s)
			}
		}
	}

	if len(transitions) != len(AllStatuses()) {
		return errors.New("transition table contains statuses outside the enum")
	}

	return nil
}
