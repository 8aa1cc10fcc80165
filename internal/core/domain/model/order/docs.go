// Package order contains the Order aggregate and its lifecycle state machine.
//
// An order is created once by a cart submission and mutated only through
// status transitions afterwards. The transition graph is closed and small;
// every successful mutation produces an immutable LogEntry, giving each order
// an append-only audit trail. Cancellation is a terminal status, never a
// physical deletion.
package order
