// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations: each command is a
// constructor-guarded value object, each handler manages validation,
// transaction lifecycle and persistence.
package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Handlers declare the narrowest unit of work they need.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// CustomerRepoFactory provides access to the customer repository within a transaction.
	CustomerRepoFactory interface {
		CustomerRepository() ports.CustomerRepository
	}

	// NotificationRepoFactory provides access to the notification repository.
	NotificationRepoFactory interface {
		NotificationRepository() ports.NotificationRepository
	}

	// OrderUoW manages transactions for order-only operations,
	// such as status transitions.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// SubmitUoW manages the order submission transaction, which spans the
	// order, the customer ledger and the post-commit notification write.
	SubmitUoW interface {
		TxManager
		OrderRepoFactory
		CustomerRepoFactory
		NotificationRepoFactory
	}

	// SubmitUoWFactory creates new submission unit of work instances.
	SubmitUoWFactory interface {
		Create() SubmitUoW
	}

	// NotificationUoW manages transactions for notification-only operations.
	NotificationUoW interface {
		TxManager
		NotificationRepoFactory
	}

	// NotificationUoWFactory creates new notification unit of work instances.
	NotificationUoWFactory interface {
		Create() NotificationUoW
	}
)
