package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
)

// SubmitOrderCommandHandler handles the business logic for order submission:
// allocating the order number, persisting the order and its creation audit
// entry, updating the customer ledger, and emitting the staff notification.
//
// The order, audit entry and ledger update share one transaction. The
// notification is written after commit, fire-and-forget: its failure is
// logged and never unwinds the order.
type SubmitOrderCommandHandler struct {
	uowFactory SubmitUoWFactory
	logger     *slog.Logger
}

// NewSubmitOrderCommandHandler creates a handler for order submissions.
func NewSubmitOrderCommandHandler(uowFactory SubmitUoWFactory, logger *slog.Logger) SubmitOrderCommandHandler {
	return SubmitOrderCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "submit_order_handler"),
	}
}

// Handle processes the submission and returns the persisted order.
// Validation failures and persistence errors leave no partial state behind.
func (h *SubmitOrderCommandHandler) Handle(ctx context.Context, cmd SubmitOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	orderNumber, err := orderRepo.NextOrderNumber(ctx, cmd.RestaurantID())
	if err != nil {
		return nil, err
	}

	newOrder, err := cmd.Cart().ToOrder(
		kernel.NewUUID(),
		cmd.RestaurantID(),
		orderNumber,
		cmd.Discount(),
		cmd.PaymentMethod(),
		cmd.Details(),
		cmd.IsDraft(),
		now,
	)
	if err != nil {
		return nil, err
	}

	if err = orderRepo.Add(ctx, newOrder); err != nil {
		return nil, err
	}

	if err = orderRepo.AppendLogEntry(ctx, newOrder.CreationLogEntry(cmd.Actor())); err != nil {
		return nil, err
	}

	// Drafts stay out of the ledger until actually submitted.
	if !newOrder.IsDraft() && cmd.Details().CustomerPhone != "" {
		err = uow.CustomerRepository().UpsertOnOrder(
			ctx,
			cmd.RestaurantID(),
			cmd.Details().CustomerPhone,
			cmd.Details().CustomerName,
			newOrder.Total(),
			now,
		)
		if err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if !newOrder.IsDraft() {
		h.dispatchNotification(ctx, uow, newOrder, now)
	}

	return newOrder, nil
}

// dispatchNotification writes the order-created notification outside the
// submission transaction. Best effort only.
func (h *SubmitOrderCommandHandler) dispatchNotification(
	ctx context.Context,
	uow SubmitUoW,
	newOrder *order.Order,
	now time.Time,
) {
	n, err := services.NewOrderNotification(newOrder, now)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to build order notification",
			"order_id", newOrder.ID().String(), "error", err)
		return
	}

	if err = uow.NotificationRepository().Add(ctx, n); err != nil {
		h.logger.ErrorContext(ctx, "Failed to store order notification",
			"order_id", newOrder.ID().String(), "error", err)
	}
}
