// Package http exposes the application's use cases over a thin echo API.
// Handlers translate between JSON and commands/queries; all business rules
// stay in the core.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/cart"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Server wires HTTP routes to the application's command and query handlers.
type Server struct {
	restaurantID kernel.UUID
	delayedAfter time.Duration

	submitOrderHandler        commands.SubmitOrderCommandHandler
	changeStatusHandler       commands.ChangeOrderStatusCommandHandler
	markNotificationHandler   commands.MarkNotificationReadCommandHandler
	boardHandler              queries.GetOrdersBoardQueryHandler
	historyHandler            queries.GetOrderHistoryQueryHandler
	customerHandler           queries.GetCustomerQueryHandler
	unreadNotificationHandler queries.GetUnreadNotificationsQueryHandler

	formatter       services.CheckoutFormatter
	orderUoWFactory commands.OrderUoWFactory
}

// NewServer creates an HTTP server bound to one restaurant scope.
func NewServer(
	restaurantID kernel.UUID,
	delayedAfter time.Duration,
	submitOrderHandler commands.SubmitOrderCommandHandler,
	changeStatusHandler commands.ChangeOrderStatusCommandHandler,
	markNotificationHandler commands.MarkNotificationReadCommandHandler,
	boardHandler queries.GetOrdersBoardQueryHandler,
	historyHandler queries.GetOrderHistoryQueryHandler,
	customerHandler queries.GetCustomerQueryHandler,
	unreadNotificationHandler queries.GetUnreadNotificationsQueryHandler,
	formatter services.CheckoutFormatter,
	orderUoWFactory commands.OrderUoWFactory,
) *Server {
	return &Server{
		restaurantID:              restaurantID,
		delayedAfter:              delayedAfter,
		submitOrderHandler:        submitOrderHandler,
		changeStatusHandler:       changeStatusHandler,
		markNotificationHandler:   markNotificationHandler,
		boardHandler:              boardHandler,
		historyHandler:            historyHandler,
		customerHandler:           customerHandler,
		unreadNotificationHandler: unreadNotificationHandler,
		formatter:                 formatter,
		orderUoWFactory:           orderUoWFactory,
	}
}

// RegisterRoutes mounts all endpoints on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/orders", s.SubmitOrder)
	api.POST("/orders/:id/status", s.ChangeOrderStatus)
	api.GET("/orders/board", s.GetBoard)
	api.GET("/orders/:id/checkout", s.GetCheckout)
	api.GET("/orders/history", s.GetHistory)
	api.GET("/customers/:phone", s.GetCustomer)
	api.GET("/notifications/unread", s.GetUnreadNotifications)
	api.POST("/notifications/:id/read", s.MarkNotificationRead)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lineItemRequest struct {
	MenuItemID string  `json:"menu_item_id"`
	Title      string  `json:"title"`
	Variant    string  `json:"variant"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

type submitOrderRequest struct {
	Items         []lineItemRequest `json:"items"`
	DiscountKind  string            `json:"discount_kind"`
	DiscountValue float64           `json:"discount_value"`
	PaymentMethod string            `json:"payment_method"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	Address       string            `json:"address"`
	TableLabel    string            `json:"table_label"`
	DeliveryZone  string            `json:"delivery_zone"`
	Notes         string            `json:"notes"`
	IsDraft       bool              `json:"is_draft"`
	Actor         string            `json:"actor"`
}

type orderResponse struct {
	ID          string `json:"id"`
	OrderNumber int64  `json:"order_number"`
	Status      string `json:"status"`
	Subtotal    string `json:"subtotal"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// SubmitOrder handles POST /api/v1/orders.
func (s *Server) SubmitOrder(ctx echo.Context) error {
	var req submitOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	c := cart.NewCart()
	for _, item := range req.Items {
		menuItemID, err := kernel.UUIDFromString(item.MenuItemID)
		if err != nil {
			return badRequest(ctx, "Invalid menu item id: "+item.MenuItemID)
		}
		unitPrice, err := kernel.NewMoneyFromFloat(item.UnitPrice)
		if err != nil {
			return badRequest(ctx, "Invalid unit price")
		}
		if err = c.AddLine(menuItemID, item.Title, item.Variant, item.Quantity, unitPrice); err != nil {
			return badRequest(ctx, "Invalid cart line: "+err.Error())
		}
	}

	discount, err := parseDiscount(req.DiscountKind, req.DiscountValue)
	if err != nil {
		return badRequest(ctx, "Invalid discount kind: "+req.DiscountKind)
	}

	cmd, err := commands.NewSubmitOrderCommand(
		s.restaurantID,
		c,
		discount,
		order.PaymentMethod(req.PaymentMethod),
		order.Details{
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			CustomerAddress: req.Address,
			TableLabel:      req.TableLabel,
			DeliveryZone:    req.DeliveryZone,
			Notes:           req.Notes,
		},
		req.IsDraft,
		req.Actor,
	)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	created, err := s.submitOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toOrderResponse(created))
}

type changeStatusRequest struct {
	NewStatus string `json:"new_status"`
	Actor     string `json:"actor"`
}

// ChangeOrderStatus handles POST /api/v1/orders/:id/status.
func (s *Server) ChangeOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var req changeStatusRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	newStatus, err := order.StatusFromString(req.NewStatus)
	if err != nil {
		return badRequest(ctx, "Unknown status: "+req.NewStatus)
	}

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, newStatus, req.Actor)
	if err != nil {
		return badRequest(ctx, "Invalid transition request: "+err.Error())
	}

	updated, err := s.changeStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderResponse(updated))
}

// GetCheckout handles GET /api/v1/orders/:id/checkout. It returns the
// rendered checkout text and the messaging handoff link; delivering the
// text is the client's business.
func (s *Server) GetCheckout(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	deliveryFee := kernel.ZeroMoney()
	if v := ctx.QueryParam("delivery_fee"); v != "" {
		fee, feeErr := strconv.ParseFloat(v, 64)
		if feeErr != nil {
			return badRequest(ctx, "Invalid delivery fee")
		}
		if deliveryFee, err = kernel.NewMoneyFromFloat(fee); err != nil {
			return badRequest(ctx, "Invalid delivery fee")
		}
	}

	aggregate, err := s.orderUoWFactory.Create().OrderRepository().Get(ctx.Request().Context(), orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	text := s.formatter.Format(aggregate, deliveryFee)

	response := map[string]any{"text": text}
	if phone := aggregate.Details().CustomerPhone; phone != "" {
		response["link"] = services.CheckoutLink(phone, text)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetBoard handles GET /api/v1/orders/board.
func (s *Server) GetBoard(ctx echo.Context) error {
	query, err := queries.NewGetOrdersBoardQuery(s.restaurantID, s.delayedAfter)
	if err != nil {
		return writeError(ctx, err)
	}

	board, err := s.boardHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	type boardOrder struct {
		ID          string `json:"id"`
		OrderNumber int64  `json:"order_number"`
		Customer    string `json:"customer"`
		ItemCount   int    `json:"item_count"`
		Total       string `json:"total"`
		IsDelivery  bool   `json:"is_delivery"`
		IsDelayed   bool   `json:"is_delayed"`
		CreatedAt   string `json:"created_at"`
	}
	type boardColumn struct {
		Status string       `json:"status"`
		Orders []boardOrder `json:"orders"`
	}

	columns := make([]boardColumn, 0, len(board.Columns))
	for _, column := range board.Columns {
		orders := make([]boardOrder, 0, len(column.Orders))
		for _, o := range column.Orders {
			orders = append(orders, boardOrder{
				ID:          o.ID.String(),
				OrderNumber: o.OrderNumber,
				Customer:    o.CustomerName,
				ItemCount:   o.ItemCount,
				Total:       o.Total,
				IsDelivery:  o.IsDelivery,
				IsDelayed:   o.IsDelayed,
				CreatedAt:   o.CreatedAt.Format(time.RFC3339),
			})
		}
		columns = append(columns, boardColumn{Status: column.Status.String(), Orders: orders})
	}

	return ctx.JSON(http.StatusOK, map[string]any{"columns": columns})
}

// GetHistory handles GET /api/v1/orders/history.
func (s *Server) GetHistory(ctx echo.Context) error {
	filter := queries.HistoryFilter{
		Search:        ctx.QueryParam("search"),
		IncludeDrafts: ctx.QueryParam("include_drafts") == "true",
	}

	if statusParam := ctx.QueryParam("status"); statusParam != "" {
		status, err := order.StatusFromString(statusParam)
		if err != nil {
			return badRequest(ctx, "Unknown status: "+statusParam)
		}
		filter.Statuses = []order.Status{status}
	}

	if from := ctx.QueryParam("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return badRequest(ctx, "Invalid from timestamp")
		}
		filter.From = parsed
	}
	if to := ctx.QueryParam("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return badRequest(ctx, "Invalid to timestamp")
		}
		filter.To = parsed
	}

	offset, limit := paging(ctx)

	query, err := queries.NewGetOrderHistoryQuery(s.restaurantID, filter, offset, limit)
	if err != nil {
		return badRequest(ctx, "Invalid history query: "+err.Error())
	}

	page, err := s.historyHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	type historyOrder struct {
		ID            string `json:"id"`
		OrderNumber   int64  `json:"order_number"`
		Status        string `json:"status"`
		IsDraft       bool   `json:"is_draft"`
		Customer      string `json:"customer"`
		Phone         string `json:"phone"`
		ItemCount     int    `json:"item_count"`
		Total         string `json:"total"`
		PaymentMethod string `json:"payment_method"`
		CreatedAt     string `json:"created_at"`
	}

	orders := make([]historyOrder, 0, len(page.Orders))
	for _, o := range page.Orders {
		orders = append(orders, historyOrder{
			ID:            o.ID.String(),
			OrderNumber:   o.OrderNumber,
			Status:        o.Status.String(),
			IsDraft:       o.IsDraft,
			Customer:      o.CustomerName,
			Phone:         o.CustomerPhone,
			ItemCount:     o.ItemCount,
			Total:         o.Total,
			PaymentMethod: string(o.PaymentMethod),
			CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		})
	}

	return ctx.JSON(http.StatusOK, map[string]any{"orders": orders, "total": page.Total})
}

// GetCustomer handles GET /api/v1/customers/:phone.
func (s *Server) GetCustomer(ctx echo.Context) error {
	query, err := queries.NewGetCustomerQuery(s.restaurantID, ctx.Param("phone"))
	if err != nil {
		return badRequest(ctx, "Invalid phone")
	}

	entry, err := s.customerHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"id":              entry.ID.String(),
		"phone":           entry.Phone,
		"name":            entry.Name,
		"total_orders":    entry.TotalOrders,
		"total_spent":     entry.TotalSpent,
		"last_order_date": entry.LastOrderDate.Format(time.RFC3339),
	})
}

// GetUnreadNotifications handles GET /api/v1/notifications/unread.
func (s *Server) GetUnreadNotifications(ctx echo.Context) error {
	query, err := queries.NewGetUnreadNotificationsQuery(s.restaurantID)
	if err != nil {
		return writeError(ctx, err)
	}

	notifications, err := s.unreadNotificationHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	type notificationItem struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Body      string `json:"body"`
		Kind      string `json:"kind"`
		Audience  string `json:"audience"`
		CreatedAt string `json:"created_at"`
	}

	items := make([]notificationItem, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, notificationItem{
			ID:        n.ID.String(),
			Title:     n.Title,
			Body:      n.Body,
			Kind:      string(n.Kind),
			Audience:  string(n.Audience),
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}

	return ctx.JSON(http.StatusOK, items)
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read.
func (s *Server) MarkNotificationRead(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid notification id")
	}

	read := ctx.QueryParam("read") != "false"

	cmd, err := commands.NewMarkNotificationReadCommand(id, read)
	if err != nil {
		return badRequest(ctx, "Invalid request: "+err.Error())
	}

	if err = s.markNotificationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:          o.ID().String(),
		OrderNumber: o.OrderNumber(),
		Status:      o.Status().String(),
		Subtotal:    o.Subtotal().String(),
		Discount:    o.DiscountAmount().String(),
		Total:       o.Total().String(),
	}
}

func parseDiscount(kind string, value float64) (kernel.Discount, error) {
	switch kind {
	case "", "none":
		return kernel.NoDiscount(), nil
	case "fixed":
		return kernel.FixedDiscount(decimal.NewFromFloat(value)), nil
	case "percent":
		return kernel.PercentDiscount(decimal.NewFromFloat(value)), nil
	default:
		return kernel.Discount{}, errs.NewValueIsInvalidError("discount kind")
	}
}

func paging(ctx echo.Context) (offset, limit int) {
	if v := ctx.QueryParam("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	if v := ctx.QueryParam("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			limit = parsed
		}
	}
	return offset, limit
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// writeError maps domain errors to HTTP status codes.
func writeError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, errorResponse{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, order.ErrInvalidTransition):
		return ctx.JSON(http.StatusConflict, errorResponse{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, order.ErrEmptyOrder):
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}
