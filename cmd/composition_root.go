package cmd

import (
	"fmt"
	"log/slog"

	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/changefeed"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/core/application/projections"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters, use cases and background pieces together.
// It is the only place that knows concrete implementations.
type CompositionRoot struct {
	config       Config
	restaurantID kernel.UUID
	gormDB       *gorm.DB
	uowFactory   postgres.GormUnitOfWorkFactory
	logger       *slog.Logger
}

// NewCompositionRoot builds the object graph for one restaurant instance.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	restaurantID, err := kernel.UUIDFromString(config.RestaurantID)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("invalid RESTAURANT_ID: %w", err)
	}

	return CompositionRoot{
		config:       config,
		restaurantID: restaurantID,
		gormDB:       gormDB,
		uowFactory:   *postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:       logger,
	}, nil
}

// RestaurantID returns the restaurant scope of this instance.
func (c *CompositionRoot) RestaurantID() kernel.UUID {
	return c.restaurantID
}

func (c *CompositionRoot) CreateSubmitOrderCommandHandler() commands.SubmitOrderCommandHandler {
	var f commands.SubmitUoWFactory = FuncSubmitUoWFactory(func() commands.SubmitUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSubmitOrderCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(c.CreateOrderUoWFactory())
}

func (c *CompositionRoot) CreateMarkNotificationReadCommandHandler() commands.MarkNotificationReadCommandHandler {
	var f commands.NotificationUoWFactory = FuncNotificationUoWFactory(func() commands.NotificationUoW {
		return c.uowFactory.Create()
	})
	return commands.NewMarkNotificationReadCommandHandler(f)
}

func (c *CompositionRoot) CreateOrderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateGetOrdersBoardQueryHandler() queries.GetOrdersBoardQueryHandler {
	return queries.NewGetOrdersBoardQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCustomerQueryHandler() queries.GetCustomerQueryHandler {
	return queries.NewGetCustomerQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetUnreadNotificationsQueryHandler() queries.GetUnreadNotificationsQueryHandler {
	return queries.NewGetUnreadNotificationsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateCheckoutFormatter() services.CheckoutFormatter {
	return services.NewCheckoutFormatter(c.config.RestaurantName)
}

// CreateOrderRepository returns a repository on the base connection, for
// read-only callers outside a unit of work.
func (c *CompositionRoot) CreateOrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(c.gormDB, noopTracker{})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateOrderRepository(), c.restaurantID, c.config.DelayedAfter, c.logger)
}

// CreateChangeFeed opens the LISTEN/NOTIFY subscription connection.
func (c *CompositionRoot) CreateChangeFeed() (*changefeed.PqChangeFeed, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.config.DBHost, c.config.DBPort, c.config.DBUser,
		c.config.DBPassword, c.config.DBName, c.config.DBSslMode)
	return changefeed.NewPqChangeFeed(dsn, c.logger)
}

// CreateOrderStoreSync builds a projection plus its sync loop on the given
// feed. Each connected client surface gets its own pair.
func (c *CompositionRoot) CreateOrderStoreSync(
	feed ports.ChangeFeed,
	alert projections.AlertFunc,
) (*projections.OrderStore, *projections.Sync, error) {
	store, err := projections.NewOrderStore(c.restaurantID, c.config.DelayedAfter, alert)
	if err != nil {
		return nil, nil, err
	}
	return store, projections.NewSync(feed, store, c.logger), nil
}

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

type FuncSubmitUoWFactory func() commands.SubmitUoW

func (f FuncSubmitUoWFactory) Create() commands.SubmitUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncNotificationUoWFactory func() commands.NotificationUoW

func (f FuncNotificationUoWFactory) Create() commands.NotificationUoW {
	return f()
}
