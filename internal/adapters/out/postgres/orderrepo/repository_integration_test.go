package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite provides integration tests for
// GormOrderRepository using PostgreSQL containers.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container    *postgres.PostgresContainer
	db           *gorm.DB
	repository   *orderrepo.GormOrderRepository
	tracker      *MockAggregateTracker
	restaurantID kernel.UUID
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.LogEntryDTO{},
		&orderrepo.CounterDTO{},
	))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(
		suite.db.Exec("TRUNCATE TABLE orders, order_log_entries, order_counters").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
	suite.restaurantID = kernel.NewUUID()
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	ctx := context.Background()

	aggregate := suite.createTestOrder(1, false)
	suite.tracker.On("TrackAggregate", aggregate.ID(), aggregate).Once()

	suite.Require().NoError(suite.repository.Add(ctx, aggregate))

	restored, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)

	suite.True(restored.ID().IsEqual(aggregate.ID()))
	suite.True(restored.RestaurantID().IsEqual(suite.restaurantID))
	suite.Equal(int64(1), restored.OrderNumber())
	suite.Equal(order.Pending, restored.Status())
	suite.False(restored.IsDraft())
	suite.Equal(order.PaymentCash, restored.PaymentMethod())
	suite.Equal("Aigerim", restored.Details().CustomerName)
	suite.Equal("+77010000001", restored.Details().CustomerPhone)

	suite.Require().Len(restored.Items(), 2)
	suite.Equal("Plov", restored.Items()[0].Title())
	suite.Equal(2, restored.Items()[0].Quantity())
	suite.Equal("340.00", restored.Total().String())
	suite.Equal(aggregate.Subtotal().String(), restored.Subtotal().String())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NotFound() {
	ctx := context.Background()

	_, err := suite.repository.Get(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_PersistsStatusChange() {
	ctx := context.Background()

	aggregate := suite.createTestOrder(2, false)
	suite.tracker.On("TrackAggregate", aggregate.ID(), aggregate).Twice()

	suite.Require().NoError(suite.repository.Add(ctx, aggregate))

	_, err := aggregate.TransitionTo(order.Accepted, "staff", time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, aggregate))

	restored, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Accepted, restored.Status())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_MissingOrder() {
	ctx := context.Background()

	aggregate := suite.createTestOrder(3, false)

	err := suite.repository.Update(ctx, aggregate)
	suite.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetActive_FiltersAndOrders() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	first := suite.createTestOrder(10, false)
	second := suite.createTestOrder(11, false)
	draft := suite.createTestOrder(12, true)
	done := suite.createTestOrder(13, false)

	suite.Require().NoError(suite.repository.Add(ctx, first))
	suite.Require().NoError(suite.repository.Add(ctx, second))
	suite.Require().NoError(suite.repository.Add(ctx, draft))
	suite.Require().NoError(suite.repository.Add(ctx, done))

	// Walk one order to a terminal status so it drops off the active view.
	now := time.Now().UTC()
	for _, next := range []order.Status{order.Accepted, order.Preparing, order.Ready, order.Completed} {
		_, err := done.TransitionTo(next, "staff", now)
		suite.Require().NoError(err)
	}
	suite.Require().NoError(suite.repository.Update(ctx, done))

	active, err := suite.repository.GetActive(ctx, suite.restaurantID)
	suite.Require().NoError(err)
	suite.Require().Len(active, 2)
	suite.Equal(int64(10), active[0].OrderNumber())
	suite.Equal(int64(11), active[1].OrderNumber())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestNextOrderNumber_StrictlyIncreasing() {
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := suite.repository.NextOrderNumber(ctx, suite.restaurantID)
		suite.Require().NoError(err)
		suite.Equal(want, got)
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestNextOrderNumber_PerRestaurant() {
	ctx := context.Background()
	other := kernel.NewUUID()

	first, err := suite.repository.NextOrderNumber(ctx, suite.restaurantID)
	suite.Require().NoError(err)
	second, err := suite.repository.NextOrderNumber(ctx, suite.restaurantID)
	suite.Require().NoError(err)

	// A separate restaurant starts its own sequence from 1.
	foreign, err := suite.repository.NextOrderNumber(ctx, other)
	suite.Require().NoError(err)

	suite.Equal(int64(1), first)
	suite.Equal(int64(2), second)
	suite.Equal(int64(1), foreign)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAppendLogEntry_AppendsRows() {
	ctx := context.Background()

	aggregate := suite.createTestOrder(20, false)
	suite.tracker.On("TrackAggregate", aggregate.ID(), aggregate).Once()
	suite.Require().NoError(suite.repository.Add(ctx, aggregate))

	suite.Require().NoError(suite.repository.AppendLogEntry(ctx, aggregate.CreationLogEntry("staff")))

	entry, err := aggregate.TransitionTo(order.Accepted, "manager", time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.AppendLogEntry(ctx, entry))

	var count int64
	suite.Require().NoError(suite.db.Model(&orderrepo.LogEntryDTO{}).
		Where("order_id = ?", aggregate.ID().Bytes()).Count(&count).Error)
	suite.Equal(int64(2), count)

	var actions []string
	suite.Require().NoError(suite.db.Model(&orderrepo.LogEntryDTO{}).
		Where("order_id = ?", aggregate.ID().Bytes()).
		Order("created_at").
		Pluck("action", &actions).Error)
	suite.Equal([]string{"created", "status_changed"}, actions)
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(number int64, isDraft bool) *order.Order {
	plovPrice, err := kernel.NewMoneyFromFloat(120)
	suite.Require().NoError(err)
	teaPrice, err := kernel.NewMoneyFromFloat(100)
	suite.Require().NoError(err)

	plov, err := order.NewLineItem(kernel.NewUUID(), "Plov", "L", 2, plovPrice)
	suite.Require().NoError(err)
	tea, err := order.NewLineItem(kernel.NewUUID(), "Tea", "", 1, teaPrice)
	suite.Require().NoError(err)

	aggregate, err := order.NewOrder(
		kernel.NewUUID(),
		suite.restaurantID,
		number,
		[]order.LineItem{plov, tea},
		kernel.NoDiscount(),
		order.PaymentCash,
		order.Details{CustomerName: "Aigerim", CustomerPhone: "+77010000001"},
		isDraft,
		time.Now().UTC(),
	)
	suite.Require().NoError(err)
	return aggregate
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
