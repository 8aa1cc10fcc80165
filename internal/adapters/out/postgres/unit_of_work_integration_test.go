package postgres_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/customerrepo"
	"orderflow/internal/adapters/out/postgres/notificationrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite verifies that repositories obtained from a
// unit of work commit and roll back together, the way the submission
// handler drives them.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container    *pgcontainer.PostgresContainer
	db           *gorm.DB
	factory      *postgres.GormUnitOfWorkFactory
	restaurantID kernel.UUID
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
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
		&customerrepo.CustomerDTO{},
		&notificationrepo.NotificationDTO{},
	))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE orders, order_log_entries, order_counters, customers, notifications").Error)

	suite.factory = postgres.NewGormUnitOfWorkFactory(suite.db)
	suite.restaurantID = kernel.NewUUID()
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PersistsAllWrites() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))

	orders := uow.OrderRepository()
	number, err := orders.NextOrderNumber(ctx, suite.restaurantID)
	suite.Require().NoError(err)

	aggregate := suite.createTestOrder(number)
	suite.Require().NoError(orders.Add(ctx, aggregate))
	suite.Require().NoError(orders.AppendLogEntry(ctx, aggregate.CreationLogEntry("staff")))

	total, err := kernel.NewMoneyFromFloat(240)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.CustomerRepository().UpsertOnOrder(
		ctx, suite.restaurantID, "+77010000001", "Aigerim", total, time.Now().UTC()))

	suite.Require().NoError(uow.Commit(ctx))

	suite.assertCount(&orderrepo.OrderDTO{}, 1)
	suite.assertCount(&orderrepo.LogEntryDTO{}, 1)
	suite.assertCount(&customerrepo.CustomerDTO{}, 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsAllWrites() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))

	orders := uow.OrderRepository()
	number, err := orders.NextOrderNumber(ctx, suite.restaurantID)
	suite.Require().NoError(err)
	suite.Require().NoError(orders.Add(ctx, suite.createTestOrder(number)))

	total, err := kernel.NewMoneyFromFloat(240)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.CustomerRepository().UpsertOnOrder(
		ctx, suite.restaurantID, "+77010000001", "Aigerim", total, time.Now().UTC()))

	suite.Require().NoError(uow.Rollback(ctx))

	suite.assertCount(&orderrepo.OrderDTO{}, 0)
	suite.assertCount(&customerrepo.CustomerDTO{}, 0)
	// The counter upsert rolls back too, so the number is reissued.
	suite.assertCount(&orderrepo.CounterDTO{}, 0)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommitWithoutBegin_Fails() {
	uow := suite.factory.Create()

	err := uow.Commit(context.Background())
	suite.Require().ErrorIs(err, gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollbackAfterCommit_IsHarmlessNoOp() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Commit(ctx))

	err := uow.Rollback(ctx)
	suite.Require().ErrorIs(err, gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestBeginTwice_IsNoOp() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx))

	suite.Require().NoError(uow.OrderRepository().Add(ctx, suite.createTestOrder(1)))
	suite.Require().NoError(uow.Commit(ctx))

	suite.assertCount(&orderrepo.OrderDTO{}, 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRepositoryOutsideTransaction_WritesDirectly() {
	ctx := context.Background()
	uow := suite.factory.Create()

	// No Begin: writes autocommit on the shared connection. This is the
	// post-commit notification path of the submission handler.
	suite.Require().NoError(uow.OrderRepository().Add(ctx, suite.createTestOrder(1)))

	suite.assertCount(&orderrepo.OrderDTO{}, 1)

	// A later Rollback must not undo anything.
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
	suite.assertCount(&orderrepo.OrderDTO{}, 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) assertCount(model any, want int64) {
	var count int64
	suite.Require().NoError(suite.db.Model(model).Count(&count).Error)
	suite.Equal(want, count)
}

func (suite *UnitOfWorkIntegrationTestSuite) createTestOrder(number int64) *order.Order {
	price, err := kernel.NewMoneyFromFloat(120)
	suite.Require().NoError(err)
	item, err := order.NewLineItem(kernel.NewUUID(), "Plov", "L", 2, price)
	suite.Require().NoError(err)

	aggregate, err := order.NewOrder(
		kernel.NewUUID(),
		suite.restaurantID,
		number,
		[]order.LineItem{item},
		kernel.NoDiscount(),
		order.PaymentCash,
		order.Details{CustomerName: "Aigerim", CustomerPhone: "+77010000001"},
		false,
		time.Now().UTC(),
	)
	suite.Require().NoError(err)
	return aggregate
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
