package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"orderflow/cmd"
	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/postgres/changefeed"
	"orderflow/internal/adapters/out/postgres/customerrepo"
	"orderflow/internal/adapters/out/postgres/notificationrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultDelayedAfterMinutes = 30

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// The transition graph is static; a malformed edge is a programming
	// error worth failing fast on.
	if err := order.VerifyTransitionGraph(); err != nil {
		log.Fatalf("invalid status transition graph: %v", err)
	}

	configs := getConfigs()

	db := mustOpenDB(configs)
	mustMigrate(db)

	app, err := cmd.NewCompositionRoot(configs, db, logger)
	if err != nil {
		log.Fatalf("failed to build composition root: %v", err)
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	feed, err := app.CreateChangeFeed()
	if err != nil {
		log.Fatalf("failed to open change feed: %v", err)
	}
	defer feed.Close()

	stopSync := startOrderStoreSync(&app, feed, logger)
	defer stopSync()

	startWebServer(&app, configs)
}

// startOrderStoreSync runs the staff console's live projection: seeded from
// the repository, then kept current by the change feed, ringing the bell
// (a log line here) once per newly surfaced order.
func startOrderStoreSync(app *cmd.CompositionRoot, feed ports.ChangeFeed, logger *slog.Logger) func() {
	store, sync, err := app.CreateOrderStoreSync(feed, func(snapshot ports.OrderSnapshot) {
		logger.Info("New order received",
			"order_id", snapshot.ID.String(),
			"order_number", snapshot.OrderNumber,
			"customer_name", snapshot.CustomerName,
			"total", snapshot.Total.String())
	})
	if err != nil {
		log.Fatalf("failed to build order store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	active, err := app.CreateOrderRepository().GetActive(ctx, app.RestaurantID())
	if err != nil {
		log.Fatalf("failed to seed order store: %v", err)
	}
	snapshots := make([]ports.OrderSnapshot, 0, len(active))
	for _, o := range active {
		snapshots = append(snapshots, ports.SnapshotOf(o))
	}
	store.Reset(snapshots)

	go func() {
		if runErr := sync.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Error("Change feed sync stopped", "error", runErr)
		}
	}()

	return cancel
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file loaded: %v", err)
	}

	delayedAfter := time.Duration(defaultDelayedAfterMinutes) * time.Minute
	if v := os.Getenv("ORDER_DELAYED_AFTER_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			log.Fatalf("invalid ORDER_DELAYED_AFTER_MINUTES: %q", v)
		}
		delayedAfter = time.Duration(minutes) * time.Minute
	}

	return cmd.Config{
		HTTPPort:       envOrDefault("HTTP_PORT", "8080"),
		DBHost:         mustEnv("DB_HOST"),
		DBPort:         envOrDefault("DB_PORT", "5432"),
		DBUser:         mustEnv("DB_USER"),
		DBPassword:     mustEnv("DB_PASSWORD"),
		DBName:         mustEnv("DB_NAME"),
		DBSslMode:      envOrDefault("DB_SSLMODE", "disable"),
		RestaurantID:   mustEnv("RESTAURANT_ID"),
		RestaurantName: envOrDefault("RESTAURANT_NAME", "Restaurant"),
		DelayedAfter:   delayedAfter,
	}
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("missing required environment variable %s", key)
	}
	return value
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustOpenDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	return db
}

func mustMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.LogEntryDTO{},
		&orderrepo.CounterDTO{},
		&customerrepo.CustomerDTO{},
		&notificationrepo.NotificationDTO{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if err = changefeed.EnsureChangeTrigger(db); err != nil {
		log.Fatalf("failed to install change trigger: %v", err)
	}
}

func startWebServer(app *cmd.CompositionRoot, configs cmd.Config) {
	e := echo.New()

	server := httpin.NewServer(
		app.RestaurantID(),
		configs.DelayedAfter,
		app.CreateSubmitOrderCommandHandler(),
		app.CreateChangeOrderStatusCommandHandler(),
		app.CreateMarkNotificationReadCommandHandler(),
		app.CreateGetOrdersBoardQueryHandler(),
		app.CreateGetOrderHistoryQueryHandler(),
		app.CreateGetCustomerQueryHandler(),
		app.CreateGetUnreadNotificationsQueryHandler(),
		app.CreateCheckoutFormatter(),
		app.CreateOrderUoWFactory(),
	)
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)))
}
