package cmd

import "time"

// Config holds the runtime configuration, populated from environment
// variables in cmd/app.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// RestaurantID scopes this instance to one restaurant.
	RestaurantID   string
	RestaurantName string

	// DelayedAfter is the age at which an active order counts as delayed.
	DelayedAfter time.Duration
}
