// Package services contains stateless domain services that operate across
// aggregates: the checkout text formatter handed to the messaging channel
// and the builder for order-created notifications. All services here are
// pure; side effects belong to the application layer.
package services
