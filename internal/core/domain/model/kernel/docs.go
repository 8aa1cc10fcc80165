// Package kernel contains shared value objects used across the order domain.
//
// The kernel provides:
//   - UUID: validated identifier wrapping github.com/google/uuid
//   - Money: exact non-negative monetary amounts backed by shopspring/decimal
//   - Discount: fixed or percentage price reductions with clamping semantics
//
// All kernel types are immutable value objects created through constructor
// functions. Zero values fail Validate, which prevents aggregates from being
// assembled out of uninitialized parts.
package kernel
