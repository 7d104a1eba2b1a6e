// Package models contains GORM persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel shared by every table with a uuid key
//   - inventory.go: variants, channel inventory records and the audit log
//   - order.go: channel orders and their items
package models
