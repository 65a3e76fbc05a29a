// Package models contains GORM persistence models for the ledger tables.
// Models carry the table mappings; mappers convert them to domain values so
// the domain layer stays free of ORM concerns.
package models
