// Package models holds the GORM table mappings for the ledger. Domain types
// carry no ORM tags; each model converts to and from its aggregate with
// ToDomain and a ...FromDomain constructor. Money columns are integer minor
// units beside a three-letter currency column.
package models
