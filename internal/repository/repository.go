// Package repository implements data access on PostgreSQL with pgx.
//
// Lookups by id return nil, nil when the row does not exist and leave the decision to
// the service layer. Lookups that lock a row, and conditional updates that match no
// row, return the matching service sentinel instead.
package repository

import (
	"github.com/Jsun-cre8bara/eatsrun-api/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	database.TxQuerier
}
