package database

import (
	"context"

	"gorm.io/gorm"
)

// RunInTransaction executes fn inside a single database transaction bound
// to ctx. If fn returns an error the transaction is rolled back, so a
// multi-step mutation either lands completely or not at all.
func RunInTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
