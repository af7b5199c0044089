package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate adds a SELECT ... FOR UPDATE clause on postgres. The sqlite
// driver used by the test suite has no FOR UPDATE syntax; its single-writer
// transaction lock covers the same invariant there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	return tx
}
