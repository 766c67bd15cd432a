// internal/database/testing.go
package database

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var memCounter atomic.Int64

// OpenInMemory returns a migrated, isolated SQLite database. Used by tests and
// local tooling.
func OpenInMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:zuzi_mem_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", memCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}
