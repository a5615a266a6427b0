// Package database opens the state database through GORM.
//
// Two drivers are supported: sqlite (the default, a single file next to the
// binary) and mysql for shared installs. SQLite connections are limited to one so
// that the single writer never hits SQLITE_BUSY and ":memory:" databases survive
// between queries.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live schema so the store can verify
// its tables after migration.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
