// Package database keeps the local run journal of the migration tool.
//
// The journal lives in a SQLite file opened through gorm. It is write-mostly:
// every import run adds one ImportRun row and one ImportFailure row per link
// that could not be created, so failed links can be reconciled by hand after
// the fact. Nothing reads the journal to decide what to import.
//
//	db, err := database.NewDatabase("./pocket-migration.db")
//	repo := runs.NewRepository(db.DB)
//	importer.SetJournal(repo)
package database
