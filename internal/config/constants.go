package config

import "time"

// Defaults are the values the Pocket migration was run with.
const (
	DefaultPocketDir    = "pocket"
	DefaultPocketFiles  = "part_000000.csv,part_000001.csv"
	DefaultUnreadOutput = "pocket_unread_links.csv"
	DefaultJournalPath  = "./pocket-migration.db"

	DefaultTable        = "links"
	DefaultBatchSize    = 50
	DefaultListName     = "read"
	DefaultStatus       = "unread"
	DefaultTargetStatus = "unread"
	DefaultDevice       = "import_script"

	DefaultBatchDelay  = 500 * time.Millisecond
	DefaultRetryDelay  = 200 * time.Millisecond
	DefaultHTTPTimeout = 30 * time.Second

	DefaultStubHost = "127.0.0.1"
	DefaultStubPort = 54321
)
