// Package importers moves normalized Pocket links into the destination store.
//
// # Flow
//
// A run walks through fixed stages:
//
//	INIT → CONNECTION_CHECK → LOAD → CONVERT → CONFIRM → BATCH_SEND → REPORT
//
// The connection probe runs before anything is read so that an unreachable
// store leaves no side effects. Loading re-filters the normalized file on
// status. Conversion maps every PocketLink to a Link (see Converter). The
// operator then approves a preview through an injected ConfirmFunc; declining
// ends the run without a single write.
//
// # Batches and fallback
//
// Links are sent in groups of Options.BatchSize. When a batch is rejected or
// the request fails outright, every link of that batch is sent again on its
// own. Links that still fail are recorded with their index and URL and are
// not retried further. The run never escalates more than once.
//
// # Results
//
// Importer.Run returns a Result holding every count and message. Nothing is
// printed from this package; see internal/report for presentation.
//
// # Example Usage
//
//	client := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.Table, 0)
//	converter := importers.NewConverter(importers.LinkDefaults{UserID: cfg.Import.UserID, ...})
//	importer := importers.NewImporter(client, converter, confirm, importers.Options{BatchSize: 50})
//	result, err := importer.Run(ctx, "pocket_unread_links.csv")
package importers
