// Package sqlite provides the SQLite-backed message store for Recall.
//
// A single database file holds the messages table (including the
// embedding index columns: serialized vector, schema version and
// generation timestamp) and the scheduler tables. The schema is
// managed through embedded migrations applied at startup.
//
// Every embedding write updates vector, version and timestamp in one
// statement, so concurrent readers see either the old or the new row,
// never a torn one.
package sqlite
