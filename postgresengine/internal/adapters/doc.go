// Package adapters provides database adapter implementations for the PostgreSQL store.
//
// It supports pgxpool.Pool, sql.DB and sqlx.DB behind the common DBAdapter interface.
// Reads may be routed to an optional replica when the context asks for eventual consistency.
package adapters
