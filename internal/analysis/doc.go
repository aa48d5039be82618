// Package analysis persists forgery-analysis records in SQLite.
//
// Every submitted file becomes one Record that moves through a small status
// lifecycle as the processor extracts device identity and obtains a
// forgery-likelihood assessment. The store wraps database/sql over the
// modernc.org/sqlite driver with WAL journaling and busy retries so the
// daemon and CLI can share the database safely.
package analysis
