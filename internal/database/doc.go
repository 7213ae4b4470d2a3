// Package database provides the PostgreSQL connection pool used to export trades.
//
// The pool is optional: the engine runs entirely in memory and only opens a
// connection when database.enabled is set.
package database
