// Package store provides table.Store implementations: an in-memory store
// for tests and single-process use, a SQLite store built on sqlx, and a
// directory of JSON files written atomically.
package store
