// Package database provides the connection pool for the tick store.
//
// The extractor writes decoded trade and depth events to a single
// TimescaleDB/PostgreSQL database; schema creation is owned by the
// deployment, not by this process.
package database
