// Package store records completed runs in a SQLite database so that
// timings can be compared across invocations (--history, --history-list).
package store
