// Package history keeps a SQLite record of backend launches under the data
// root: when each backend started, how it stopped, and why launches failed.
// The shell writes it through a backend.Observer; the CLI reads it back.
package history
