// Package config loads, normalizes, and validates shell configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PLUTOSHELL_DATA_ROOT and PLUTOSHELL_BACKEND_BINARY. The Config type holds
// the few knobs the supervisor needs: build mode, path overrides, the backend
// stop policy, and logging.
//
// The backend port is not configurable; see backend.Port.
package config
