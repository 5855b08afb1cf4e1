// Package paths resolves where the backend executable lives and where its
// writable data root is, branching on development versus packaged builds.
//
// Development builds (-tags dev) look next to the source checkout:
// ../dist/pluto-duck-backend for the binary and ../.dev-data for data.
// Packaged builds look inside the bundled resources directory for the binary
// and under the per-user app-data directory for data, falling back to the
// system temp directory when the OS lookup fails.
package paths
