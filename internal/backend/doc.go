// Package backend launches the Pluto Duck backend executable as a child
// process and owns its lifetime.
//
// A Supervisor resolves the binary and data root, spawns the child with its
// output redirected to log files under the data root, and parks the running
// Process in a Handle. Shutdown is triggered either by the shell's exit event
// (Supervisor.Shutdown) or by a deferred Guard; whichever runs first takes the
// child out of the Handle and terminates it, the other finds the slot empty.
package backend
