// Package shellrun is the headless shell: it owns logging, the data root
// lock, and launch history for one run, and ties the backend's lifetime to
// the run's.
package shellrun
