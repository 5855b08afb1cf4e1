// Package main hosts the plutoshell CLI.
//
// `plutoshell run` is the headless shell: it launches the Pluto Duck backend
// on its fixed port and stops it again when the shell exits. The remaining
// commands inspect what a run would use (paths), what previous runs did
// (history), and scaffold configuration.
package main
