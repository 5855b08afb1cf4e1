//go:build windows

package main

import "os"

func dirWritable(path string) bool {
	f, err := os.CreateTemp(path, ".plutoshell-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
