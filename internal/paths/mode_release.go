//go:build !dev

package paths

const buildMode = Packaged
