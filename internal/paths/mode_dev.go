//go:build dev

package paths

const buildMode = Development
