package paths

import (
	"fmt"
	"strings"

	"plutoshell/internal/config"
)

// Mode selects where the backend binary and data root are looked up.
type Mode string

const (
	// Development resolves paths relative to the source checkout.
	Development Mode = config.ModeDevelopment
	// Packaged resolves paths relative to the installed bundle and OS app-data dir.
	Packaged Mode = config.ModePackaged
)

// BuildMode reports the mode this binary was compiled for. Builds with
// -tags dev default to Development; everything else defaults to Packaged.
func BuildMode() Mode {
	return buildMode
}

// ParseMode converts a config value into a Mode. An empty value yields the
// build default.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return buildMode, nil
	case string(Development):
		return Development, nil
	case string(Packaged):
		return Packaged, nil
	default:
		return "", fmt.Errorf("unknown mode %q", value)
	}
}
