// Package logging configures the process-wide zerolog logger and hands out
// per-package sub-loggers.
package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

// Module returns a sub-logger tagged with module=name.
func Module(name string) zerolog.Logger {
	return log.With().Str("module", name).Logger()
}

// SetLevel sets the global level from its name. An empty name means info.
func SetLevel(name string) error {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = zerolog.InfoLevel.String()
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("unknown log level %q: %w", name, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
