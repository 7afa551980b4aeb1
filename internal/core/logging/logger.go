// Package logging holds zerolog helpers shared across toastq components.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component derives a logger from the global one tagged with cmp=name.
// Events logged with .Ctx(ctx) pick up request and client ids via ContextHook.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger().Hook(ContextHook{})
}
