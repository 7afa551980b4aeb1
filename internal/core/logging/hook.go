package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies request_id and client_id from the event's context.
type ContextHook struct{}

// Run implements zerolog.Hook.
func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	for key, get := range map[contextKey]func(context.Context) string{
		requestIDKey: GetRequestID,
		clientIDKey:  GetClientID,
	} {
		if v := get(ctx); v != "" {
			e.Str(string(key), v)
		}
	}
}
