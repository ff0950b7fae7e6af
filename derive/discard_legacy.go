//go:build !go1.24

package derive

import (
	"context"
	"log/slog"
)

// discardHandler mirrors slog.DiscardHandler (added in Go 1.24) for older
// toolchains: it is never enabled and drops every record.
var discardHandler slog.Handler = discard{}

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }
