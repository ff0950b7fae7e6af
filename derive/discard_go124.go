//go:build go1.24

package derive

import "log/slog"

// discardHandler is slog.DiscardHandler on toolchains that provide it.
var discardHandler slog.Handler = slog.DiscardHandler
