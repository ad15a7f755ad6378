package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/cwa-proxy-service/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	slogmulti "github.com/samber/slog-multi"
)

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	base := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	return withErrorMirror(base, cfg.LogFormat, os.Stderr)
}

// withErrorMirror leaves JSON loggers alone. In text mode, records at error
// level are also written as JSON to errOut so log shippers still see them.
func withErrorMirror(base *slog.Logger, format string, errOut io.Writer) *slog.Logger {
	if !strings.EqualFold(format, "text") {
		return base
	}
	logger := slog.New(slogmulti.Fanout(
		base.Handler(),
		slog.NewJSONHandler(errOut, &slog.HandlerOptions{Level: slog.LevelError}),
	))
	slog.SetDefault(logger)
	return logger
}
