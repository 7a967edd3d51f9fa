package lugha

import (
	"context"

	"github.com/pitabwire/util"
)

// NewLogger builds a logger from the supplied configuration.
func NewLogger(ctx context.Context, cfg ConfigurationLogLevel, opts ...util.Option) *util.LogEntry {
	logLevel, err := util.ParseLevel(cfg.LoggingLevel())
	if err == nil {
		opts = append(opts, util.WithLogLevel(logLevel))
	}

	opts = append(opts,
		util.WithLogTimeFormat(cfg.LoggingTimeFormat()),
		util.WithLogNoColor(!cfg.LoggingColored()))

	if cfg.LoggingShowStackTrace() {
		opts = append(opts, util.WithLogStackTrace())
	}

	return util.NewLogger(ctx, opts...)
}
