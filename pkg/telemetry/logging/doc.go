// Package logging builds the process-wide structured logger.
//
// The logger is a plain *log/slog.Logger so every component takes the
// standard type; this package only owns handler construction (level,
// format, source annotation) and the request-ID context plumbing used by
// the HTTP layer:
//
//	logger, err := logging.New(logging.Config{Level: "debug", Format: "text"})
//	ctx = logging.ContextWithRequestID(ctx, id)
//	logging.FromContext(ctx, logger).Info("decision served")
package logging
