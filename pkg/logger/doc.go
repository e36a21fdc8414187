// Package logger builds log/slog loggers with environment presets and
// context-aware attribute extraction.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "shipfeed"),
//		logger.WithContextExtractors(requestid.LoggerExtractor(), identity.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "project created", logger.ProjectID(p.ID))
package logger
