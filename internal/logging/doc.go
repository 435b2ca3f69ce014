// Package logging provides structured logging helpers for sheetdrive.
//
// All packages log through log/slog. This package only fixes attribute names
// so gateway calls, tool invocations and credential events can be correlated
// across log lines.
//
//	logger := logging.WithFamily(slog.Default(), "storage")
//	logger.Warn("dispatch failed",
//	    logging.Method(http.MethodGet),
//	    logging.StatusCode(404),
//	    logging.Err(err))
//
// Tokens are never logged directly; use SanitizeToken. Service account
// emails are hashed with AnonymizeEmail unless an audit stream is configured
// to include them.
package logging
