// Package logging provides structured logging configuration for omnisend.
//
// This package wraps log/slog to provide consistent logging across all
// senders, the dispatcher and the command line. It supports configurable log
// levels and output formats.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("dispatching", "protocol", "COAP", "host", "127.0.0.1:5683")
//
// # Integration
//
// Components accept a *slog.Logger through their options. If no logger is
// provided they use logging.Nop().
package logging
