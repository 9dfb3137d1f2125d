package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// teeHandler sends every record to the console handler and to the JSON
// handler backing Config.File. A failure in either sink is returned to the
// caller instead of being dropped.
type teeHandler struct {
	console slog.Handler
	file    slog.Handler
}

func newTeeHandler(console, file slog.Handler) *teeHandler {
	return &teeHandler{console: console, file: file}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

// Handle writes r to both sinks even when the first one fails.
func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	if h.console.Enabled(ctx, r.Level) {
		if err := h.console.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, fmt.Errorf("console log: %w", err))
		}
	}
	if h.file.Enabled(ctx, r.Level) {
		if err := h.file.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, fmt.Errorf("log file: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newTeeHandler(h.console.WithAttrs(attrs), h.file.WithAttrs(attrs))
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return newTeeHandler(h.console.WithGroup(name), h.file.WithGroup(name))
}
