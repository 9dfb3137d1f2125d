package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/getmockd/omnisend/internal/config"
	"github.com/getmockd/omnisend/pkg/api"
	"github.com/getmockd/omnisend/pkg/api/types"
	"github.com/getmockd/omnisend/pkg/cli/internal/output"
	"github.com/getmockd/omnisend/pkg/dispatch"
	"github.com/getmockd/omnisend/pkg/logging"
	"github.com/getmockd/omnisend/pkg/metrics"
	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/ratelimit"
	"github.com/getmockd/omnisend/pkg/request"
	"github.com/getmockd/omnisend/pkg/requestlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// app carries the state shared by subcommands of one invocation.
type app struct {
	opts globalOptions

	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer

	// onReady is called with the bound address once serve or sandbox is
	// listening.
	onReady func(addr string)
}

// load reads the configuration and builds the logger. Subcommands that need
// neither (init, version) never call it.
func (a *app) load(cmd *cobra.Command) error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.Load(config.Options{File: a.opts.configFile})
	if err != nil {
		return err
	}
	if a.opts.logLevel != "" {
		if !logging.IsValidLevel(a.opts.logLevel) {
			return errors.New("invalid --log-level: " + a.opts.logLevel)
		}
		cfg.Log.Level = a.opts.logLevel
	}
	if a.opts.logFormat != "" {
		if !logging.IsValidFormat(a.opts.logFormat) {
			return errors.New("invalid --log-format: " + a.opts.logFormat)
		}
		cfg.Log.Format = a.opts.logFormat
	}

	log, closer, err := logging.Open(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: cmd.ErrOrStderr(),
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.logCloser = closer
	if cfg.Source != "" {
		log.Debug("configuration loaded", "source", cfg.Source)
	}
	return nil
}

// close releases the log file, if any.
func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// dispatchOptions maps the loaded configuration onto the dispatcher.
func (a *app) dispatchOptions(m *metrics.Metrics) dispatch.Options {
	opts := a.cfg.DispatchOptions()
	opts.Metrics = m
	opts.Logger = a.log
	return opts
}

// apiOptions maps the loaded configuration onto the API server.
func (a *app) apiOptions(gatherer prometheus.Gatherer, history requestlog.Store) api.Options {
	opts := api.Options{
		Addr:        a.cfg.API.Addr,
		MaxBodySize: a.cfg.API.MaxBodySize,
		Version:     Version,
		Gatherer:    gatherer,
		History:     history,
		Logger:      a.log.With("component", "api"),
	}
	if a.cfg.API.RateLimit > 0 {
		opts.RateLimit = ratelimit.New(ratelimit.Config{
			Rate:  a.cfg.API.RateLimit,
			Burst: a.cfg.API.RateBurst,
		})
	}
	return opts
}

// dispatcher builds a dispatcher without metrics for one-shot commands.
func (a *app) dispatcher() *dispatch.Dispatcher {
	return dispatch.New(a.dispatchOptions(nil))
}

// dispatch sends one request and releases the dispatcher afterwards.
func (a *app) dispatch(ctx context.Context, req request.Request) (request.Response, error) {
	d := a.dispatcher()
	defer func() {
		if err := d.Close(context.WithoutCancel(ctx)); err != nil {
			a.log.Warn("close dispatcher", "error", err)
		}
	}()
	return d.Dispatch(ctx, req)
}

// fail reports err as an error document on stdout when --json is set and
// returns it unchanged.
func (a *app) fail(cmd *cobra.Command, err error) error {
	if err == nil || !a.opts.jsonOutput {
		return err
	}
	_ = output.JSON(cmd.OutOrStdout(), types.ErrorResponse{
		Error:   string(protocol.KindOf(err)),
		Message: err.Error(),
	})
	return err
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
