package cli

import (
	"context"
	"fmt"

	"github.com/getmockd/omnisend/pkg/api"
	"github.com/getmockd/omnisend/pkg/cli/internal/output"
	"github.com/getmockd/omnisend/pkg/dispatch"
	"github.com/getmockd/omnisend/pkg/metrics"
	"github.com/getmockd/omnisend/pkg/requestlog"
	"github.com/getmockd/omnisend/pkg/sandbox"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ServeOutput is the --json form of the serve startup report.
type ServeOutput struct {
	API     string         `json:"api"`
	Sandbox *SandboxOutput `json:"sandbox,omitempty"`
}

func newServeCmd(a *app) *cobra.Command {
	var (
		addr        string
		withSandbox bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API and serve until interrupted.

Endpoints:
  POST /v1/send       send one request document, returns the response document
  GET  /v1/protocols  supported protocols
  GET  /v1/schema     JSON Schema of the request document
  GET  /v1/requests   recent dispatches (filters: protocol, outcome, topic,
                      limit, offset); DELETE clears them
  GET  /v1/requests/{id}  one recorded dispatch
  GET  /healthz       health check
  GET  /metrics       Prometheus metrics

With --sandbox the local sandbox targets run in the same process.
api.historySize bounds the history (0 disables it) and api.rateLimit caps
/v1/send per client IP.`,
		Example: `  omnisend serve
  omnisend serve --addr 0.0.0.0:8700
  omnisend serve --sandbox`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			defer a.close()
			if cmd.Flags().Changed("addr") {
				a.cfg.API.Addr = addr
			}
			return a.serve(cmd, withSandbox)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", api.DefaultAddr, "API listen address (overrides api.addr)")
	cmd.Flags().BoolVar(&withSandbox, "sandbox", false, "Also run the sandbox targets")
	return cmd
}

func (a *app) serve(cmd *cobra.Command, withSandbox bool) error {
	registry := metrics.NewRegistry()
	opts := a.dispatchOptions(metrics.New(registry))

	var history requestlog.Store
	if a.cfg.API.HistorySize > 0 {
		store := requestlog.NewMemoryStore(a.cfg.API.HistorySize)
		opts.History = store
		history = store
	}

	d := dispatch.New(opts)
	defer func() {
		if err := d.Close(context.WithoutCancel(cmd.Context())); err != nil {
			a.log.Warn("close dispatcher", "error", err)
		}
	}()

	g, ctx := errgroup.WithContext(cmd.Context())
	report := ServeOutput{}

	if withSandbox {
		sb := sandbox.New(a.cfg.Sandbox, a.log.With("component", "sandbox"))
		sb.OnEvent(a.logEvent)
		if err := sb.Start(ctx); err != nil {
			return err
		}
		report.Sandbox = sandboxOutput(sb)
		g.Go(sb.Wait)
	}

	srv := api.New(d, a.apiOptions(registry, history))
	ready := make(chan string, 1)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, func(addr string) { ready <- addr })
	})

	select {
	case report.API = <-ready:
		if err := a.printServe(cmd, report); err != nil {
			return err
		}
		a.notifyReady(report.API)
	case <-ctx.Done():
	}

	return g.Wait()
}

func (a *app) printServe(cmd *cobra.Command, report ServeOutput) error {
	out := cmd.OutOrStdout()
	if a.opts.jsonOutput {
		return output.JSON(out, report)
	}
	fmt.Fprintf(out, "omnisend API listening on http://%s\n", report.API)
	if report.Sandbox != nil {
		printSandbox(out, *report.Sandbox)
	}
	return nil
}
