package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/getmockd/omnisend/pkg/cli/help"
	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// globalOptions holds the persistent flags available to all subcommands.
type globalOptions struct {
	configFile string
	logLevel   string
	logFormat  string
	jsonOutput bool
}

// NewRootCmd builds the omnisend command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "omnisend",
		Short: "omnisend sends one request over HTTP, MQTT, MQTT-SN or CoAP",
		Long: `omnisend is a universal protocol dispatcher. It takes a single request
description, performs one transport operation over HTTP, MQTT, MQTT-SN or CoAP
and reports a normalized result.

Requests can be sent from the command line, as JSON documents, or through the
HTTP API started by "omnisend serve".

Configuration can be provided via flags, OMNISEND_* environment variables, or a
configuration file. By default omnisend looks for ./.omnisend.yaml and then for
omnisend/config.yaml in the user config directory.`,
		// No Run function here means 'omnisend' with no args will print help text by default.
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.opts.configFile, "config", "c", "", "Path to a config file (default: discovered)")
	pf.StringVar(&a.opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&a.opts.logFormat, "log-format", "", "Log format: text or json (overrides config)")
	pf.BoolVar(&a.opts.jsonOutput, "json", false, "Output command results in JSON format")

	rootCmd.AddCommand(
		newSendCmd(a),
		newHTTPCmd(a),
		newMQTTCmd(a),
		newMQTTSNCmd(a),
		newCoAPCmd(a),
		newServeCmd(a),
		newSandboxCmd(a),
		newSchemaCmd(a),
		newProtocolsCmd(a),
		newInitCmd(a),
		newVersionCmd(a),
	)
	addHelpTopics(rootCmd)

	return rootCmd
}

// addHelpTopics registers the embedded topics as cobra help topics, so
// "omnisend help config" prints them.
func addHelpTopics(rootCmd *cobra.Command) {
	for _, name := range help.AvailableTopics {
		content, err := help.GetTopic(name)
		if err != nil {
			continue
		}
		rootCmd.AddCommand(&cobra.Command{
			Use:   name,
			Short: help.TopicDescriptions[name],
			Long:  content,
		})
	}
}

// Execute runs the command tree. This is called by main.main().
// SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signalContext(context.Background())
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
