package cli

import (
	"fmt"
	"io"

	"github.com/getmockd/omnisend/pkg/cli/internal/output"
	"github.com/getmockd/omnisend/pkg/sandbox"
	"github.com/getmockd/omnisend/pkg/util"
	"github.com/spf13/cobra"
)

// maxLoggedPayload bounds the payload text logged per sandbox event.
const maxLoggedPayload = 256

// SandboxOutput lists the bound sandbox addresses.
type SandboxOutput struct {
	MQTT   string `json:"mqtt"`
	MQTTSN string `json:"mqttsn"`
	CoAP   string `json:"coap"`
	HTTP   string `json:"http"`
}

func newSandboxCmd(a *app) *cobra.Command {
	var addrs sandbox.Config

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run local targets for every protocol",
		Long: `Run local targets for every protocol until interrupted:

  MQTT     embedded broker, received publishes are logged
  MQTT-SN  UDP sink, every datagram is logged
  CoAP     UDP echo server replying 2.05 Content with the request payload
  HTTP     echo server: GET /ping returns "pong", /echo returns the request

Received messages are logged at info level.`,
		Example: `  omnisend sandbox
  omnisend sandbox --http 127.0.0.1:9090 --coap 127.0.0.1:15683`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			defer a.close()

			cfg := a.cfg.Sandbox
			f := cmd.Flags()
			if f.Changed("mqtt") {
				cfg.MQTTAddr = addrs.MQTTAddr
			}
			if f.Changed("mqttsn") {
				cfg.MQTTSNAddr = addrs.MQTTSNAddr
			}
			if f.Changed("coap") {
				cfg.CoAPAddr = addrs.CoAPAddr
			}
			if f.Changed("http") {
				cfg.HTTPAddr = addrs.HTTPAddr
			}

			sb := sandbox.New(cfg, a.log.With("component", "sandbox"))
			sb.OnEvent(a.logEvent)
			if err := sb.Start(cmd.Context()); err != nil {
				return err
			}

			report := sandboxOutput(sb)
			if a.opts.jsonOutput {
				if err := output.JSON(cmd.OutOrStdout(), report); err != nil {
					_ = sb.Close()
					return err
				}
			} else {
				printSandbox(cmd.OutOrStdout(), *report)
			}
			a.notifyReady(report.HTTP)

			return sb.Wait()
		},
	}

	def := sandbox.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&addrs.MQTTAddr, "mqtt", def.MQTTAddr, "MQTT broker address")
	f.StringVar(&addrs.MQTTSNAddr, "mqttsn", def.MQTTSNAddr, "MQTT-SN sink address")
	f.StringVar(&addrs.CoAPAddr, "coap", def.CoAPAddr, "CoAP echo address")
	f.StringVar(&addrs.HTTPAddr, "http", def.HTTPAddr, "HTTP echo address")
	return cmd
}

func sandboxOutput(sb *sandbox.Sandbox) *SandboxOutput {
	return &SandboxOutput{
		MQTT:   sb.MQTTAddr(),
		MQTTSN: sb.MQTTSNAddr(),
		CoAP:   sb.CoAPAddr(),
		HTTP:   sb.HTTPAddr(),
	}
}

func printSandbox(w io.Writer, s SandboxOutput) {
	fmt.Fprintln(w, "Sandbox targets:")
	tw := output.Table(w)
	fmt.Fprintf(tw, "  MQTT\t%s\n", s.MQTT)
	fmt.Fprintf(tw, "  MQTT-SN\t%s\n", s.MQTTSN)
	fmt.Fprintf(tw, "  CoAP\t%s\n", s.CoAP)
	fmt.Fprintf(tw, "  HTTP\thttp://%s\n", s.HTTP)
	_ = tw.Flush()
}

func (a *app) logEvent(e sandbox.Event) {
	a.log.Info("received",
		"protocol", e.Protocol.Label(),
		"from", e.From,
		"target", e.Target,
		"bytes", len(e.Payload),
		"payload", util.TruncateBody(util.LossyString(e.Payload), maxLoggedPayload))
}

// notifyReady reports the bound address to onReady, if set.
func (a *app) notifyReady(addr string) {
	if a.onReady != nil {
		a.onReady(addr)
	}
}
