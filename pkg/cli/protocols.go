package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/getmockd/omnisend/pkg/cli/internal/flags"
	"github.com/getmockd/omnisend/pkg/cli/internal/output"
	"github.com/getmockd/omnisend/pkg/cli/internal/parse"
	"github.com/getmockd/omnisend/pkg/request"
	"github.com/spf13/cobra"
)

// sendRequest dispatches req and renders the response. With dryRun the
// request document is printed instead and nothing is sent.
func (a *app) sendRequest(cmd *cobra.Command, req request.Request, dryRun bool, render func(io.Writer, request.Response) error) error {
	out := cmd.OutOrStdout()
	if dryRun {
		data, err := request.Encode(req)
		if err != nil {
			return err
		}
		return output.RawJSON(out, data, true)
	}

	if err := a.load(cmd); err != nil {
		return err
	}
	defer a.close()

	resp, err := a.dispatch(cmd.Context(), req)
	if err != nil {
		return a.fail(cmd, err)
	}
	if a.opts.jsonOutput {
		return output.JSON(out, resp)
	}
	return render(out, resp)
}

func newHTTPCmd(a *app) *cobra.Command {
	var (
		method  string
		headers flags.StringSlice
		data    string
		include bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "http [flags] <url>",
		Short: "Send one HTTP request",
		Long: `Send one HTTP request and print the response body.

The method is sent exactly as given. Headers are sent in the order given.
The response body is printed as text.`,
		Example: `  omnisend http http://127.0.0.1:8080/ping
  omnisend http -X POST -H "Content-Type: application/json" -d '{"a":1}' http://127.0.0.1:8080/echo
  omnisend http -d @body.json http://127.0.0.1:8080/echo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hdrs, err := parse.Headers(headers)
			if err != nil {
				return err
			}

			req := request.HTTP{
				Method:  method,
				URL:     args[0],
				Headers: hdrs,
			}
			if cmd.Flags().Changed("data") {
				body, err := parse.Payload(data, cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.Body = request.String(body)
				if !cmd.Flags().Changed("method") {
					req.Method = "POST"
				}
			}

			return a.sendRequest(cmd, req, dryRun, func(w io.Writer, resp request.Response) error {
				res, ok := resp.(request.HTTPResult)
				if !ok {
					return fmt.Errorf("unexpected response %T", resp)
				}
				if include {
					fmt.Fprintf(w, "HTTP %d\n\n", res.Status)
				}
				return writeText(w, res.Body)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&method, "method", "X", "GET", "HTTP method (POST when --data is given)")
	f.VarP(&headers, "header", "H", `Request header "Name: value" (repeatable)`)
	f.StringVarP(&data, "data", "d", "", "Request body (@file or @- for stdin)")
	f.BoolVarP(&include, "include", "i", false, "Print the status line before the body")
	f.BoolVar(&dryRun, "dry-run", false, "Print the request document instead of sending it")
	return cmd
}

func newMQTTCmd(a *app) *cobra.Command {
	var (
		broker string
		port   uint16
		qos    flags.QoS
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "mqtt [flags] <topic> <message>",
		Short: "Publish one MQTT message",
		Long: `Publish one message to an MQTT broker.

qos 0 is at-most-once, qos 1 is at-least-once and every other value
(2..255) is exactly-once. The message is handed to the local session and
flushed before the command exits; the broker acknowledgement is not awaited.`,
		Example: `  omnisend mqtt sensors/temperature 25.5
  omnisend mqtt -b broker.local -p 1884 --qos 1 sensors/temperature 25.5
  omnisend mqtt sensors/config @config.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := parse.Payload(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}

			req := request.MQTT{
				Broker:  broker,
				Port:    port,
				Topic:   args[0],
				QoS:     uint8(qos),
				Message: message,
			}
			return a.sendRequest(cmd, req, dryRun, func(w io.Writer, _ request.Response) error {
				_, err := fmt.Fprintf(w, "Published to %s on %s (qos %d)\n", req.Topic, req.Addr(), req.QoS)
				return err
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&broker, "broker", "b", "127.0.0.1", "MQTT broker host")
	f.Uint16VarP(&port, "port", "p", 1883, "MQTT broker port")
	f.VarP(&qos, "qos", "q", "QoS level 0..255")
	f.BoolVar(&dryRun, "dry-run", false, "Print the request document instead of sending it")
	return cmd
}

func newMQTTSNCmd(a *app) *cobra.Command {
	var (
		gateway string
		port    uint16
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "mqttsn [flags] <data>",
		Short: "Send one MQTT-SN datagram",
		Long: `Send the given bytes as exactly one UDP datagram to an MQTT-SN gateway.

The data is sent unchanged; no MQTT-SN framing is added.`,
		Example: `  omnisend mqttsn hello
  omnisend mqttsn -g 10.0.0.5 -p 1885 @frame.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parse.Payload(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			req := request.MQTTSN{
				Gateway: gateway,
				Port:    port,
				Data:    data,
			}
			return a.sendRequest(cmd, req, dryRun, func(w io.Writer, _ request.Response) error {
				_, err := fmt.Fprintf(w, "Sent %d bytes to %s\n", len(req.Data), req.Addr())
				return err
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&gateway, "gateway", "g", "127.0.0.1", "MQTT-SN gateway host")
	f.Uint16VarP(&port, "port", "p", 10000, "MQTT-SN gateway port")
	f.BoolVar(&dryRun, "dry-run", false, "Print the request document instead of sending it")
	return cmd
}

func newCoAPCmd(a *app) *cobra.Command {
	var (
		method  string
		payload string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "coap [flags] <host:port> [path]",
		Short: "Send one CoAP request and print the reply",
		Long: `Send one confirmable CoAP request over UDP and print the first reply.

GET and POST are supported. PUT is rejected unless coap.allowPut is set.
The reply datagram is printed as text.`,
		Example: `  omnisend coap 127.0.0.1:5683 sensor/temp
  omnisend coap -X POST -d 21.5 127.0.0.1:5683 sensor/temp`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CoAP{
				Method: strings.ToUpper(method),
				Host:   args[0],
			}
			if len(args) == 2 {
				req.Path = args[1]
			}
			if cmd.Flags().Changed("payload") {
				p, err := parse.Payload(payload, cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.Payload = request.String(p)
			}

			return a.sendRequest(cmd, req, dryRun, func(w io.Writer, resp request.Response) error {
				res, ok := resp.(request.CoAPResult)
				if !ok {
					return fmt.Errorf("unexpected response %T", resp)
				}
				return writeText(w, res.Response)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&method, "method", "X", "GET", "CoAP method (GET or POST)")
	f.StringVarP(&payload, "payload", "d", "", "Request payload (@file or @- for stdin)")
	f.BoolVar(&dryRun, "dry-run", false, "Print the request document instead of sending it")
	return cmd
}

// writeText writes s followed by a newline unless it already ends with one.
func writeText(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	if !strings.HasSuffix(s, "\n") {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}
