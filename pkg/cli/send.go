package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/getmockd/omnisend/pkg/cli/internal/output"
	"github.com/spf13/cobra"
)

func newSendCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "send [request-json]",
		Short: "Send a request described by a JSON document",
		Long: `Send a request described by a tagged JSON document and print the
response document.

The document is taken from the argument, from --file, or from stdin when
neither is given (or when --file is "-"). See "omnisend help request" for
the document format.`,
		Example: `  # Inline document
  omnisend send '{"protocol":"HTTP","method":"GET","url":"http://127.0.0.1:8080/ping"}'

  # From a file
  omnisend send -f request.json

  # From stdin
  echo '{"protocol":"MQTT_SN","gateway":"127.0.0.1","port":10000,"data":"hello"}' | omnisend send`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && file != "" {
				return fmt.Errorf("pass the document as an argument or with --file, not both")
			}
			data, err := readDocument(cmd.InOrStdin(), args, file)
			if err != nil {
				return err
			}

			if err := a.load(cmd); err != nil {
				return err
			}
			defer a.close()

			d := a.dispatcher()
			defer func() { _ = d.Close(cmd.Context()) }()

			out, err := d.Invoke(cmd.Context(), data)
			if err != nil {
				return a.fail(cmd, err)
			}
			return output.RawJSON(cmd.OutOrStdout(), out, true)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `Read the document from a file ("-" for stdin)`)
	return cmd
}

// readDocument returns the request document from the argument, the file or
// stdin, in that order.
func readDocument(stdin io.Reader, args []string, file string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case len(args) == 1:
		data = []byte(args[0])
	case file != "" && file != "-":
		data, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
	default:
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("empty request document")
	}
	return data, nil
}
