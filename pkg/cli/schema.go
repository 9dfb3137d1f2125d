package cli

import (
	"fmt"

	"github.com/getmockd/omnisend/pkg/api/types"
	"github.com/getmockd/omnisend/pkg/cli/internal/output"
	"github.com/getmockd/omnisend/pkg/request"
	"github.com/spf13/cobra"
)

func newSchemaCmd(_ *app) *cobra.Command {
	var validate string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of request documents",
		Long: `Print the JSON Schema of request documents.

With --validate the given document is checked against the schema instead and
every violation is reported.`,
		Example: `  omnisend schema > request.schema.json
  omnisend schema --validate request.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if validate == "" {
				return output.RawJSON(cmd.OutOrStdout(), request.Schema(), true)
			}

			data, err := readDocument(cmd.InOrStdin(), nil, validate)
			if err != nil {
				return err
			}
			if err := request.ValidateJSON(data); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return err
		},
	}

	cmd.Flags().StringVar(&validate, "validate", "", `Validate a document file ("-" for stdin)`)
	return cmd
}

func newProtocolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "protocols",
		Short: "List supported protocols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := types.NewProtocolListResponse()
			out := cmd.OutOrStdout()
			if a.opts.jsonOutput {
				return output.JSON(out, list)
			}

			tw := output.Table(out)
			fmt.Fprintln(tw, "PROTOCOL\tNAME\tTRANSPORT\tCONNECTION\tPATTERN\tPORT")
			for _, md := range list.Protocols {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
					md.Protocol, md.Name, md.TransportType, md.ConnectionModel, md.CommunicationPattern, md.DefaultPort)
			}
			return tw.Flush()
		},
	}
}
