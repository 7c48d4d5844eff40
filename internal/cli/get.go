package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/kroma-network/zkvm-common/internal/ident"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <l2_hash> <l1_head_hash>",
	Short: "Fetch a stored witness by its block hash pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		l2, l1, reqID, err := ident.Preprocess(args[0], args[1])
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		resp, err := client.do(http.MethodGet, client.witnessURL(l2, l1), nil)
		if err != nil {
			return err
		}
		switch resp.status {
		case http.StatusOK:
			return printJSON(cmd.OutOrStdout(), resp.body)
		case http.StatusNotFound:
			return fmt.Errorf("witness %s not found", reqID)
		default:
			return apiError(resp)
		}
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
