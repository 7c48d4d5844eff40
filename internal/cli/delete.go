package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/kroma-network/zkvm-common/internal/ident"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <l2_hash> <l1_head_hash>",
	Short: "Remove a stored witness",
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
		resp, err := client.do(http.MethodDelete, client.witnessURL(l2, l1), nil)
		if err != nil {
			return err
		}
		if resp.status != http.StatusNoContent {
			return apiError(resp)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", reqID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
