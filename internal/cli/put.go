package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/kroma-network/zkvm-common/internal/ident"
)

// putCmd represents the put command
var putCmd = &cobra.Command{
	Use:   "put <l2_hash> <l1_head_hash> [witness-file]",
	Short: "Store a witness for a block hash pair",
	Long: `Put stores the witness JSON for the given L2 block hash and L1 head hash.

The witness payload is read from witness-file, or from stdin when the
file argument is omitted or given as "-".`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		l2, l1, reqID, err := ident.Preprocess(args[0], args[1])
		if err != nil {
			return err
		}
		payload, err := readWitness(cmd, args)
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		resp, err := client.do(http.MethodPut, client.witnessURL(l2, l1), payload)
		if err != nil {
			return err
		}
		if resp.status != http.StatusCreated {
			return apiError(resp)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", reqID)
		return nil
	},
}

func readWitness(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) > 2 && args[2] != "-" {
		return os.ReadFile(args[2])
	}
	return io.ReadAll(cmd.InOrStdin())
}

func init() {
	rootCmd.AddCommand(putCmd)
}
