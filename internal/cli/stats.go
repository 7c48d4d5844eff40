package cli

import (
	"net/http"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store and cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		resp, err := client.do(http.MethodGet, client.base+"/api/store/stats", nil)
		if err != nil {
			return err
		}
		if resp.status != http.StatusOK {
			return apiError(resp)
		}
		return printJSON(cmd.OutOrStdout(), resp.body)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
