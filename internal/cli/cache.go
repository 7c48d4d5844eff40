package cli

import (
	"net/http"

	"github.com/spf13/cobra"
)

// cacheCmd groups the admin cache operations. These endpoints require
// the --token flag to match the server's ADMIN_API_TOKEN.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Administer the server's response cache",
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop every entry from the response cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		resp, err := client.do(http.MethodPost, client.base+"/api/admin/cache/invalidate", nil)
		if err != nil {
			return err
		}
		if resp.status != http.StatusOK {
			return apiError(resp)
		}
		return printJSON(cmd.OutOrStdout(), resp.body)
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show response cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		resp, err := client.do(http.MethodGet, client.base+"/api/admin/cache/stats", nil)
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
	cacheCmd.AddCommand(cacheInvalidateCmd, cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}
