package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kroma-network/zkvm-common/internal/engine"
	"github.com/kroma-network/zkvm-common/internal/integrity"
)

// verifyCmd represents the verify command. Unlike the other commands it
// operates on a store directory, not the HTTP API.
var verifyCmd = &cobra.Command{
	Use:   "verify <store-path>",
	Short: "Scan a witness store directory for corruption",
	Long: `Verify opens a store directory and checks every entry: envelopes must
decode and the live-entry counter must match the keys actually present.
The store must not be open in another process.

With --repair, undecodable entries are deleted and the counter rewritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl, err := cmd.Flags().GetUint64("ttl-secs")
		if err != nil {
			return err
		}
		repair, err := cmd.Flags().GetBool("repair")
		if err != nil {
			return err
		}

		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("store path: %w", err)
		}
		eng, err := engine.OpenLevelDB(args[0])
		if err != nil {
			return err
		}
		defer eng.Close()

		svc := integrity.NewService(eng, ttl)
		if repair {
			deleted, err := svc.Repair(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "repair: deleted %d corrupt entries\n", deleted)
		}

		results, err := svc.CheckAll(cmd.Context())
		if err != nil {
			return err
		}
		issues := false
		for _, r := range results {
			status := "ok"
			if r.HasIssues {
				status = "FAIL"
				issues = true
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-28s %6d  %-4s  %s\n", r.CheckName, r.IssueCount, status, r.Details)
		}
		if issues {
			return fmt.Errorf("integrity issues found")
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().Uint64("ttl-secs", 604800, "TTL window used to classify entries as expired")
	verifyCmd.Flags().Bool("repair", false, "Delete corrupt entries and rewrite the counter")
	rootCmd.AddCommand(verifyCmd)
}
