package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var accessTokenCmd = &cobra.Command{
	Use:   "access-token",
	Short: "Manage public access tokens",
}

var accessTokenIssueCmd = &cobra.Command{
	Use:   "issue CUSTOMER_ID",
	Short: "Print the customer's access token, creating it if needed",
	Long: `Print the access token an allowed customer uses against the public API.
A customer holds at most one token; issuing again prints the existing one.`,
	Args: cobra.ExactArgs(1),
	RunE: runWithApp(func(cmd *cobra.Command, a *app, args []string) error {
		id, err := parseID("customer id", args[0])
		if err != nil {
			return err
		}
		token, err := a.customers.IssueToken(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t(created %s)\n", token.Token, token.Created.Format(time.RFC3339))
		return nil
	}),
}

var accessTokenRevokeCmd = &cobra.Command{
	Use:   "revoke CUSTOMER_ID",
	Short: "Delete the customer's access token",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(cmd *cobra.Command, a *app, args []string) error {
		id, err := parseID("customer id", args[0])
		if err != nil {
			return err
		}
		removed, err := a.customers.RevokeToken(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("customer %d has no access token", id)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "access token of customer %d revoked\n", id)
		return nil
	}),
}

func init() {
	accessTokenCmd.AddCommand(accessTokenIssueCmd)
	accessTokenCmd.AddCommand(accessTokenRevokeCmd)
}
