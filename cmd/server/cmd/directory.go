package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eventdesk/server/internal/domain/directory"
)

// The account and address tables mirror records owned elsewhere. These
// commands exist to seed them in development and tests.

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage mirrored staff accounts",
}

var accountsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a staff account",
	Args:  cobra.MinimumNArgs(1),
	RunE: runWithApp(func(cmd *cobra.Command, a *app, args []string) error {
		account, err := a.directory.CreateAccount(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "account %d created: %s\n", account.ID, account.Name)
		return nil
	}),
}

var addressesCmd = &cobra.Command{
	Use:   "addresses",
	Short: "Manage mirrored postal addresses",
}

var addressParams directory.AddressParams

var addressesAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Create a postal address",
	Example: `  server addresses add --street "Main Street" --house-number 12 --zip-code 10115 --city Berlin`,
	Args:    cobra.NoArgs,
	RunE: runWithApp(func(cmd *cobra.Command, a *app, args []string) error {
		address, err := a.directory.CreateAddress(cmd.Context(), addressParams)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "address %d created: %s %s, %s %s\n",
			address.ID, address.Street, address.HouseNumber, address.ZipCode, address.City)
		return nil
	}),
}

func init() {
	accountsCmd.AddCommand(accountsAddCmd)

	addressesAddCmd.Flags().StringVar(&addressParams.Street, "street", "", "street name")
	addressesAddCmd.Flags().StringVar(&addressParams.HouseNumber, "house-number", "", "house number")
	addressesAddCmd.Flags().StringVar(&addressParams.ZipCode, "zip-code", "", "postal code")
	addressesAddCmd.Flags().StringVar(&addressParams.City, "city", "", "city")
	addressesCmd.AddCommand(addressesAddCmd)
}
