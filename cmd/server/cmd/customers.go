package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Manage customers and the allow-list",
	Long: `Register customers and control which of them may be linked to events
and hold a public access token.

Removing a customer from the allow-list keeps its existing event links and
access token; it only blocks new ones.`,
}

var customersAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register a customer",
	Args:  cobra.MinimumNArgs(1),
	RunE: runWithApp(func(cmd *cobra.Command, a *app, args []string) error {
		customer, err := a.customers.Register(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "customer %d registered: %s\n", customer.ID, customer.Name)
		return nil
	}),
}

var customersAllowCmd = &cobra.Command{
	Use:   "allow CUSTOMER_ID",
	Short: "Add a customer to the allow-list",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(cmd *cobra.Command, a *app, args []string) error {
		id, err := parseID("customer id", args[0])
		if err != nil {
			return err
		}
		if err := a.customers.Allow(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "customer %d allowed\n", id)
		return nil
	}),
}

var customersDisallowCmd = &cobra.Command{
	Use:   "disallow CUSTOMER_ID",
	Short: "Remove a customer from the allow-list",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(cmd *cobra.Command, a *app, args []string) error {
		id, err := parseID("customer id", args[0])
		if err != nil {
			return err
		}
		removed, err := a.customers.Disallow(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), "customer %d was not allowed\n", id)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "customer %d disallowed\n", id)
		return nil
	}),
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List allowed customers",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(cmd *cobra.Command, a *app, args []string) error {
		list, err := a.customers.ListAllowed(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", c.ID, c.Name)
		}
		return nil
	}),
}

func init() {
	customersCmd.AddCommand(customersAddCmd)
	customersCmd.AddCommand(customersAllowCmd)
	customersCmd.AddCommand(customersDisallowCmd)
	customersCmd.AddCommand(customersListCmd)
}
