package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eventdesk/server/internal/auth"
)

var (
	tokenAccount int64
	tokenRole    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a staff JWT",
	Long: `Mint a bearer token for a staff account, signed with JWT_SECRET.

Staff sign in through another system in production; this command is meant
for development, scripts and smoke tests.`,
	Example: `  server token --account 1 --role editor`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenAccount <= 0 {
			return fmt.Errorf("--account must be a positive account id")
		}
		role, err := auth.ParseRole(tokenRole)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		manager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
		token, err := manager.Generate(tokenAccount, role)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenAccount, "account", 0, "staff account id")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleEditor), "role (admin, editor, viewer)")
}
