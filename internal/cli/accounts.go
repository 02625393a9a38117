package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newAccountsCmd() *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Shared account pool operations",
	}

	accountsCmd.AddCommand(newAccountsInfoCmd())
	accountsCmd.AddCommand(newAccountsAcquireCmd())
	accountsCmd.AddCommand(newAccountsReleaseCmd())

	return accountsCmd
}

func newAccountsInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show pool availability and current holders",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AccountsInfo
			if err := client.Get("/api/v1/accounts", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newAccountsAcquireCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "acquire <participant-id>",
		Short: "Borrow an account from the pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"participant": participantArg(args[0], displayName)}

			var result Account
			if err := client.Post("/api/v1/accounts/acquire", body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "name", "", "Display name (defaults to the id)")
	return cmd
}

func newAccountsReleaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release <account-id>",
		Short: "Return an account to the pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}

			body := map[string]int{"account_id": id}
			if err := client.Post("/api/v1/accounts/release", body, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Account released")
			return nil
		},
	}
}
