package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPresenceCmd() *cobra.Command {
	presenceCmd := &cobra.Command{
		Use:   "presence",
		Short: "Participant reachability operations",
	}

	presenceCmd.AddCommand(newPresenceShowCmd())
	presenceCmd.AddCommand(newPresenceSetCmd())

	return presenceCmd
}

func newPresenceShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <participant-id>",
		Short: "Show a participant's reachability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]bool
			if err := client.Get(fmt.Sprintf("/api/v1/presence/%s", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPresenceSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <participant-id> <online|offline>",
		Short: "Report a participant's reachability",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reachable := args[1] == "online"
			if !reachable && args[1] != "offline" {
				return fmt.Errorf("expected online or offline, got %q", args[1])
			}

			body := map[string]bool{"reachable": reachable}
			if err := client.Put(fmt.Sprintf("/api/v1/presence/%s", args[0]), body); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Presence updated")
			return nil
		},
	}
}
