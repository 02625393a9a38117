package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	matchCmd := &cobra.Command{
		Use:   "match",
		Short: "Match lifecycle operations",
	}

	matchCmd.AddCommand(newMatchCreateCmd())
	matchCmd.AddCommand(newMatchListCmd())
	matchCmd.AddCommand(newMatchShowCmd())
	matchCmd.AddCommand(newMatchInviteCmd())
	matchCmd.AddCommand(newMatchDeclineCmd())
	matchCmd.AddCommand(newMatchJoinCmd())
	matchCmd.AddCommand(newMatchLeaveCmd())
	matchCmd.AddCommand(newMatchEndCmd())
	matchCmd.AddCommand(newMatchRecordCmd())

	return matchCmd
}

func participantArg(id, name string) map[string]string {
	if name == "" {
		name = id
	}
	return map[string]string{"id": id, "display_name": name}
}

func newMatchCreateCmd() *cobra.Command {
	var ownerName string
	var inviteeName string

	cmd := &cobra.Command{
		Use:   "create <owner-id> <invitee-id>",
		Short: "Create a match and invite an opponent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"owner":   participantArg(args[0], ownerName),
				"invited": []map[string]string{participantArg(args[1], inviteeName)},
			}

			var result Match
			if err := client.Post("/api/v1/matches", body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerName, "owner-name", "", "Owner display name (defaults to the id)")
	cmd.Flags().StringVar(&inviteeName, "invitee-name", "", "Invitee display name (defaults to the id)")
	return cmd
}

func newMatchListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Match
			if err := client.Get("/api/v1/matches", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newMatchShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <match-id>",
		Short: "Show a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match
			if err := client.Get(fmt.Sprintf("/api/v1/matches/%s", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newMatchInviteCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "invite <match-id> <participant-id>",
		Short: "Invite a participant to a match",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"participant": participantArg(args[1], displayName)}
			if err := client.Post(fmt.Sprintf("/api/v1/matches/%s/invite", args[0]), body, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Invite sent")
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "name", "", "Display name (defaults to the id)")
	return cmd
}

func newMatchDeclineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decline <match-id> <participant-id>",
		Short: "Decline a match invite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"participant_id": args[1]}
			if err := client.Post(fmt.Sprintf("/api/v1/matches/%s/decline", args[0]), body, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Invite declined")
			return nil
		},
	}
}

func newMatchJoinCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "join <match-id> <participant-id>",
		Short: "Accept a match invite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"participant": participantArg(args[1], displayName)}

			var result Match
			if err := client.Post(fmt.Sprintf("/api/v1/matches/%s/join", args[0]), body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "name", "", "Display name (defaults to the id)")
	return cmd
}

func newMatchLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <match-id> <participant-id>",
		Short: "Leave a match",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"participant_id": args[1]}
			if err := client.Post(fmt.Sprintf("/api/v1/matches/%s/leave", args[0]), body, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Left the match")
			return nil
		},
	}
}

func newMatchEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <match-id>",
		Short: "End a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(fmt.Sprintf("/api/v1/matches/%s", args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Match ended")
			return nil
		},
	}
}

func newMatchRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <match-id>",
		Short: "Show the durable record of a completed match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MatchRecord
			if err := client.Get(fmt.Sprintf("/api/v1/matches/%s/record", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
