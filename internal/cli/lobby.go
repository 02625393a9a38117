package cli

import (
	"github.com/spf13/cobra"
)

func newLobbyCmd() *cobra.Command {
	lobbyCmd := &cobra.Command{
		Use:   "lobby",
		Short: "Lobby queue operations",
	}

	lobbyCmd.AddCommand(newLobbyShowCmd())
	lobbyCmd.AddCommand(newLobbyLogsCmd())
	lobbyCmd.AddCommand(newLobbyJoinCmd())
	lobbyCmd.AddCommand(newLobbyLeaveCmd())
	lobbyCmd.AddCommand(newLobbyResetCmd())

	return lobbyCmd
}

func newLobbyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the lobby queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Lobby
			if err := client.Get("/api/v1/lobby", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newLobbyLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Show the lobby queue with extended activity logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Lobby
			if err := client.Get("/api/v1/lobby/logs", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newLobbyJoinCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "join <participant-id>",
		Short: "Join the lobby queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := displayName
			if name == "" {
				name = args[0]
			}

			body := map[string]any{
				"participant": map[string]string{"id": args[0], "display_name": name},
			}

			var result Lobby
			if err := client.Post("/api/v1/lobby/join", body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "name", "", "Display name (defaults to the id)")
	return cmd
}

func newLobbyLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <participant-id>",
		Short: "Leave the lobby queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"participant_id": args[0]}
			if err := client.Post("/api/v1/lobby/leave", body, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Left the lobby")
			return nil
		},
	}
}

func newLobbyResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <participant-id>",
		Short: "Refresh a lobby timeout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"participant_id": args[0]}
			if err := client.Post("/api/v1/lobby/reset", body, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Lobby timeout reset")
			return nil
		},
	}
}
