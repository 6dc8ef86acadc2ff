package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Client identity commands",
	}

	cmd.AddCommand(newClientMeCmd())
	cmd.AddCommand(newClientListCmd())
	cmd.AddCommand(newClientGetCmd())
	cmd.AddCommand(newClientSetScopeCmd())
	cmd.AddCommand(newClientDeleteCmd())

	return cmd
}

func newClientMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current session, registering if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Get("/api/v1/clients/me", &result); err != nil {
				return err
			}

			// A fresh registration hands back a token; persist it so
			// subsequent commands authenticate as the same client
			if issued := client.IssuedToken(); issued != "" {
				if err := cfg.SaveToken(issued); err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newClientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all registered clients (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []ClientRecord

			if err := client.Get("/api/v1/clients", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newClientGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a client by id (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ClientRecord

			if err := client.Get("/api/v1/clients/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newClientSetScopeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-scope <id> <scope>",
		Short: "Grant a client a scope: admin or room-<name> (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"scope": args[1]}
			if err := client.Patch("/api/v1/clients/"+args[0], req, nil); err != nil {
				return err
			}

			// The patch endpoint only acknowledges; fetch the updated record
			var result ClientRecord
			if err := client.Get("/api/v1/clients/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newClientDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/clients/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Client deleted")
			return nil
		},
	}
}
