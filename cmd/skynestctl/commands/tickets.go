package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Work the support ticket queue",
	}
	cmd.AddCommand(ticketsListCmd(), ticketsShowCmd(), ticketsReplyCmd(), ticketsStatusCmd())
	return cmd
}

func ticketsListCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets, most recently active first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, s, err := sessionContext(cmd.Context())
			if err != nil {
				return err
			}
			c, err := flags.criteria()
			if err != nil {
				return err
			}
			page, err := env.services.Tickets.List(ctx, s.User, c)
			if err != nil {
				return err
			}
			return printTickets(cmd.OutOrStdout(), page)
		},
	}
	flags.register(cmd)
	return cmd
}

func ticketsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <ticket-id>",
		Short: "Print a ticket with its thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, s, err := sessionContext(cmd.Context())
			if err != nil {
				return err
			}
			t, err := env.services.Tickets.Get(ctx, s.User, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, t)
			}
			fmt.Fprintf(out, "#%d %s [%s, %s]\n%s\n", t.ID, t.Subject, t.Priority, t.Status, t.Description)
			for _, r := range t.Responses {
				fmt.Fprintf(out, "\n%s %s:\n%s\n", r.CreatedAt.Format("2006-01-02 15:04"), r.AuthorName, r.Message)
			}
			return nil
		},
	}
}

func ticketsReplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reply <ticket-id> <message...>",
		Short: "Add a response to a ticket",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, s, err := sessionContext(cmd.Context())
			if err != nil {
				return err
			}
			_, notice, err := env.services.Tickets.Respond(ctx, s.User, id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			printNotice(cmd.OutOrStdout(), notice)
			return nil
		},
	}
}

func ticketsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <ticket-id> <status>",
		Short: "Move a ticket to Open, In Progress, Resolved or Closed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, s, err := sessionContext(cmd.Context())
			if err != nil {
				return err
			}
			_, notice, err := env.services.Tickets.ChangeStatus(ctx, s.User, id, args[1])
			if err != nil {
				return err
			}
			printNotice(cmd.OutOrStdout(), notice)
			return nil
		},
	}
}
