package commands

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"skynest/internal/domain"
	"skynest/internal/google"
	"skynest/internal/logging"
	"skynest/internal/models"

	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Inspect and repair the Google Sheets sync queue",
	}
	cmd.AddCommand(syncStatusCmd(), syncFailedCmd(), syncRequeueCmd(), syncDeadLettersCmd(), syncLedgerCmd())
	return cmd
}

func syncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Count sync tasks per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := env.db.CountSyncTasks(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), counts)
			}
			statuses := make([]string, 0, len(counts))
			for s := range counts {
				statuses = append(statuses, s)
			}
			sort.Strings(statuses)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STATUS\tTASKS")
			for _, s := range statuses {
				fmt.Fprintf(tw, "%s\t%d\n", s, counts[s])
			}
			return tw.Flush()
		},
	}
}

func syncFailedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "failed",
		Short: "List tasks that ran out of retries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := env.db.GetFailedSyncTasks(cmd.Context())
			if err != nil {
				return err
			}
			return printTasks(cmd, tasks)
		},
	}
}

func syncRequeueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requeue",
		Short: "Put every failed task back to pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := env.db.RequeueFailedSyncTasks(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d task(s) requeued\n", n)
			return nil
		},
	}
}

func syncDeadLettersCmd() *cobra.Command {
	var limit int64
	cmd := &cobra.Command{
		Use:   "dead-letters",
		Short: "Show the newest entries of the Redis dead letter list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env.cfg.Redis.Address == "" {
				return fmt.Errorf("%w: redis is not configured", domain.ErrUnavailable)
			}
			tasks, err := env.queue.DeadLetters(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printTasks(cmd, tasks)
		},
	}
	cmd.Flags().Int64Var(&limit, "limit", 20, "entries to show")
	return cmd
}

func syncLedgerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "Rewrite the bookings ledger sheet from the backend (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, s, err := sessionContext(cmd.Context())
			if err != nil {
				return err
			}
			if s.User.Role != models.RoleAdmin {
				return fmt.Errorf("%w: only admins can rebuild the ledger", domain.ErrForbidden)
			}
			if !env.cfg.Google.Enabled() {
				return fmt.Errorf("%w: google sheets is not configured", domain.ErrUnavailable)
			}
			n, err := rebuildLedger(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ledger rewritten with %d booking(s)\n", n)
			return nil
		},
	}
}

func rebuildLedger(ctx context.Context) (int, error) {
	sheets, err := google.NewSheetsService(ctx, env.cfg.Google, logging.Component(env.logger, "sheets"))
	if err != nil {
		return 0, err
	}
	bookings, err := env.backend.ListBookings(ctx, models.ListQuery{})
	if err != nil {
		return 0, fmt.Errorf("list bookings: %w", err)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	if err := sheets.ReplaceLedger(ctx, bookings); err != nil {
		return 0, err
	}
	return len(bookings), nil
}

func printTasks(cmd *cobra.Command, tasks []models.SyncTask) error {
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), tasks)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tENTITY\tRETRIES\tCREATED\tLAST ERROR")
	for _, t := range tasks {
		lastErr := ""
		if t.LastError != nil {
			lastErr = *t.LastError
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%s\n", t.ID, t.TaskType, t.EntityID, t.RetryCount, t.CreatedAt.Format("2006-01-02 15:04"), lastErr)
	}
	return tw.Flush()
}
