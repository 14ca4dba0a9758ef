package commands

import (
	"context"
	"fmt"
	"strconv"

	"skynest/internal/models"

	"github.com/spf13/cobra"
)

func bookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List bookings and move them through check-in, check-out and cancel",
	}
	cmd.AddCommand(
		bookingsListCmd(),
		bookingTransitionCmd("check-in", "Check a guest in", func(ctx context.Context, u models.User, id int64) (*models.Booking, models.Notice, error) {
			return env.services.Bookings.CheckIn(ctx, u, id)
		}),
		bookingTransitionCmd("check-out", "Check a guest out", func(ctx context.Context, u models.User, id int64) (*models.Booking, models.Notice, error) {
			return env.services.Bookings.CheckOut(ctx, u, id)
		}),
		bookingTransitionCmd("cancel", "Cancel a booking that has not started", func(ctx context.Context, u models.User, id int64) (*models.Booking, models.Notice, error) {
			return env.services.Bookings.Cancel(ctx, u, id)
		}),
	)
	return cmd
}

func bookingsListCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings visible to the signed-in user",
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
			page, err := env.services.Bookings.List(ctx, s.User, c)
			if err != nil {
				return err
			}
			return printBookings(cmd.OutOrStdout(), page)
		},
	}
	flags.register(cmd)
	return cmd
}

func bookingTransitionCmd(use, short string, fn func(context.Context, models.User, int64) (*models.Booking, models.Notice, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <booking-id>",
		Short: short,
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
			b, notice, err := fn(ctx, s.User, id)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), b)
			}
			printNotice(cmd.OutOrStdout(), notice)
			return nil
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
