package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"skynest/internal/models"
	"skynest/internal/service"

	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var (
		from, to string
		branchID int64
		xlsxPath string
		snapshot bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print occupancy and revenue for a date range, optionally as xlsx or a Sheets snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := reportRange(from, to, branchID)
			if err != nil {
				return err
			}
			ctx, s, err := sessionContext(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case snapshot:
				_, notice, err := env.services.Reports.QueueSnapshot(ctx, s.User, req)
				if err != nil {
					return err
				}
				printNotice(out, notice)
				return nil
			case xlsxPath != "":
				f, err := os.Create(xlsxPath)
				if err != nil {
					return err
				}
				if _, err := env.services.Reports.WriteXLSX(ctx, s.User, req, f); err != nil {
					_ = f.Close()
					_ = os.Remove(xlsxPath)
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(out, "report written to %s\n", xlsxPath)
				return nil
			}

			report, err := env.services.Reports.Build(ctx, s.User, req)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out, report)
			}
			return printReport(out, report)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day YYYY-MM-DD (default: first of this month)")
	cmd.Flags().StringVar(&to, "to", "", "last day YYYY-MM-DD (default: today)")
	cmd.Flags().Int64Var(&branchID, "branch", 0, "limit to one branch")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the report workbook to this file")
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "queue a snapshot to the reports spreadsheet")
	return cmd
}

func reportRange(from, to string, branchID int64) (service.ReportRequest, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	req := service.ReportRequest{
		From:     time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:       today,
		BranchID: branchID,
	}
	var err error
	if from != "" {
		if req.From, err = time.Parse(models.DateLayout, from); err != nil {
			return req, fmt.Errorf("--from must be YYYY-MM-DD")
		}
	}
	if to != "" {
		if req.To, err = time.Parse(models.DateLayout, to); err != nil {
			return req, fmt.Errorf("--to must be YYYY-MM-DD")
		}
	}
	return req, nil
}

func printReport(w io.Writer, r *models.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Report %s .. %s\n\n", r.From.Format(models.DateLayout), r.To.Format(models.DateLayout))

	fmt.Fprintln(tw, "BRANCH\tROOMS\tBOOKED NIGHTS\tOCCUPANCY")
	for _, o := range r.Occupancy {
		fmt.Fprintf(tw, "%s\t%d\t%d/%d\t%.1f%%\n", o.BranchName, o.Rooms, o.BookedNights, o.RoomNights, o.Rate*100)
	}

	fmt.Fprintln(tw, "\nBRANCH\tCASH\tCARD\tONLINE\tREFUNDED\tNET")
	for _, rv := range r.Revenue {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n", rv.BranchName, rv.Cash, rv.Card, rv.Online, rv.Refunded, rv.Net)
	}

	fmt.Fprintln(tw, "\nSTATUS\tBOOKINGS")
	for _, sc := range r.BookingStatus {
		fmt.Fprintf(tw, "%s\t%d\n", sc.Status, sc.Count)
	}
	return tw.Flush()
}
