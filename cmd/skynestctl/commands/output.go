package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"text/tabwriter"

	"skynest/internal/filter"
	"skynest/internal/models"

	"github.com/spf13/cobra"
)

// listFlags are the filters shared by list commands.
type listFlags struct {
	status    string
	from      string
	to        string
	dateField string
	search    string
	branchID  int64
	page      int
	pageSize  int
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", "", "comma separated statuses")
	cmd.Flags().StringVar(&f.from, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "end date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.dateField, "date-field", "", "check_in, check_out or created")
	cmd.Flags().StringVarP(&f.search, "query", "q", "", "free text search")
	cmd.Flags().Int64Var(&f.branchID, "branch", 0, "branch id (admin only)")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", models.DefaultPageSize, "items per page")
}

// criteria goes through the portal query parser so both surfaces validate alike.
func (f *listFlags) criteria() (filter.Criteria, error) {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("status", f.status)
	set("from", f.from)
	set("to", f.to)
	set("date_field", f.dateField)
	set("q", f.search)
	if f.branchID > 0 {
		v.Set("branch_id", strconv.FormatInt(f.branchID, 10))
	}
	v.Set("page", strconv.Itoa(f.page))
	v.Set("page_size", strconv.Itoa(f.pageSize))
	return filter.ParseQuery(v)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBookings(w io.Writer, page filter.Page[models.Booking]) error {
	if jsonOutput {
		return printJSON(w, page)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGUEST\tROOM\tCHECK-IN\tCHECK-OUT\tSTATUS")
	for _, b := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.GuestName, b.RoomNumber,
			b.CheckIn.Format(models.DateLayout), b.CheckOut.Format(models.DateLayout), b.Status)
	}
	fmt.Fprintf(tw, "\npage %d/%d, %d total\n", page.Page, page.Pages, page.Total)
	return tw.Flush()
}

func printTickets(w io.Writer, page filter.Page[models.SupportTicket]) error {
	if jsonOutput {
		return printJSON(w, page)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGUEST\tSUBJECT\tPRIORITY\tSTATUS\tREPLIES")
	for _, t := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", t.ID, t.GuestName, t.Subject, t.Priority, t.Status, len(t.Responses))
	}
	fmt.Fprintf(tw, "\npage %d/%d, %d total\n", page.Page, page.Pages, page.Total)
	return tw.Flush()
}

func printNotice(w io.Writer, n models.Notice) {
	if n.Message != "" {
		fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Message)
	}
}
