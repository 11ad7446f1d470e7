package report

import (
	"fmt"
	"io"
	"text/tabwriter"
)

func RenderDashboard(w io.Writer, d Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%s)\n", d.Label, d.Period)
	fmt.Fprintf(tw, "From\t%s\n", d.Range.From.Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "To\t%s\n", d.Range.To.Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "In\t%s\n", d.TotalIn)
	fmt.Fprintf(tw, "Out\t%s\n", d.TotalOut)
	fmt.Fprintf(tw, "Net\t%s\n", d.Net)
	fmt.Fprintf(tw, "Transactions\t%d\n", d.Summary.Transactions)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ID\tACCOUNT\tCURRENCY\tBALANCE")
	for _, a := range d.Accounts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, a.Name, a.Currency, a.Balance)
	}
	return tw.Flush()
}

func RenderAccounts(w io.Writer, cards []AccountCard) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACCOUNT\tCURRENCY\tBALANCE")
	for _, a := range cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, a.Name, a.Currency, a.Balance)
	}
	return tw.Flush()
}

func RenderAccountDetail(w io.Writer, d AccountDetail) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%s)\n", d.Account.Name, d.Account.Currency)
	fmt.Fprintf(tw, "Balance\t%s\n", d.Balance)
	if !d.Reconciliation.Consistent {
		fmt.Fprintf(tw, "Cached balance drifts by\t%d\n", d.Reconciliation.Drift)
	}
	fmt.Fprintln(tw)
	if len(d.Lines) == 0 {
		fmt.Fprintln(tw, "No transactions yet")
		return tw.Flush()
	}
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tAMOUNT")
	for _, l := range d.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Date, l.Description, l.Amount)
	}
	return tw.Flush()
}
