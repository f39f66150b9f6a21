package liveview

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"adminpanel/models"
)

// Render writes the list as an aligned table.
func Render(w io.Writer, items []models.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOURSE\tROLL NO\tBATCH\tTIMING")
	for _, r := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Course, r.RollNo, r.Batch, r.Timing)
	}
	if len(items) == 0 {
		fmt.Fprintln(tw, "(no records)")
	}
	return tw.Flush()
}

func deadline() time.Time { return time.Now().Add(time.Second) }
