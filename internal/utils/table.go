package utils

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/modpanel/cli/internal/api"
)

// PrintTable prints a column-aligned plain-text table in Docker/kubectl style.
// Uses Go's text/tabwriter with parameters matching modern CLI tools:
// minwidth=0, tabwidth=8, padding=2, padchar=' ', flags=0
func PrintTable(out io.Writer, headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// ServiceStateTable returns the headers and single row describing state.
func ServiceStateTable(state api.ServiceState, now time.Time) ([]string, [][]string) {
	headers := []string{"SHUTDOWN MODE", "UPDATED"}

	updated := "-"
	if state.UpdatedAt != nil {
		updated = fmt.Sprintf("%s (%s)",
			humanize.RelTime(*state.UpdatedAt, now, "ago", "from now"),
			state.UpdatedAt.Local().Format(time.DateTime))
	}

	return headers, [][]string{{state.Hint(), updated}}
}
