package pharmactl

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/shared/wire"
)

// table starts a column-aligned listing. Callers must Flush it.
func table(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(w io.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func stamp(t wire.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "-"
	}
	return *s
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func printRoute(w io.Writer, route logisticsdomain.RouteSheet) {
	delivered, failed, pending := route.Progress()
	fmt.Fprintf(w, "Route #%d  %s  %s\n", route.ID, strings.ToUpper(string(route.Status)), route.Type)
	fmt.Fprintf(w, "Agent: %s  assigned %s\n", route.Agent.Name, stamp(route.AssignedAt))
	fmt.Fprintf(w, "Progress: %d delivered, %d failed, %d pending\n", delivered, failed, pending)
	tw := table(w, "STOP", "PACKAGE", "STATUS", "CUSTOMER", "ADDRESS", "PHONE")
	for _, p := range route.Stops() {
		row(tw, p.Stop(), p.ID, p.Status.Label(), p.Order.Customer.FullName, p.Order.DeliveryAddress, p.Order.Customer.Phone)
	}
	tw.Flush()
}

func since(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("15:04:05")
}
