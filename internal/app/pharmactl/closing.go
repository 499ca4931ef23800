package pharmactl

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	authdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
	closingdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/closing/domain"
)

const closingView = "/cierre/conciliacion"

func (c *CLI) closingCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "closing", Short: "End of day reconciliation of finished routes"}

	routes := &cobra.Command{
		Use:   "routes",
		Short: "List finished routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			finished, err := c.console.Closing.FinishedRoutes(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(finished) == 0 {
				fmt.Fprintln(out, "No finished routes")
				return nil
			}
			tw := table(out, "ROUTE", "AGENT", "PACKAGES", "DELIVERED", "EXPECTED")
			for _, r := range finished {
				s := closingdomain.Summarize(r)
				row(tw, r.ID, r.Agent.Name, s.Total, s.Delivered, money(s.ExpectedCollection))
			}
			return tw.Flush()
		},
	}

	var remote bool
	summary := &cobra.Command{
		Use:   "summary ROUTE_ID",
		Short: "Reconcile one finished route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if remote {
				s, err := c.console.Closing.RemoteSummary(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Route #%d  %s  %s\n", s.RouteID, s.Agent, strings.ToUpper(string(s.RouteStatus)))
				fmt.Fprintf(out, "Packages: %d, delivered %d, not delivered %d\n", s.Packages.Total, s.Packages.Delivered, s.Packages.NotDelivered)
				fmt.Fprintf(out, "Expected collection: %s\n", money(s.Financials.ExpectedCollection))
				for _, u := range s.Undelivered {
					fmt.Fprintf(out, "  package %d: %s\n", u.PackageID, orDash(u.Reason))
				}
				return nil
			}
			s, err := c.console.Closing.Summarize(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Route #%d  %s\n", s.RouteID, s.Agent)
			fmt.Fprintf(out, "Packages: %d, delivered %d, not delivered %d\n", s.Total, s.Delivered, s.NotDelivered)
			fmt.Fprintf(out, "Expected collection: %s (%s per delivery)\n", money(s.ExpectedCollection), money(closingdomain.CopayPerDelivery))
			return nil
		},
	}
	summary.Flags().BoolVar(&remote, "remote", false, "ask the backend for its own reconciliation")

	var (
		routeID, packageID int64
		amount             float64
		method             string
	)
	pay := &cobra.Command{
		Use:   "pay",
		Short: "Register the copay collected for a delivered package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			receipt, err := c.console.Closing.RegisterPayment(cmd.Context(), routeID, packageID, amount, method)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), receipt.Message)
			return nil
		},
	}
	pay.Flags().Int64Var(&routeID, "route", 0, "finished route id")
	pay.Flags().Int64Var(&packageID, "package", 0, "delivered package id")
	pay.Flags().Float64Var(&amount, "amount", closingdomain.CopayPerDelivery, "amount collected")
	pay.Flags().StringVar(&method, "method", closingdomain.MethodCash, "payment method (Efectivo or Transferencia)")
	_ = pay.MarkFlagRequired("package")

	for _, sub := range []*cobra.Command{routes, summary, pay} {
		cmd.AddCommand(screen(sub, closingView, authdomain.RoleAdmin))
	}
	return cmd
}
