package pharmactl

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	deliverydomain "github.com/Apurer/pharmacy-dispatch/internal/domains/delivery/domain"
	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/scanner"
)

const courierView = "/app-mensajero"

func (c *CLI) courierCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "courier", Short: "Courier app: the active route and its stops"}

	route := &cobra.Command{
		Use:   "route",
		Short: "Show my active route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sheet, err := c.console.Courier.MyRoute(cmd.Context())
			if errors.Is(err, deliverydomain.ErrNoActiveRoute) {
				fmt.Fprintln(cmd.OutOrStdout(), "No active route assigned")
				return nil
			}
			if err != nil {
				return err
			}
			printRoute(cmd.OutOrStdout(), sheet)
			return nil
		},
	}

	stop := &cobra.Command{
		Use:   "stop PACKAGE_ID",
		Short: "Show the detail of one stop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pkg, err := c.console.Courier.Stop(cmd.Context(), id)
			if err != nil {
				return err
			}
			printStop(cmd.OutOrStdout(), pkg)
			return nil
		},
	}

	var scanCode string
	scan := &cobra.Command{
		Use:   "scan PACKAGE_ID",
		Short: "Scan a package label and check it belongs to the stop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.verifyStop(cmd, id, scanCode); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Package %d verified\n", id)
			return nil
		},
	}
	scan.Flags().StringVar(&scanCode, "code", "", "decoded label, skips reading the scanner")

	var deliverCode string
	deliver := &cobra.Command{
		Use:   "deliver PACKAGE_ID",
		Short: "Scan the package and record it as delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.verifyStop(cmd, id, deliverCode); err != nil {
				return err
			}
			pkg, err := c.console.Courier.MarkDelivered(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Package %d %s\n", pkg.ID, pkg.Status.Label())
			return nil
		},
	}
	deliver.Flags().StringVar(&deliverCode, "code", "", "decoded label, skips reading the scanner")

	var failCode, reason string
	fail := &cobra.Command{
		Use:   "fail PACKAGE_ID",
		Short: "Scan the package and record a failed delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := deliverydomain.NewFailureReport(reason); err != nil {
				return err
			}
			if err := c.verifyStop(cmd, id, failCode); err != nil {
				return err
			}
			pkg, err := c.console.Courier.MarkFailed(cmd.Context(), id, reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Package %d %s: %s\n", pkg.ID, pkg.Status.Label(), reason)
			return nil
		},
	}
	fail.Flags().StringVar(&failCode, "code", "", "decoded label, skips reading the scanner")
	fail.Flags().StringVar(&reason, "reason", deliverydomain.DefaultFailureReason, "why the package could not be delivered")

	finish := &cobra.Command{
		Use:   "finish",
		Short: "Close my route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sheet, err := c.console.Courier.FinishRoute(cmd.Context())
			if err != nil {
				return err
			}
			delivered, failed, _ := sheet.Progress()
			fmt.Fprintf(cmd.OutOrStdout(), "Route #%d %s: %d delivered, %d failed\n", sheet.ID, sheet.Status, delivered, failed)
			return nil
		},
	}

	cmd.AddCommand(screen(route, courierView), screen(stop, courierView), screen(finish, courierView))
	for _, sub := range []*cobra.Command{scan, deliver, fail} {
		cmd.AddCommand(screen(sub, courierView+"/escanear"))
	}
	return cmd
}

// verifyStop unlocks the outcome of a stop, either from a code given on the
// command line or from one line read off stdin within the scan timeout.
func (c *CLI) verifyStop(cmd *cobra.Command, packageID int64, code string) error {
	courier := c.console.Courier
	if code != "" {
		return courier.Verify(packageID, code)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Scan package %d...\n", packageID)
	ctx, cancel := context.WithTimeout(cmd.Context(), c.console.Config.ScanTimeout)
	defer cancel()
	_, err := courier.Scan(ctx, packageID, scanner.NewLineDevice(cmd.InOrStdin()))
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("no label read within %s", c.console.Config.ScanTimeout)
	}
	if errors.Is(err, scanner.ErrClosed) {
		return errors.New("input closed before a label was read")
	}
	return err
}

func printStop(w io.Writer, pkg logisticsdomain.Package) {
	o := pkg.Order
	fmt.Fprintf(w, "Stop %d  package %d  %s\n", pkg.Stop(), pkg.ID, pkg.Status.Label())
	fmt.Fprintf(w, "Customer: %s (%s)\n", o.Customer.FullName, o.Customer.Phone)
	fmt.Fprintf(w, "Address:  %s, %s\n", o.DeliveryAddress, orDash(o.Customer.Neighborhood))
	tw := table(w, "MEDICATION", "QUANTITY")
	for _, item := range o.Items {
		row(tw, item.MedicationName, item.Quantity)
	}
	tw.Flush()
}
