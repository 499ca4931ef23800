package pharmactl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	logisticsdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/logistics/domain"
)

func (c *CLI) batchesCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "batches", Short: "Receiving of supplier lots"}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the most recently received lots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			batches, err := c.console.Receiving.RecentBatches(cmd.Context())
			if err != nil {
				return err
			}
			printBatches(cmd.OutOrStdout(), batches)
			return nil
		},
	}

	var in logisticsdomain.NewBatch
	receive := &cobra.Command{
		Use:   "receive",
		Short: "Register a lot received from a supplier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			batch, err := c.console.Receiving.Receive(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Lot %s registered: %d x %s\n", batch.SupplierLot, batch.CurrentQuantity, batch.Medication.GenericName)
			return nil
		},
	}
	receive.Flags().StringVar(&in.SupplierLot, "lot", "", "supplier lot number")
	receive.Flags().IntVar(&in.ReceivedQuantity, "quantity", 0, "units received")
	receive.Flags().Int64Var(&in.MedicationID, "medication", 0, "catalog medication id")

	cmd.AddCommand(screen(list, "/logistica/recepcion", staff...), screen(receive, "/logistica/recepcion", staff...))
	return cmd
}

func printBatches(w io.Writer, batches []logisticsdomain.Batch) {
	if len(batches) == 0 {
		fmt.Fprintln(w, "No lots received yet")
		return
	}
	tw := table(w, "ID", "LOT", "MEDICATION", "UNITS", "RECEIVED")
	for _, b := range batches {
		row(tw, b.ID, b.SupplierLot, b.Medication.GenericName, b.CurrentQuantity, stamp(b.ReceivedAt))
	}
	tw.Flush()
}

func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "catalog", Short: "Reference data"}
	cmd.AddCommand(
		screen(&cobra.Command{
			Use:   "medications",
			Short: "List the medication catalog",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				meds, err := c.console.Catalog.Medications(cmd.Context())
				if err != nil {
					return err
				}
				tw := table(cmd.OutOrStdout(), "ID", "NAME", "COLD CHAIN")
				for _, m := range meds {
					row(tw, m.ID, m.GenericName, yesNo(m.RequiresRefrigeration))
				}
				return tw.Flush()
			},
		}, "/logistica/recepcion"),
		screen(&cobra.Command{
			Use:   "agents",
			Short: "List delivery agents",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				agents, err := c.console.Catalog.DeliveryAgents(cmd.Context())
				if err != nil {
					return err
				}
				tw := table(cmd.OutOrStdout(), "ID", "NAME", "TYPE")
				for _, a := range agents {
					row(tw, a.ID, a.Name, a.Type)
				}
				return tw.Flush()
			},
		}, "/logistica/asignacion"),
		screen(&cobra.Command{
			Use:   "centers",
			Short: "List operation centers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				centers, err := c.console.Catalog.OperationCenters(cmd.Context())
				if err != nil {
					return err
				}
				tw := table(cmd.OutOrStdout(), "ID", "NAME", "ADDRESS")
				for _, oc := range centers {
					row(tw, oc.ID, oc.Name, oc.Address)
				}
				return tw.Flush()
			},
		}, "/"),
		&cobra.Command{
			Use:   "zones",
			Short: "List delivery zones",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				zones, err := c.console.Catalog.Zones(cmd.Context())
				if err != nil {
					return err
				}
				tw := table(cmd.OutOrStdout(), "ID", "ZONE")
				for _, z := range zones {
					row(tw, z.ID, z.Name)
				}
				return tw.Flush()
			},
		},
	)
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (c *CLI) pickingCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "picking", Short: "Picking waves and the picking guide"}
	cmd.AddCommand(
		screen(&cobra.Command{
			Use:   "summary",
			Short: "Show approved orders waiting for a wave",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				summary, err := c.console.Picking.ApprovedSummary(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d approved orders\n", summary.Total)
				if len(summary.Orders) > 0 {
					printOrders(cmd.OutOrStdout(), summary.Orders)
				}
				return nil
			},
		}, "/logistica/picking", staff...),
		screen(&cobra.Command{
			Use:   "wave",
			Short: "Start a picking wave with every approved order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				wave, err := c.console.Picking.CreateWave(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Wave %d: %d orders, %d units\n", wave.ID, wave.OrderCount, wave.TotalUnits())
				tw := table(out, "MEDICATION", "QUANTITY")
				for _, m := range wave.RequiredMedications {
					row(tw, m.GenericName, m.TotalQuantity)
				}
				return tw.Flush()
			},
		}, "/logistica/picking", staff...),
		screen(&cobra.Command{
			Use:   "guide",
			Short: "Show what to pick and from which lots",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				guide, err := c.console.Picking.Guide(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, guide.Message)
				if len(guide.Tasks) == 0 {
					return nil
				}
				tw := table(out, "MEDICATION", "QUANTITY", "AVAILABLE", "SHORT", "LOTS")
				for _, t := range guide.Tasks {
					lots := make([]string, 0, len(t.AvailableBatches))
					for _, b := range t.AvailableBatches {
						lots = append(lots, fmt.Sprintf("%s(%d)", b.SupplierLot, b.CurrentQuantity))
					}
					row(tw, t.Medication.GenericName, t.TotalQuantity, t.AvailableUnits(), t.Shortfall(), strings.Join(lots, " "))
				}
				return tw.Flush()
			},
		}, "/logistica/alistamiento", staff...),
	)
	return cmd
}

func (c *CLI) packingCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "packing", Short: "Packing station"}

	next := &cobra.Command{
		Use:   "next",
		Short: "Take the next order from the packing queue and show it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			task, err := c.console.Packing.Current(cmd.Context())
			if err != nil {
				return err
			}
			printPackingTask(cmd.OutOrStdout(), task, func(int64) bool { return false })
			return nil
		},
	}

	var all bool
	var verify []int64
	pack := &cobra.Command{
		Use:   "pack",
		Short: "Verify the items of the next order and close it",
		Long: "Takes the next order from the queue, marks the items given with --item (or all of them\n" +
			"with --all) and reads further item ids from stdin until every item is verified.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			station := c.console.Packing
			task, err := station.Current(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if task.Empty() {
				fmt.Fprintln(out, "Nothing to pack")
				return nil
			}
			for _, id := range verify {
				if err := station.Verify(id); err != nil {
					return fmt.Errorf("item %d: %w", id, err)
				}
			}
			if all {
				for _, item := range task.Next.Items {
					if err := station.Verify(item.ID); err != nil {
						return err
					}
				}
			}
			in := bufio.NewScanner(cmd.InOrStdin())
			for !station.CanFinalize() {
				printPackingTask(out, task, station.IsVerified)
				fmt.Fprint(out, "Item id to toggle: ")
				if !in.Scan() {
					return logisticsdomain.ErrPackingIncomplete
				}
				id, err := parseID(in.Text())
				if err != nil {
					fmt.Fprintln(out, err)
					continue
				}
				if _, err := station.Toggle(id); err != nil {
					fmt.Fprintln(out, err)
				}
			}
			order, err := station.Finalize(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Order #%d packed, %s\n", order.ID, order.Status.Label())
			return nil
		},
	}
	pack.Flags().BoolVar(&all, "all", false, "verify every item")
	pack.Flags().Int64SliceVar(&verify, "item", nil, "item id to verify, repeatable")

	cmd.AddCommand(screen(next, "/logistica/empaque", staff...), screen(pack, "/logistica/empaque", staff...))
	return cmd
}

func printPackingTask(w io.Writer, task logisticsdomain.PackingTask, verified func(int64) bool) {
	if task.Empty() {
		fmt.Fprintln(w, "Nothing to pack")
		return
	}
	o := task.Next
	fmt.Fprintf(w, "Order #%d for %s, zone %s (%d more queued)\n", o.ID, o.Customer.FullName, o.ZoneLabel(), task.Queued)
	tw := table(w, "", "ITEM", "MEDICATION", "QUANTITY")
	for _, item := range o.Items {
		mark := "[ ]"
		if verified(item.ID) {
			mark = "[x]"
		}
		row(tw, mark, item.ID, item.MedicationName, item.Quantity)
	}
	tw.Flush()
}

func (c *CLI) dispatchCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "dispatch", Short: "Route assignment"}

	var zone string
	ready := &cobra.Command{
		Use:   "ready",
		Short: "List packages ready for dispatch in a zone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pkgs, err := c.console.Dispatch.ReadyPackages(cmd.Context(), zone)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(pkgs) == 0 {
				fmt.Fprintln(out, "No packages ready")
				return nil
			}
			tw := table(out, "PACKAGE", "ORDER", "CUSTOMER", "ADDRESS")
			for _, p := range pkgs {
				row(tw, p.ID, p.Order.ID, p.Order.Customer.FullName, p.Order.DeliveryAddress)
			}
			return tw.Flush()
		},
	}
	ready.Flags().StringVar(&zone, "zone", "", "delivery zone, e.g. NORTE")

	var sheet logisticsdomain.NewRouteSheet
	assign := &cobra.Command{
		Use:   "assign",
		Short: "Hand every ready package of a zone to an agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			route, err := c.console.Dispatch.AssignRoute(cmd.Context(), sheet)
			if err != nil {
				return err
			}
			printRoute(cmd.OutOrStdout(), route)
			return nil
		},
	}
	assign.Flags().StringVar(&sheet.Zone, "zone", "", "delivery zone")
	assign.Flags().Int64Var(&sheet.AgentID, "agent", 0, "delivery agent id")
	assign.Flags().StringVar(&sheet.Type, "type", logisticsdomain.RouteTypeFinalDelivery, "route type")

	cmd.AddCommand(screen(ready, "/logistica/asignacion", staff...), screen(assign, "/logistica/asignacion", staff...))
	return cmd
}

func (c *CLI) routesCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "routes", Short: "Live monitor of routes on the street"}

	active := &cobra.Command{
		Use:   "active",
		Short: "List active routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes, err := c.console.Routes.Active(cmd.Context())
			if err != nil {
				return err
			}
			printRoutes(cmd.OutOrStdout(), routes)
			return nil
		},
	}

	var updates int
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Follow active routes, refreshing every PHARMACY_MONITOR_INTERVAL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return follow(cmd.Context(), cmd.OutOrStdout(), c.console.Routes.Watch(cmd.Context()), updates, printRoutes)
		},
	}
	watch.Flags().IntVar(&updates, "updates", 0, "stop after this many refreshes (0 = until interrupted)")

	show := &cobra.Command{
		Use:   "show ROUTE_ID",
		Short: "Show one route sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			route, err := c.console.Routes.Detail(cmd.Context(), id)
			if err != nil {
				return err
			}
			printRoute(cmd.OutOrStdout(), route)
			return nil
		},
	}

	for _, sub := range []*cobra.Command{active, watch, show} {
		cmd.AddCommand(screen(sub, "/logistica/rutas_activas", staff...))
	}
	return cmd
}

func printRoutes(w io.Writer, routes []logisticsdomain.RouteSheet) {
	if len(routes) == 0 {
		fmt.Fprintln(w, "No active routes")
		return
	}
	tw := table(w, "ROUTE", "AGENT", "STATUS", "DELIVERED", "FAILED", "PENDING", "ASSIGNED")
	for _, r := range routes {
		delivered, failed, pending := r.Progress()
		row(tw, r.ID, r.Agent.Name, strings.ToUpper(string(r.Status)), delivered, failed, pending, stamp(r.AssignedAt))
	}
	tw.Flush()
}
