package pharmactl

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/query"
	"github.com/Apurer/pharmacy-dispatch/internal/shared/wire"
)

func (c *CLI) ordersCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "orders", Short: "Validation queue and order intake"}
	cmd.AddCommand(c.ordersPendingCommand(), c.ordersWatchCommand(), c.ordersApproveCommand(), c.ordersCreateCommand())
	return cmd
}

func printOrders(w io.Writer, orders []ordersdomain.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders waiting for validation")
		return
	}
	tw := table(w, "ID", "CREATED", "CUSTOMER", "DOCUMENT", "ADDRESS", "ZONE", "UNITS", "STATUS")
	for _, o := range orders {
		row(tw, o.ID, stamp(o.CreatedAt), o.Customer.FullName, o.Customer.DocumentNumber, o.DeliveryAddress, o.ZoneLabel(), o.TotalUnits(), o.Status.Label())
	}
	tw.Flush()
}

func (c *CLI) ordersPendingCommand() *cobra.Command {
	return screen(&cobra.Command{
		Use:   "pending",
		Short: "List orders waiting for validation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orders, err := c.console.Orders.PendingValidation(cmd.Context())
			if err != nil {
				return err
			}
			printOrders(cmd.OutOrStdout(), orders)
			return nil
		},
	}, "/pedidos", staff...)
}

func (c *CLI) ordersWatchCommand() *cobra.Command {
	var updates int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the validation queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub := c.console.Orders.WatchPendingValidation(cmd.Context())
			return follow(cmd.Context(), cmd.OutOrStdout(), sub, updates, printOrders)
		},
	}
	cmd.Flags().IntVar(&updates, "updates", 0, "stop after this many refreshes (0 = until interrupted)")
	return screen(cmd, "/pedidos", staff...)
}

// follow renders every settled state of sub until ctx ends or limit states
// were shown.
func follow[T any](ctx context.Context, w io.Writer, sub *query.Subscription[T], limit int, render func(io.Writer, T)) error {
	defer sub.Close()
	shown := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done():
			return nil
		case st := <-sub.Updates():
			if st.Loading && !st.HasData {
				continue
			}
			if st.Err != nil {
				fmt.Fprintf(w, "[%s] refresh failed: %v\n", since(st.UpdatedAt), st.Err)
			} else if st.HasData && !st.Loading {
				fmt.Fprintf(w, "[%s]\n", since(st.UpdatedAt))
				render(w, st.Data)
			} else {
				continue
			}
			shown++
			if limit > 0 && shown >= limit {
				return nil
			}
		}
	}
}

func (c *CLI) ordersApproveCommand() *cobra.Command {
	return screen(&cobra.Command{
		Use:   "approve ORDER_ID...",
		Short: "Approve orders after validating their prescription",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				note, err := c.console.Orders.Approve(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("order %d: %w", id, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), note)
			}
			return nil
		},
	}, "/pedidos", staff...)
}

func (c *CLI) ordersCreateCommand() *cobra.Command {
	var (
		customer ordersdomain.NewCustomer
		details  ordersdomain.NewOrderDetails
		date     string
		items    []string
		photo    string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new order with its prescription photo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			when, err := wire.ParseTime(date)
			if err != nil {
				return fmt.Errorf("--prescription-date: %w", err)
			}
			details.PrescriptionDate = when
			if details.DeliveryAddress == "" {
				details.DeliveryAddress = customer.Address
			}
			order := ordersdomain.NewOrder{Customer: customer, Details: details}
			for _, raw := range items {
				item, err := parseItem(raw)
				if err != nil {
					return err
				}
				order.Items = append(order.Items, item)
			}
			f, err := os.Open(photo)
			if err != nil {
				return fmt.Errorf("prescription photo: %w", err)
			}
			defer f.Close()
			prescription := ordersdomain.Prescription{
				Filename:    filepath.Base(photo),
				ContentType: mime.TypeByExtension(filepath.Ext(photo)),
				Content:     f,
			}
			created, note, err := c.console.Orders.Create(cmd.Context(), order, prescription)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), note)
			printOrders(cmd.OutOrStdout(), []ordersdomain.Order{created})
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&customer.FullName, "name", "", "patient full name")
	f.StringVar(&customer.DocumentNumber, "document", "", "patient document number")
	f.StringVar(&customer.Phone, "phone", "", "patient mobile number")
	f.StringVar(&customer.Address, "address", "", "patient home address")
	f.StringVar(&customer.Neighborhood, "neighborhood", "", "patient neighborhood")
	f.StringVar(&details.DeliveryAddress, "delivery-address", "", "delivery address (default: home address)")
	f.StringVar(&details.DoctorName, "doctor", "", "prescribing doctor")
	f.StringVar(&date, "prescription-date", "", "prescription date, YYYY-MM-DD")
	f.StringArrayVar(&items, "item", nil, `requested medication as "name=quantity", repeatable`)
	f.StringVar(&photo, "photo", "", "path to the prescription photo")
	_ = cmd.MarkFlagRequired("photo")
	_ = cmd.MarkFlagRequired("prescription-date")
	return screen(cmd, "/nuevo-pedido")
}

func parseItem(raw string) (ordersdomain.NewItem, error) {
	name, qty, ok := strings.Cut(raw, "=")
	if !ok {
		return ordersdomain.NewItem{MedicationName: strings.TrimSpace(raw), Quantity: 1}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(qty))
	if err != nil {
		return ordersdomain.NewItem{}, fmt.Errorf("--item %q: quantity must be a number", raw)
	}
	return ordersdomain.NewItem{MedicationName: strings.TrimSpace(name), Quantity: n}, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a valid id", raw)
	}
	return id, nil
}
