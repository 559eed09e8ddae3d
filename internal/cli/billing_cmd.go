package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/alexanderramin/horizon/internal/cli/formatter"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/spf13/cobra"
)

func newBillingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Record invoices and contracts shown on the timeline",
	}

	cmd.AddCommand(newInvoiceAddCmd(app), newContractAddCmd(app))
	return cmd
}

// parseCents reads a decimal amount such as "1250" or "1250.50".
func parseCents(s string) (int64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("amount %q must be a non-negative number", s)
	}
	return int64(math.Round(v * 100)), nil
}

func newInvoiceAddCmd(app *App) *cobra.Command {
	var inv domain.Invoice
	var amount, status string
	due := newTimeFlag(app)

	cmd := &cobra.Command{
		Use:   "invoice NUMBER",
		Short: "Record an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := parseCents(amount)
			if err != nil {
				return err
			}
			inv.Number = args[0]
			inv.AmountCents = cents
			inv.Status = domain.InvoiceStatus(status)
			inv.DueDate = due.t
			if err := app.Billing.AddInvoice(cmd.Context(), &inv); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded invoice %s due %s\n",
				formatter.Bold(inv.Number), formatter.DateTime(inv.DueDate, app.loc()))
			return nil
		},
	}

	cmd.Flags().StringVar(&inv.OwnerID, "owner", "", "Owning participant ID")
	cmd.Flags().StringVar(&inv.TenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&amount, "amount", "0", "Amount")
	cmd.Flags().StringVar(&status, "status", string(domain.InvoiceSent), "draft, sent, paid, overdue or cancelled")
	cmd.Flags().Var(due, "due", "Due date")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newContractAddCmd(app *App) *cobra.Command {
	var c domain.Contract
	var value, status string
	due := newTimeFlag(app)

	cmd := &cobra.Command{
		Use:   "contract TITLE",
		Short: "Record a contract with a payment due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := parseCents(value)
			if err != nil {
				return err
			}
			c.Title = args[0]
			c.ValueCents = cents
			c.PaymentStatus = domain.PaymentStatus(status)
			c.PaymentDue = due.t
			if err := app.Billing.AddContract(cmd.Context(), &c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded contract %s payment due %s\n",
				formatter.Bold(c.Title), formatter.DateTime(c.PaymentDue, app.loc()))
			return nil
		},
	}

	cmd.Flags().StringVar(&c.OwnerID, "owner", "", "Owning participant ID")
	cmd.Flags().StringVar(&c.TenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&value, "value", "0", "Contract value")
	cmd.Flags().StringVar(&status, "status", string(domain.PaymentPending), "pending, partial or paid")
	cmd.Flags().Var(due, "due", "Payment due date")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}
