package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/artisan/internal/model"
	"github.com/manav03panchal/artisan/internal/output"
	"github.com/manav03panchal/artisan/internal/parser"
	"github.com/manav03panchal/artisan/internal/reminder"
	"github.com/manav03panchal/artisan/internal/validate"
)

// invoiceCmd represents the invoice command.
var invoiceCmd = &cobra.Command{
	Use:     "invoice",
	Aliases: []string{"invoices", "inv"},
	Short:   "Track invoices and their payment",
	Long: `Record invoices, list them and mark them paid. Unpaid invoices past
their due date receive escalating reminders from 'artisan check'.

Examples:
  artisan invoice add F-2026-014 --client dup --amount 1250 --due "in 30 days"
  artisan invoice list --status overdue
  artisan invoice show 0193
  artisan invoice pay 0193`,
	RunE: runInvoiceList,
}

// Invoice subcommand flags.
var (
	invoiceAddFlagClient string
	invoiceAddFlagAmount string
	invoiceAddFlagDue    string
	invoiceAddFlagStatus string

	invoiceListFlagStatus string
)

// invoiceAddCmd records an invoice.
var invoiceAddCmd = &cobra.Command{
	Use:   "add NUMBER",
	Short: "Record an invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceAdd,
}

// invoiceListCmd lists invoices.
var invoiceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List invoices",
	Args:    cobra.NoArgs,
	RunE:    runInvoiceList,
}

// invoiceShowCmd shows an invoice with its reminders.
var invoiceShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show an invoice and the reminders issued for it",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

// invoicePayCmd marks an invoice paid.
var invoicePayCmd = &cobra.Command{
	Use:   "pay ID",
	Short: "Mark an invoice paid, which stops its reminders",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicePay,
}

func init() {
	invoiceAddCmd.Flags().StringVarP(&invoiceAddFlagClient, "client", "c", "", "Client id or id prefix")
	invoiceAddCmd.Flags().StringVarP(&invoiceAddFlagAmount, "amount", "a", "0", "Total, e.g. 1250.50")
	invoiceAddCmd.Flags().StringVar(&invoiceAddFlagDue, "due", "", "Due date, e.g. 'in 30 days'")
	invoiceAddCmd.Flags().StringVarP(&invoiceAddFlagStatus, "status", "s", string(model.InvoiceSent),
		"Initial status: draft, sent")

	invoiceListCmd.Flags().StringVarP(&invoiceListFlagStatus, "status", "s", "", "Only this status")

	invoiceCmd.AddCommand(invoiceAddCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoiceShowCmd)
	invoiceCmd.AddCommand(invoicePayCmd)
	rootCmd.AddCommand(invoiceCmd)
}

func runInvoiceAdd(cmd *cobra.Command, args []string) error {
	runCtx := runContext(cmd)
	now := ctx.Now()

	number := strings.TrimSpace(args[0])
	if err := validate.InvoiceNumber(number); err != nil {
		return err
	}
	status, err := parseInvoiceStatus(invoiceAddFlagStatus)
	if err != nil {
		return err
	}
	cents, err := parser.ParseAmount(invoiceAddFlagAmount)
	if err != nil {
		return err
	}
	clientID, err := resolveClientID(runCtx, invoiceAddFlagClient)
	if err != nil {
		return err
	}

	inv := &model.Invoice{
		ArtisanID:  ctx.Config.ArtisanID,
		ClientID:   clientID,
		Number:     number,
		Status:     status,
		TotalCents: cents,
		CreatedAt:  now,
	}
	if invoiceAddFlagDue != "" {
		due, err := parser.ParseDay(invoiceAddFlagDue, now)
		if err != nil {
			return err
		}
		inv.DueDate = &due
	}
	if err := ctx.Invoices.Create(runCtx, inv); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintInvoices([]*model.Invoice{inv})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Recorded invoice %s for %s (%s)",
		inv.Number, reminder.FormatAmount(inv.TotalCents), model.ShortID(inv.ID)))
	return nil
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	var status model.InvoiceStatus
	if invoiceListFlagStatus != "" {
		var err error
		if status, err = parseInvoiceStatus(invoiceListFlagStatus); err != nil {
			return err
		}
	}

	invoices, err := ctx.Invoices.List(runContext(cmd), ctx.Config.ArtisanID, status)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintInvoices(invoices)
	}
	ctx.CLIFormatter().PrintInvoices(invoices, ctx.Now())
	return nil
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	runCtx := runContext(cmd)
	inv, err := ctx.Invoices.Get(runCtx, args[0])
	if err != nil {
		return err
	}
	reminders, err := ctx.Log.ListInvoiceReminders(runCtx, inv.ID)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		if reminders == nil {
			reminders = []model.InvoiceReminder{}
		}
		return ctx.Formatter.JSON(map[string]any{
			"invoice":   output.NewInvoiceOutput(inv),
			"reminders": reminders,
		})
	}

	cli := ctx.CLIFormatter()
	cli.PrintInvoices([]*model.Invoice{inv}, ctx.Now())
	if len(reminders) == 0 {
		cli.Muted("No reminders issued.")
		return nil
	}
	cli.Println()
	for _, r := range reminders {
		cli.Printf("  %s  %-6s  %s\n", r.SentAt.Format(time.DateOnly), r.Tier, r.Message)
	}
	return nil
}

func runInvoicePay(cmd *cobra.Command, args []string) error {
	runCtx := runContext(cmd)
	inv, err := ctx.Invoices.Get(runCtx, args[0])
	if err != nil {
		return err
	}
	if err := ctx.Invoices.MarkPaid(runCtx, inv.ID, ctx.Now()); err != nil {
		return err
	}
	inv.Status = model.InvoicePaid

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintInvoices([]*model.Invoice{inv})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Invoice %s marked paid", inv.Number))
	return nil
}
