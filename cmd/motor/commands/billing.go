package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nsurely/motor-go/pkg/motor"
)

// NewBillingCommand creates the billing events command group
func NewBillingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "billing",
		Aliases: []string{"billing-events", "be"},
		Short:   "Manage billing events",
		Long:    "List billing events and record their payment status",
	}

	cmd.AddCommand(newBillingGetCommand())
	cmd.AddCommand(newBillingListCommand())
	cmd.AddCommand(newBillingSetStatusCommand())

	return cmd
}

func newBillingGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Get billing event details",
		Long:  "Display detailed information about a specific billing event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, func(ctx context.Context, client motor.Client) (*motor.BillingEvent, error) {
				event, err := client.BillingEvents().Get(ctx, args[0])
				if err != nil {
					return nil, fmt.Errorf("failed to get billing event: %w", err)
				}

				return event, nil
			}, billingEventProperties)
		},
	}
}

func billingEventProperties(event *motor.BillingEvent) []property {
	direction := "in"
	if event.PaymentOut {
		direction = "out"
	}

	return []property{
		{"ID", event.ID},
		{"Type", orNA(event.Type)},
		{"Status", orNA(string(event.Status))},
		{"Amount", formatAmount(event)},
		{"Direction", direction},
		{"Message", orNA(event.Message)},
		{"Payment ID", orNA(event.PaymentID)},
		{"Policy ID", orNA(event.PolicyID)},
		{"Payment Date", formatTime(event.PaymentDate)},
		{"Approved", formatTime(event.ApprovalAt)},
		{"Approved By", orNA(event.ApprovalBy)},
		{"Created", formatTime(event.CreatedAt)},
	}
}

// formatAmount prints the amount in minor units with its currency, if known.
func formatAmount(event *motor.BillingEvent) string {
	amount := strconv.Itoa(event.Amount)
	if currency := event.Currency(); currency != "" {
		return amount + " " + currency
	}

	return amount
}

func newBillingListCommand() *cobra.Command {
	var (
		flags  listFlags
		status string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List billing events",
		Long:  "List the billing events of the organization, page by page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !motor.BillingEventStatus(status).Valid() {
				return fmt.Errorf("%w: %q", motor.ErrInvalidStatus, status)
			}

			return runList(cmd, &flags,
				func(ctx context.Context, client motor.Client, params motor.Params, opts *motor.BatchOptions) *motor.BatchIterator[motor.BillingEvent] {
					if status != "" {
						params = params.Set("status", status)
					}

					return client.BillingEvents().List(ctx, params, opts)
				},
				nil,
				[]string{"ID", "Type", "Status", "Amount", "Policy", "Created"},
				func(e motor.BillingEvent) []string {
					return []string{e.ID, orNA(e.Type), orNA(string(e.Status)), formatAmount(&e), orNA(e.PolicyID), formatAgo(e.CreatedAt)}
				},
			)
		},
	}

	flags.register(cmd)
	flags.registerParams(cmd)
	cmd.Flags().StringVar(&status, "status", "", "only events with this status")

	return cmd
}

func newBillingSetStatusCommand() *cobra.Command {
	var paymentID string

	cmd := &cobra.Command{
		Use:   "set-status EVENT_ID STATUS",
		Short: "Set a billing event's status",
		Long:  "Record the payment status of a billing event: pending, paid, failed, cancelled or confirmed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			status := motor.BillingEventStatus(strings.ToLower(strings.TrimSpace(args[1])))
			if status == "" {
				return ErrMissingStatus
			}

			ctx := commandContext(cmd)

			client, err := newClient(ctx, clientAuthenticated)
			if err != nil {
				return err
			}
			defer closeClient(client, &err)

			if err := client.BillingEvents().UpdateStatus(ctx, args[0], status, paymentID); err != nil {
				return fmt.Errorf("failed to update billing event: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Billing event %s marked %s\n", args[0], status)

			return nil
		},
	}

	cmd.Flags().StringVar(&paymentID, "payment-id", "", "payment provider reference")

	return cmd
}
