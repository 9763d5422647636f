package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nsurely/motor-go/pkg/motor"
)

// NewPoliciesCommand creates the policies command group
func NewPoliciesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "policies",
		Aliases: []string{"policy", "pol"},
		Short:   "Manage policies",
		Long:    "List and inspect insurance policies",
	}

	cmd.AddCommand(newPoliciesGetCommand())
	cmd.AddCommand(newPoliciesListCommand())

	return cmd
}

func newPoliciesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get POLICY_ID",
		Short: "Get policy details",
		Long:  "Display detailed information about a specific policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, func(ctx context.Context, client motor.Client) (*motor.Policy, error) {
				policy, err := client.Policies().Get(ctx, args[0], nil)
				if err != nil {
					return nil, fmt.Errorf("failed to get policy: %w", err)
				}

				return policy, nil
			}, policyProperties)
		},
	}
}

func policyProperties(policy *motor.Policy) []property {
	return []property{
		{"ID", policy.ID},
		{"Type", orNA(policy.PolicyType)},
		{"Active", yesNo(policy.IsActive)},
		{"Sum Insured", formatFloat(policy.SumInsured)},
		{"Cover", orNA(strings.Join(policy.Cover, ", "))},
		{"Max Passengers", strconv.Itoa(policy.MaxPassengers)},
		{"Renewable", yesNo(policy.CanRenew)},
		{"Created", formatTime(policy.CreatedAt)},
	}
}

func newPoliciesListCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List policies",
		Long:  "List the policies of the organization. Filters see every field the API returns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, &flags,
				func(ctx context.Context, client motor.Client, params motor.Params, opts *motor.BatchOptions) *motor.BatchIterator[motor.Policy] {
					return client.Policies().List(ctx, params, opts)
				},
				func(p motor.Policy) any { return p.Raw },
				[]string{"ID", "Type", "Active", "Sum Insured", "Created"},
				func(p motor.Policy) []string {
					return []string{p.ID, orNA(p.PolicyType), yesNo(p.IsActive), formatFloat(p.SumInsured), formatAgo(p.CreatedAt)}
				},
			)
		},
	}

	flags.register(cmd)
	flags.registerParams(cmd)

	return cmd
}
