package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subcommandNames(cmd *cobra.Command) []string {
	var names []string
	for _, subcmd := range cmd.Commands() {
		names = append(names, subcmd.Name())
	}

	return names
}

func TestNewDriversCommand(t *testing.T) {
	cmd := NewDriversCommand()
	assert.Equal(t, "drivers", cmd.Use)
	assert.Equal(t, []string{"driver", "drv"}, cmd.Aliases)
	assert.Equal(t, "Manage drivers", cmd.Short)
	assert.ElementsMatch(t, []string{"get", "list", "billing-accounts"}, subcommandNames(cmd))
}

func TestDriversListCommand(t *testing.T) {
	cmd := newDriversListCommand()
	assert.Equal(t, "list", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	for _, flagName := range []string{"limit", "offset", "max-pages", "filter", "param"} {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}

	assert.Equal(t, "50", cmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "0", cmd.Flags().Lookup("max-pages").DefValue)
}

func TestDriversBillingAccountsCommand(t *testing.T) {
	cmd := newDriversBillingAccountsCommand()
	assert.Equal(t, "billing-accounts DRIVER_ID", cmd.Use)
	assert.Equal(t, []string{"accounts"}, cmd.Aliases)
	assert.NotNil(t, cmd.Args)
	assert.Equal(t, "false", cmd.Flags().Lookup("primary").DefValue)
}

func TestNewVehiclesCommand(t *testing.T) {
	cmd := NewVehiclesCommand()
	assert.Equal(t, "vehicles", cmd.Use)
	assert.ElementsMatch(t, []string{"get", "search"}, subcommandNames(cmd))

	search := newVehiclesSearchCommand()
	assert.Equal(t, []string{"list"}, search.Aliases)

	for _, flagName := range []string{"reg-plate", "vin", "active", "approved", "brief", "filter"} {
		assert.NotNil(t, search.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}

	assert.Nil(t, search.Flags().Lookup("param"), "search takes typed filters only")
}

func TestNewFleetsCommand(t *testing.T) {
	cmd := NewFleetsCommand()
	assert.Equal(t, "fleets", cmd.Use)
	assert.ElementsMatch(t, []string{"get", "list", "members"}, subcommandNames(cmd))
	assert.NotNil(t, newFleetsGetCommand().Flags().Lookup("lang"))
	assert.Equal(t, "members FLEET_ID", newFleetsMembersCommand().Use)
}

func TestNewBillingCommand(t *testing.T) {
	cmd := NewBillingCommand()
	assert.Equal(t, "billing", cmd.Use)
	assert.Equal(t, []string{"billing-events", "be"}, cmd.Aliases)
	assert.ElementsMatch(t, []string{"get", "list", "set-status"}, subcommandNames(cmd))

	setStatus := newBillingSetStatusCommand()
	assert.Equal(t, "set-status EVENT_ID STATUS", setStatus.Use)
	assert.NotNil(t, setStatus.Flags().Lookup("payment-id"))
	assert.NotNil(t, newBillingListCommand().Flags().Lookup("status"))
}

func TestNewPoliciesCommand(t *testing.T) {
	cmd := NewPoliciesCommand()
	assert.Equal(t, "policies", cmd.Use)
	assert.ElementsMatch(t, []string{"get", "list"}, subcommandNames(cmd))
}

func TestNewOrgCommand(t *testing.T) {
	cmd := NewOrgCommand()
	assert.Equal(t, "org", cmd.Use)
	assert.ElementsMatch(t, []string{"settings", "name", "language"}, subcommandNames(cmd))
	assert.NotNil(t, newOrgSettingsCommand().Flags().Lookup("refresh"))
}

func TestNewConfigCommand(t *testing.T) {
	cmd := NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)
	assert.Equal(t, "Manage CLI configuration", cmd.Short)
	assert.ElementsMatch(t, []string{"show", "set", "unset", "clear"}, subcommandNames(cmd))
	assert.Equal(t, "set KEY VALUE", newConfigSetCommand().Use)
}

func TestNewLoginCommand(t *testing.T) {
	cmd := NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)

	for _, flagName := range []string{"email", "password", "driver", "api-key", "api-secret"} {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}

	assert.Equal(t, "e", cmd.Flags().Lookup("email").Shorthand)
	assert.Equal(t, "p", cmd.Flags().Lookup("password").Shorthand)
	assert.Equal(t, "logout", NewLogoutCommand().Use)
}

func TestNewRequestCommand(t *testing.T) {
	cmd := NewRequestCommand()
	assert.Equal(t, "request ENDPOINT", cmd.Use)

	method := cmd.Flags().Lookup("method")
	require.NotNil(t, method)
	assert.Equal(t, "X", method.Shorthand)
	assert.Equal(t, "GET", method.DefValue)

	for _, flagName := range []string{"param", "header", "data", "public", "query"} {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "abc", "2026-01-02T03:04:05Z")
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Display version information", cmd.Short)
}
