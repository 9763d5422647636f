package commands

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/xeonx/timeago"

	"github.com/nsurely/motor-go/internal/constants"
)

// VersionInfo is what the version command reports.
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the Motor CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			versionInfo := VersionInfo{
				Version: version,
				Commit:  commit,
				Built:   date,
			}

			done, err := encodeStructured(cmd.OutOrStdout(), versionInfo)
			if done || err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Property", "Value")
			_ = table.Append("Version", version)
			_ = table.Append("Commit", commit)
			_ = table.Append("Built", builtAgo(date))
			_ = table.Append("User Agent", constants.DefaultUserAgent)

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

// builtAgo adds a relative age to RFC 3339 build dates.
func builtAgo(date string) string {
	built, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return date
	}

	return fmt.Sprintf("%s (%s)", date, timeago.NoMax(timeago.English).Format(built))
}
