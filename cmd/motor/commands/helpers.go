package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xeonx/timeago"
	"gopkg.in/yaml.v3"

	"github.com/nsurely/motor-go/internal/constants"
)

// Common static errors used throughout the commands package.
var (
	ErrInvalidTraceEndpoint = errors.New("invalid trace endpoint")
	ErrMissingStatus        = errors.New("status is required")
	ErrNotFound             = errors.New("not found")
)

const (
	timeLayout        = "2006-01-02 15:04:05"
	defaultJSONIndent = "  "
)

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	output := strings.ToLower(viper.GetString("output"))
	switch output {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return output, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidOutput, output)
	}
}

// encodeStructured writes value as JSON or YAML and reports whether it did.
// Table output is left to the caller.
func encodeStructured(w io.Writer, value any) (bool, error) {
	output, err := outputFormat()
	if err != nil {
		return false, err
	}

	switch output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", defaultJSONIndent)

		return true, encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()

		return true, encoder.Encode(value)
	default:
		return false, nil
	}
}

// property is one row of a Property/Value table.
type property struct {
	name  string
	value string
}

// renderDetails prints value in the chosen format, using props for tables.
func renderDetails(cmd *cobra.Command, value any, props []property) error {
	done, err := encodeStructured(cmd.OutOrStdout(), value)
	if done || err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Property", "Value")

	for _, p := range props {
		_ = table.Append(p.name, p.value)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderList prints items in the chosen format, one table row per item.
func renderList[T any](cmd *cobra.Command, items []T, headers []string, row func(T) []string) error {
	if items == nil {
		items = []T{}
	}

	done, err := encodeStructured(cmd.OutOrStdout(), items)
	if done || err != nil {
		return err
	}

	if len(items) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No records found")

		return nil
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header(toAny(headers)...)

	for _, item := range items {
		_ = table.Append(toAny(row(item))...)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%d record(s)\n", len(items))

	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}

func orNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}

// formatTime prints an absolute timestamp followed by how long ago it was.
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return constants.NotAvailable
	}

	return fmt.Sprintf("%s (%s)", t.Local().Format(timeLayout), timeago.NoMax(timeago.English).Format(*t))
}

// formatAgo prints only the relative time, for list columns.
func formatAgo(t *time.Time) string {
	if t == nil || t.IsZero() {
		return constants.NotAvailable
	}

	return timeago.NoMax(timeago.English).Format(*t)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
