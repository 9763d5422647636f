package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
)

// listFlags are shared by every list command.
type listFlags struct {
	limit    int
	offset   int
	maxPages int
	filter   string
	params   []string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.limit, "limit", constants.StandardPageSize, "page size")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "offset of the first record")
	cmd.Flags().IntVar(&f.maxPages, "max-pages", 0, "stop after this many pages (0 = all)")
	cmd.Flags().StringVar(&f.filter, "filter", "", `expression records must match, e.g. 'isActive && vehicleCount > 0'`)
}

// registerParams adds --param for endpoints that accept free-form query
// parameters.
func (f *listFlags) registerParams(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.params, "param", nil, "extra query parameter as key=value (repeatable)")
}

func (f *listFlags) batchOptions() *motor.BatchOptions {
	return &motor.BatchOptions{Limit: f.limit, Offset: f.offset, MaxPages: f.maxPages}
}

func (f *listFlags) queryParams() (motor.Params, error) {
	return parseParams(f.params)
}

// parseParams turns key=value pairs into query parameters.
func parseParams(pairs []string) (motor.Params, error) {
	params := motor.Params{}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParam, pair)
		}

		params[strings.TrimSpace(key)] = value
	}

	return params, nil
}

// collect drains an iterator and applies the filter.
func collect[T any](it *motor.BatchIterator[T], filter *recordFilter, view func(T) any) ([]T, error) {
	items, err := it.All()
	if err != nil {
		return nil, err
	}

	return filterRecords(filter, items, view)
}

// runList is the body shared by list commands: build a client, list, filter
// and render.
func runList[T any](
	cmd *cobra.Command,
	flags *listFlags,
	list func(ctx context.Context, client motor.Client, params motor.Params, opts *motor.BatchOptions) *motor.BatchIterator[T],
	view func(T) any,
	headers []string,
	row func(T) []string,
) (err error) {
	filter, err := newRecordFilter(flags.filter)
	if err != nil {
		return err
	}

	params, err := flags.queryParams()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	client, err := newClient(ctx, clientAuthenticated)
	if err != nil {
		return err
	}
	defer closeClient(client, &err)

	items, err := collect(list(ctx, client, params, flags.batchOptions()), filter, view)
	if err != nil {
		return err
	}

	return renderList(cmd, items, headers, row)
}

// runGet builds a client and renders the single record get returns.
func runGet[T any](
	cmd *cobra.Command,
	get func(ctx context.Context, client motor.Client) (*T, error),
	props func(*T) []property,
) (err error) {
	ctx := commandContext(cmd)

	client, err := newClient(ctx, clientAuthenticated)
	if err != nil {
		return err
	}
	defer closeClient(client, &err)

	record, err := get(ctx, client)
	if err != nil {
		return err
	}

	return renderDetails(cmd, record, props(record))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
