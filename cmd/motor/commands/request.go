package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
)

// ErrInvalidBody is returned when --data is not JSON.
var ErrInvalidBody = errors.New("request body must be valid JSON")

// NewRequestCommand creates the request command
func NewRequestCommand() *cobra.Command {
	var (
		method  string
		params  []string
		headers []string
		data    string
		public  bool
		query   string
	)

	cmd := &cobra.Command{
		Use:     "request ENDPOINT",
		Aliases: []string{"req", "api"},
		Short:   "Send an API request",
		Long: `Send an authenticated request to an endpoint under the organization root and
print the response. --query extracts part of the response with a GJSON path:

  motor request drivers --param limit=5 --query '#.email'
  motor request policies/p-1 -X PATCH --data '{"canRenew":false}'
  motor request billing-events/be-1 --data @event.json -X PATCH`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			req, err := buildRequest(args[0], method, params, headers, data, public)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)

			mode := clientAuthenticated
			if public {
				mode = clientOptionalAuth
			}

			client, err := newClient(ctx, mode)
			if err != nil {
				return err
			}
			defer closeClient(client, &err)

			body, err := client.Request(ctx, req)
			if err != nil {
				return err
			}

			return printResponse(cmd, body, query)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringArrayVarP(&params, "param", "q", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, `header as "Name: value" (repeatable)`)
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body, or @file to read it from a file")
	cmd.Flags().BoolVar(&public, "public", false, "send without credentials")
	cmd.Flags().StringVar(&query, "query", "", "GJSON path to extract from the response")

	return cmd
}

func buildRequest(endpoint, method string, params, headers []string, data string, public bool) (*motor.Request, error) {
	query, err := parseParams(params)
	if err != nil {
		return nil, err
	}

	req := &motor.Request{
		Method:   strings.ToUpper(method),
		Endpoint: strings.TrimPrefix(endpoint, "/"),
		Params:   query,
		Public:   public,
	}

	if strings.HasPrefix(endpoint, "https://") || strings.HasPrefix(endpoint, "http://") {
		req.URL, req.Endpoint = endpoint, ""
	}

	if len(headers) > 0 {
		req.Headers = make(map[string]string, len(headers))

		for _, header := range headers {
			name, value, ok := strings.Cut(header, ":")
			if !ok || strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("%w: %q", constants.ErrInvalidHeader, header)
			}

			req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}

	if data != "" {
		body := []byte(data)

		if path, ok := strings.CutPrefix(data, "@"); ok {
			body, err = os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading request body: %w", err)
			}
		}

		if !json.Valid(body) {
			return nil, ErrInvalidBody
		}

		req.Body = json.RawMessage(body)
	}

	return req, nil
}

// printResponse writes body, or the part --query selects, in the chosen
// output format. Tables are not meaningful for arbitrary JSON, so table
// output prints indented JSON.
func printResponse(cmd *cobra.Command, body json.RawMessage, query string) error {
	if len(body) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No content")

		return nil
	}

	if query != "" {
		result := gjson.GetBytes(body, query)
		if !result.Exists() {
			return fmt.Errorf("%w: query %q matched nothing", ErrNotFound, query)
		}

		if result.Type == gjson.String {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.String())

			return nil
		}

		body = json.RawMessage(result.Raw)
	}

	output, err := outputFormat()
	if err != nil {
		return err
	}

	if output == constants.FormatYAML {
		var value any
		if err := json.Unmarshal(body, &value); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		defer encoder.Close()

		return encoder.Encode(value)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, body, "", defaultJSONIndent); err != nil {
		_, _ = cmd.OutOrStdout().Write(body)
		_, _ = fmt.Fprintln(cmd.OutOrStdout())

		return nil //nolint:nilerr // non-JSON bodies are printed as they came
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), indented.String())

	return nil
}
