package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/nsurely/motor-go/internal/constants"
)

// recordFilter keeps the records a --filter expression accepts. Record
// fields are available under their API names, e.g.
//
//	isActive && vehicleCount > 1
//	status == "failed" && amount >= 1000
//	(risk?.score ?? 0) > 50
//
// Empty fields are left out of records, so comparisons against them fail and
// the record is skipped; use ?? to supply a default.
type recordFilter struct {
	expression string
	program    *vm.Program
}

// newRecordFilter compiles expression. An empty expression accepts
// everything and yields a nil filter.
func newRecordFilter(expression string) (*recordFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}

	program, err := expr.Compile(expression,
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidFilter, err)
	}

	return &recordFilter{expression: expression, program: program}, nil
}

// Match evaluates the filter against the JSON form of record.
func (f *recordFilter) Match(record any) (bool, error) {
	if f == nil {
		return true, nil
	}

	env, err := recordEnv(record)
	if err != nil {
		return false, err
	}

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, nil //nolint:nilerr // records the expression cannot evaluate do not match
	}

	matched, _ := result.(bool)

	return matched, nil
}

// recordEnv flattens a record into the map the expression runs against.
func recordEnv(record any) (map[string]any, error) {
	if env, ok := record.(map[string]any); ok {
		return env, nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding record for filter: %w", err)
	}

	env := map[string]any{}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding record for filter: %w", err)
	}

	return env, nil
}

// filterRecords applies f to every record, keeping order.
func filterRecords[T any](f *recordFilter, records []T, view func(T) any) ([]T, error) {
	if f == nil {
		return records, nil
	}

	kept := make([]T, 0, len(records))

	for _, record := range records {
		var subject any = record
		if view != nil {
			subject = view(record)
		}

		ok, err := f.Match(subject)
		if err != nil {
			return nil, err
		}

		if ok {
			kept = append(kept, record)
		}
	}

	return kept, nil
}
