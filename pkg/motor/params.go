package motor

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Params are query parameters. Values of any type are accepted and coerced to
// strings by FormatValue when the request is sent.
type Params map[string]any

// Set stores value under key and returns p for chaining.
func (p Params) Set(key string, value any) Params {
	p[key] = value

	return p
}

// Clone returns a shallow copy; a nil receiver yields an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p)+2)
	maps.Copy(out, p)

	return out
}

// Merge returns a copy of p with every entry of other applied on top.
func (p Params) Merge(other Params) Params {
	out := p.Clone()
	maps.Copy(out, other)

	return out
}

// ToValues converts the parameters to url.Values. Nil values, including nil
// pointers and maps, are dropped.
func (p Params) ToValues() url.Values {
	values := url.Values{}

	for _, key := range slices.Sorted(maps.Keys(p)) {
		value := p[key]
		if isNil(value) {
			continue
		}

		values.Set(key, FormatValue(value))
	}

	return values
}

// Encode is ToValues().Encode().
func (p Params) Encode() string {
	return p.ToValues().Encode()
}

// FormatValue renders a query parameter value the way the API expects it.
// Strings pass through untouched, so formatting an already formatted value is
// a no-op.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case Search:
		return v.String()
	case *Search:
		if v == nil {
			return ""
		}

		return v.String()
	case Date:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}

		return v.Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(v)
	case time.Duration:
		return strconv.FormatInt(int64(v/time.Second), 10)
	case []string:
		return strings.Join(v, ",")
	}

	if isNil(value) {
		return ""
	}

	if v, ok := value.(fmt.Stringer); ok {
		return v.String()
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, 0, rv.Len())
		for i := range rv.Len() {
			parts = append(parts, FormatValue(rv.Index(i).Interface()))
		}

		return strings.Join(parts, ",")
	}

	if s, err := cast.ToStringE(value); err == nil {
		return s
	}

	return fmt.Sprint(value)
}

// isNil reports whether value is nil or a typed nil pointer, map, func or
// channel. Nil slices are not nil here; they format as an empty list.
func isNil(value any) bool {
	if value == nil {
		return true
	}

	switch rv := reflect.ValueOf(value); rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()

	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}

	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(d.String())
}

func (d Date) MarshalYAML() (any, error) {
	if d.IsZero() {
		return nil, nil
	}

	return d.String(), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		*d = Date{}

		return nil //nolint:nilerr // null and non-string dates decode as zero
	}

	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// SearchOperator is a comparison understood by the API's filter syntax.
type SearchOperator string

const (
	OpEq    SearchOperator = "eq"
	OpNe    SearchOperator = "ne"
	OpGt    SearchOperator = "gt"
	OpGte   SearchOperator = "gte"
	OpLt    SearchOperator = "lt"
	OpLte   SearchOperator = "lte"
	OpLike  SearchOperator = "like"
	OpILike SearchOperator = "ilike"
)

var searchOperators = []SearchOperator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpLike, OpILike}

// ErrInvalidSearchOperator is returned by NewSearch for unknown operators.
var ErrInvalidSearchOperator = fmt.Errorf("%w: invalid search operator", ErrConfiguration)

// Search is a filter value sent as "<operator>.<value>".
type Search struct {
	Operator SearchOperator
	Value    any
}

// NewSearch validates op and builds a Search.
func NewSearch(value any, op SearchOperator) (Search, error) {
	if !slices.Contains(searchOperators, op) {
		return Search{}, fmt.Errorf("%w: %q", ErrInvalidSearchOperator, op)
	}

	return Search{Operator: op, Value: value}, nil
}

func (s Search) String() string {
	op := s.Operator
	if op == "" {
		op = OpEq
	}

	return string(op) + "." + FormatValue(s.Value)
}
