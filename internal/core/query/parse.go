package query

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/devcamper/devcamper-api/internal/core/domain"
)

var reserved = map[string]struct{}{
	"select":     {},
	"sort":       {},
	"pagination": {},
	"limit":      {},
	"page":       {},
}

var operators = map[string]Operator{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

var (
	filterKey = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*(?:\.[A-Za-z][A-Za-z0-9_]*)*)(?:\[([A-Za-z]+)\])?$`)
	fieldName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(?:\.[A-Za-z][A-Za-z0-9_]*)*$`)
)

// Parse builds a Query from raw query parameters. Only fields present in
// schema can be filtered on; anything else, including keys that try to smuggle
// store operators, is rejected with ErrValidation.
func Parse(values url.Values, schema Schema) (Query, error) {
	q := New()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, skip := reserved[key]; skip {
			continue
		}
		cond, err := parseCondition(key, values[key], schema)
		if err != nil {
			return Query{}, err
		}
		q.Conditions = append(q.Conditions, cond)
	}

	if raw := values.Get("select"); raw != "" {
		fields, err := parseFields(raw)
		if err != nil {
			return Query{}, err
		}
		q.Select = fields
	}

	if raw := values.Get("sort"); raw != "" {
		fields, err := parseFields(raw)
		if err != nil {
			return Query{}, err
		}
		q.Sort = parseSort(strings.Join(fields, ","))
	}

	q.Page = positiveInt(values.Get("page"), DefaultPage)
	if q.Page > MaxPage {
		return Query{}, domain.Errorf(domain.ErrValidation, "Page must not exceed %d", MaxPage)
	}
	q.Limit = min(positiveInt(values.Get("limit"), DefaultLimit), MaxLimit)

	return q, nil
}

func parseCondition(key string, raw []string, schema Schema) (Condition, error) {
	m := filterKey.FindStringSubmatch(key)
	if m == nil {
		return Condition{}, domain.Errorf(domain.ErrValidation, "Invalid query parameter %q", key)
	}
	field, opWord := m[1], m[2]

	kind, ok := schema[field]
	if !ok {
		return Condition{}, domain.Errorf(domain.ErrValidation, "Cannot filter on field %q", field)
	}

	op := OpEq
	if opWord != "" {
		if op, ok = operators[opWord]; !ok {
			return Condition{}, domain.Errorf(domain.ErrValidation, "Unknown filter operator %q", opWord)
		}
	}

	if op == OpIn {
		var items []any
		for _, v := range raw {
			for _, part := range strings.Split(v, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				val, err := coerce(field, kind, part)
				if err != nil {
					return Condition{}, err
				}
				items = append(items, val)
			}
		}
		return Condition{Field: field, Op: op, Kind: kind, Value: items}, nil
	}

	// Repeated scalar parameters: the last one wins.
	val, err := coerce(field, kind, raw[len(raw)-1])
	if err != nil {
		return Condition{}, err
	}
	return Condition{Field: field, Op: op, Kind: kind, Value: val}, nil
}

func coerce(field string, kind Kind, raw string) (any, error) {
	switch kind {
	case Number:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, domain.Errorf(domain.ErrValidation, "%s must be a number", field)
		}
		return f, nil
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, domain.Errorf(domain.ErrValidation, "%s must be true or false", field)
		}
		return b, nil
	case Time:
		for _, layout := range []string{time.RFC3339, time.DateOnly} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, domain.Errorf(domain.ErrValidation, "%s must be a date (YYYY-MM-DD or RFC 3339)", field)
	default:
		return raw, nil
	}
}

func parseFields(raw string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !fieldName.MatchString(strings.TrimPrefix(f, "-")) {
			return nil, domain.Errorf(domain.ErrValidation, "Invalid field name %q", f)
		}
		out = append(out, f)
	}
	return out, nil
}

func parseSort(raw string) []SortField {
	var out []SortField
	for _, f := range strings.Split(raw, ",") {
		if f == "" {
			continue
		}
		if name, desc := strings.CutPrefix(f, "-"); desc {
			out = append(out, SortField{Field: name, Desc: true})
		} else {
			out = append(out, SortField{Field: f})
		}
	}
	return out
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
