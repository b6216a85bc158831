// Package query turns list-endpoint query strings into a storage-neutral
// description of filters, projection, sort order and paging.
//
//	GET /bootcamps?averageCost[lte]=10000&careers[in]=Business&select=name&sort=-name&page=2
//
// Repositories translate a Query into their own query language; nothing in
// this package knows about any particular store.
package query

const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 100
	DefaultSort  = "-createdAt"

	// MaxPage bounds page so page*limit stays well inside int64.
	MaxPage = 1_000_000
)

// Kind is the value type of a filterable field. It drives coercion of the
// raw query-string value.
type Kind int

const (
	String Kind = iota
	Number
	Bool
	ID
	Time
)

// Schema lists the fields a resource may be filtered on.
type Schema map[string]Kind

// Operator is a comparison in a filter condition.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// Condition is a single field comparison. Value is already coerced to the
// field's Kind; for OpIn it is a []any.
type Condition struct {
	Field string
	Op    Operator
	Kind  Kind
	Value any
}

// SortField orders results by one field.
type SortField struct {
	Field string
	Desc  bool
}

// Query is the parsed form of a list request.
type Query struct {
	Conditions []Condition
	Select     []string
	Sort       []SortField
	Page       int
	Limit      int
}

// Skip is the number of matching records before the requested page.
func (q Query) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}

// New returns an unfiltered query with default paging and sort.
func New() Query {
	return Query{
		Page:  DefaultPage,
		Limit: DefaultLimit,
		Sort:  parseSort(DefaultSort),
	}
}
