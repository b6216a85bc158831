package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devcamper/devcamper-api/internal/core/query"
)

var bsonOps = map[query.Operator]string{
	query.OpEq:  "$eq",
	query.OpGt:  "$gt",
	query.OpGte: "$gte",
	query.OpLt:  "$lt",
	query.OpLte: "$lte",
	query.OpIn:  "$in",
}

func docField(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

// buildFilter renders the query's conditions as a BSON filter. Conditions on
// the same field are merged into one operator document so that
// cost[gte]=1&cost[lte]=2 becomes {cost: {$gte: 1, $lte: 2}}.
func buildFilter(q query.Query) bson.M {
	filter := bson.M{}
	for _, c := range q.Conditions {
		key := docField(c.Field)
		ops, ok := filter[key].(bson.M)
		if !ok {
			ops = bson.M{}
			filter[key] = ops
		}
		ops[bsonOps[c.Op]] = bsonValue(c)
	}
	return filter
}

func bsonValue(c query.Condition) any {
	if c.Kind != query.ID {
		if c.Op == query.OpIn {
			return bson.A(c.Value.([]any))
		}
		return c.Value
	}
	if c.Op == query.OpIn {
		items := c.Value.([]any)
		out := make(bson.A, len(items))
		for i, v := range items {
			out[i] = idValue(v)
		}
		return out
	}
	return idValue(c.Value)
}

// idValue converts hex strings to ObjectIDs; anything else is compared as is
// and simply matches nothing.
func idValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		return oid
	}
	return s
}

func sortDoc(fields []query.SortField) bson.D {
	sort := make(bson.D, 0, len(fields)+1)
	hasID := false
	for _, f := range fields {
		key := docField(f.Field)
		dir := 1
		if f.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: key, Value: dir})
		hasID = hasID || key == "_id"
	}
	// Tie-break on _id so pages never overlap.
	if !hasID {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}
	return sort
}

func projection(fields []string) bson.D {
	if len(fields) == 0 {
		return nil
	}
	proj := make(bson.D, 0, len(fields))
	for _, f := range fields {
		proj = append(proj, bson.E{Key: docField(f), Value: 1})
	}
	return proj
}

// findOptions applies projection, sort and paging.
func findOptions(q query.Query) *options.FindOptions {
	opts := options.Find().
		SetSort(sortDoc(q.Sort)).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))
	if proj := projection(q.Select); proj != nil {
		opts.SetProjection(proj)
	}
	return opts
}
