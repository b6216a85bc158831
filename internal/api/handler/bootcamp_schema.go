package handler

import "github.com/devcamper/devcamper-api/internal/core/query"

// bootcampFilters whitelists the fields GET /bootcamps can filter on.
var bootcampFilters = query.Schema{
	"id":               query.ID,
	"name":             query.String,
	"slug":             query.String,
	"user":             query.ID,
	"careers":          query.String,
	"averageCost":      query.Number,
	"averageRating":    query.Number,
	"housing":          query.Bool,
	"jobAssistance":    query.Bool,
	"jobGuarantee":     query.Bool,
	"acceptGi":         query.Bool,
	"location.city":    query.String,
	"location.state":   query.String,
	"location.zipcode": query.String,
	"createdAt":        query.Time,
}

// bootcampRequest is shared by create and update; absent fields stay nil so
// an update only touches what the client sent.
type bootcampRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Website       *string  `json:"website"`
	Phone         *string  `json:"phone"`
	Email         *string  `json:"email"`
	Address       *string  `json:"address"`
	Careers       []string `json:"careers"`
	Housing       *bool    `json:"housing"`
	JobAssistance *bool    `json:"jobAssistance"`
	JobGuarantee  *bool    `json:"jobGuarantee"`
	AcceptGi      *bool    `json:"acceptGi"`
}
