package handler

import "github.com/devcamper/devcamper-api/internal/core/query"

var courseFilters = query.Schema{
	"id":                   query.ID,
	"title":                query.String,
	"weeks":                query.Number,
	"tuition":              query.Number,
	"minimumSkill":         query.String,
	"scholarshipAvailable": query.Bool,
	"bootcamp":             query.ID,
	"user":                 query.ID,
	"createdAt":            query.Time,
}

type courseRequest struct {
	Title                *string  `json:"title"`
	Description          *string  `json:"description"`
	Weeks                *int     `json:"weeks"`
	Tuition              *float64 `json:"tuition"`
	MinimumSkill         *string  `json:"minimumSkill"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}
