package handler

import "github.com/devcamper/devcamper-api/internal/core/query"

var reviewFilters = query.Schema{
	"id":        query.ID,
	"title":     query.String,
	"rating":    query.Number,
	"bootcamp":  query.ID,
	"user":      query.ID,
	"createdAt": query.Time,
}

type reviewRequest struct {
	Title  *string `json:"title"`
	Text   *string `json:"text"`
	Rating *int    `json:"rating"`
}
