package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devcamper/devcamper-api/internal/core/ports"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

// errorResponse documents the envelope the central error handler renders.
type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error"`
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type listResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

type pageResponse struct {
	Success    bool             `json:"success"`
	Count      int              `json:"count"`
	Pagination query.Pagination `json:"pagination"`
	Data       any              `json:"data"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// emptyData renders as {} for delete and logout responses.
var emptyData = struct{}{}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, dataResponse{Success: true, Data: data})
}

func respondList[T any](c echo.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, listResponse{Success: true, Count: len(items), Data: items})
}

// respondPage renders an advanced-results page, trimming every item down to
// the fields named by ?select when one was given.
func respondPage[T any](c echo.Context, q query.Query, page *ports.Page[T]) error {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	var data any = items
	if len(q.Select) > 0 {
		shaped, err := selectFields(items, q.Select)
		if err != nil {
			return err
		}
		data = shaped
	}
	return c.JSON(http.StatusOK, pageResponse{
		Success:    true,
		Count:      len(items),
		Pagination: page.Pagination,
		Data:       data,
	})
}

// populatedBy maps a selectable reference to the field its lookup fills in.
var populatedBy = map[string]string{"bootcamp": "bootcampInfo"}

// selectFields keeps id plus the top-level JSON fields named in fields.
// Nested selections such as location.city keep their parent object, and a
// selected reference keeps its populated companion.
func selectFields[T any](items []T, fields []string) ([]map[string]json.RawMessage, error) {
	keep := map[string]struct{}{"id": {}}
	for _, f := range fields {
		top, _, _ := strings.Cut(f, ".")
		keep[top] = struct{}{}
		if extra, ok := populatedBy[top]; ok {
			keep[extra] = struct{}{}
		}
	}

	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		var all map[string]json.RawMessage
		if err := json.Unmarshal(raw, &all); err != nil {
			return nil, err
		}
		for k := range all {
			if _, ok := keep[k]; !ok {
				delete(all, k)
			}
		}
		out = append(out, all)
	}
	return out, nil
}
