package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devcamper/devcamper-api/internal/api/metrics"
	"github.com/devcamper/devcamper-api/internal/core/ports"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

type ReviewHandler struct {
	service ports.ReviewService
}

func NewReviewHandler(service ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// List handles GET /api/v1/reviews and GET /api/v1/bootcamps/:bootcampId/reviews.
//
// @Summary      List reviews
// @Tags         reviews
// @Produce      json
// @Param        select  query     string  false  "Comma separated fields to return"
// @Param        sort    query     string  false  "Comma separated sort fields, prefix - for descending"
// @Param        page    query     int     false  "Page number"  default(1)
// @Param        limit   query     int     false  "Page size"    default(5)
// @Success      200     {object}  pageResponse
// @Failure      400     {object}  errorResponse
// @Router       /reviews [get]
// @Router       /bootcamps/{bootcampId}/reviews [get]
func (h *ReviewHandler) List(c echo.Context) error {
	if bootcampID := c.Param("bootcampId"); bootcampID != "" {
		items, err := h.service.ListByBootcamp(c.Request().Context(), bootcampID)
		if err != nil {
			return err
		}
		return respondList(c, items)
	}

	q, err := query.Parse(c.QueryParams(), reviewFilters)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return respondPage(c, q, page)
}

// Get handles GET /api/v1/reviews/:id.
//
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Param        id   path      string  true  "Review id"
// @Success      200  {object}  dataResponse
// @Failure      404  {object}  errorResponse
// @Router       /reviews/{id} [get]
func (h *ReviewHandler) Get(c echo.Context) error {
	r, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, r)
}

// Create handles POST /api/v1/bootcamps/:bootcampId/reviews.
//
// @Summary      Review a bootcamp
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bootcampId  path      string         true  "Bootcamp id"
// @Param        body        body      reviewRequest  true  "Review"
// @Success      201         {object}  dataResponse
// @Failure      400         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /bootcamps/{bootcampId}/reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	r, err := h.service.Create(c.Request().Context(), actor, c.Param("bootcampId"), toReviewFields(req))
	if err != nil {
		return err
	}
	metrics.ResourcesCreatedTotal.WithLabelValues("review").Inc()
	return respond(c, http.StatusCreated, r)
}

// Update handles PUT /api/v1/reviews/:id.
//
// @Summary      Update a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Review id"
// @Param        body  body      reviewRequest  true  "Fields to change"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /reviews/{id} [put]
func (h *ReviewHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	r, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), toReviewFields(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, r)
}

// Delete handles DELETE /api/v1/reviews/:id.
//
// @Summary      Delete a review
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Review id"
// @Success      200  {object}  dataResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, emptyData)
}
