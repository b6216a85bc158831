package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devcamper/devcamper-api/internal/api/metrics"
	"github.com/devcamper/devcamper-api/internal/core/ports"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

// CourseHandler handles HTTP requests for course operations.
type CourseHandler struct {
	service ports.CourseService
}

func NewCourseHandler(service ports.CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// List handles GET /api/v1/courses and GET /api/v1/bootcamps/:bootcampId/courses.
// Scoped to a bootcamp it returns every course unpaginated.
//
// @Summary      List courses
// @Tags         courses
// @Produce      json
// @Param        select  query     string  false  "Comma separated fields to return"
// @Param        sort    query     string  false  "Comma separated sort fields, prefix - for descending"
// @Param        page    query     int     false  "Page number"  default(1)
// @Param        limit   query     int     false  "Page size"    default(5)
// @Success      200     {object}  pageResponse
// @Failure      400     {object}  errorResponse
// @Router       /courses [get]
// @Router       /bootcamps/{bootcampId}/courses [get]
func (h *CourseHandler) List(c echo.Context) error {
	if bootcampID := c.Param("bootcampId"); bootcampID != "" {
		items, err := h.service.ListByBootcamp(c.Request().Context(), bootcampID)
		if err != nil {
			return err
		}
		return respondList(c, items)
	}

	q, err := query.Parse(c.QueryParams(), courseFilters)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return respondPage(c, q, page)
}

// Get handles GET /api/v1/courses/:id.
//
// @Summary      Get a course
// @Tags         courses
// @Produce      json
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  dataResponse
// @Failure      404  {object}  errorResponse
// @Router       /courses/{id} [get]
func (h *CourseHandler) Get(c echo.Context) error {
	course, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, course)
}

// Create handles POST /api/v1/bootcamps/:bootcampId/courses.
//
// @Summary      Add a course to a bootcamp
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bootcampId  path      string         true  "Bootcamp id"
// @Param        body        body      courseRequest  true  "Course details"
// @Success      201         {object}  dataResponse
// @Failure      400         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /bootcamps/{bootcampId}/courses [post]
func (h *CourseHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req courseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	course, err := h.service.Create(c.Request().Context(), actor, c.Param("bootcampId"), toCourseFields(req))
	if err != nil {
		return err
	}
	metrics.ResourcesCreatedTotal.WithLabelValues("course").Inc()
	return respond(c, http.StatusCreated, course)
}

// Update handles PUT /api/v1/courses/:id.
//
// @Summary      Update a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Course id"
// @Param        body  body      courseRequest  true  "Fields to change"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /courses/{id} [put]
func (h *CourseHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req courseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	course, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), toCourseFields(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, course)
}

// Delete handles DELETE /api/v1/courses/:id.
//
// @Summary      Delete a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Course id"
// @Success      200  {object}  dataResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /courses/{id} [delete]
func (h *CourseHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, emptyData)
}
