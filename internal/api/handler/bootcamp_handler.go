package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/devcamper/devcamper-api/internal/api/metrics"
	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

// BootcampHandler handles HTTP requests for bootcamp operations.
type BootcampHandler struct {
	service   ports.BootcampService
	maxUpload int64
}

// NewBootcampHandler builds the handler. Photo bodies larger than maxUpload
// are never read into memory.
func NewBootcampHandler(service ports.BootcampService, maxUpload int64) *BootcampHandler {
	return &BootcampHandler{service: service, maxUpload: maxUpload}
}

// List handles GET /api/v1/bootcamps.
//
// @Summary      List bootcamps
// @Description  Supports field filters with gt/gte/lt/lte/in operators, select, sort, page and limit.
// @Tags         bootcamps
// @Produce      json
// @Param        select  query     string  false  "Comma separated fields to return"
// @Param        sort    query     string  false  "Comma separated sort fields, prefix - for descending"
// @Param        page    query     int     false  "Page number"  default(1)
// @Param        limit   query     int     false  "Page size"    default(5)
// @Success      200     {object}  pageResponse
// @Failure      400     {object}  errorResponse
// @Router       /bootcamps [get]
func (h *BootcampHandler) List(c echo.Context) error {
	q, err := query.Parse(c.QueryParams(), bootcampFilters)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return respondPage(c, q, page)
}

// Get handles GET /api/v1/bootcamps/:id.
//
// @Summary      Get a bootcamp
// @Tags         bootcamps
// @Produce      json
// @Param        id   path      string  true  "Bootcamp id"
// @Success      200  {object}  dataResponse
// @Failure      404  {object}  errorResponse
// @Router       /bootcamps/{id} [get]
func (h *BootcampHandler) Get(c echo.Context) error {
	b, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, b)
}

// Create handles POST /api/v1/bootcamps.
//
// @Summary      Create a bootcamp
// @Tags         bootcamps
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bootcampRequest  true  "Bootcamp details"
// @Success      201   {object}  dataResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /bootcamps [post]
func (h *BootcampHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req bootcampRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	b, err := h.service.Create(c.Request().Context(), actor, toBootcampFields(req))
	if err != nil {
		return err
	}
	metrics.ResourcesCreatedTotal.WithLabelValues("bootcamp").Inc()
	return respond(c, http.StatusCreated, b)
}

// Update handles PUT /api/v1/bootcamps/:id.
//
// @Summary      Update a bootcamp
// @Tags         bootcamps
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Bootcamp id"
// @Param        body  body      bootcampRequest  true  "Fields to change"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /bootcamps/{id} [put]
func (h *BootcampHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req bootcampRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	b, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), toBootcampFields(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, b)
}

// Delete handles DELETE /api/v1/bootcamps/:id. Courses and reviews of the
// bootcamp go with it.
//
// @Summary      Delete a bootcamp
// @Tags         bootcamps
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Bootcamp id"
// @Success      200  {object}  dataResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /bootcamps/{id} [delete]
func (h *BootcampHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, emptyData)
}

// Radius handles GET /api/v1/bootcamps/radius/:zipcode/:distance.
//
// @Summary      Bootcamps within a radius
// @Tags         bootcamps
// @Produce      json
// @Param        zipcode   path      string  true  "Zipcode at the centre"
// @Param        distance  path      number  true  "Radius in miles"
// @Success      200       {object}  listResponse
// @Failure      400       {object}  errorResponse
// @Router       /bootcamps/radius/{zipcode}/{distance} [get]
func (h *BootcampHandler) Radius(c echo.Context) error {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		return domain.Errorf(domain.ErrValidation, "distance must be a number")
	}

	items, err := h.service.WithinRadius(c.Request().Context(), c.Param("zipcode"), distance)
	if err != nil {
		return err
	}
	return respondList(c, items)
}

// UploadPhoto handles PUT /api/v1/bootcamps/:id/photo.
//
// @Summary      Upload a bootcamp photo
// @Tags         bootcamps
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Bootcamp id"
// @Param        file  formData  file    true  "Image file"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /bootcamps/{id}/photo [put]
func (h *BootcampHandler) UploadPhoto(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return domain.Errorf(domain.ErrValidation, "Please upload a file")
	}

	upload := ports.PhotoUpload{Filename: fh.Filename, Size: fh.Size}
	if fh.Size <= h.maxUpload {
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()

		if upload.Data, err = io.ReadAll(io.LimitReader(f, h.maxUpload+1)); err != nil {
			return err
		}
	}

	name, err := h.service.UploadPhoto(c.Request().Context(), actor, c.Param("id"), upload)
	if err != nil {
		return err
	}
	metrics.PhotosUploadedTotal.Inc()
	return respond(c, http.StatusOK, name)
}
