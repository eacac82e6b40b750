package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"estate-metrics/internal/dto"
	"estate-metrics/internal/service"
	"estate-metrics/pkg/logger"
)

func (h *handler) recompute(c echo.Context) error {
	var req dto.RecomputeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	result, err := h.service.Metrics.Recompute(c.Request().Context(), service.RecomputeOptions{
		Force:     req.Force,
		Limit:     req.Limit,
		BatchSize: req.BatchSize,
	})
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "Metrics recompute failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse())
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.RecomputeResponse{
		Processed: result.Processed,
		Created:   result.Created,
		Updated:   result.Updated,
		Batches:   result.Batches,
	}))
}

func (h *handler) linkBuildings(c echo.Context) error {
	var req dto.LinkBuildingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	ctx := c.Request().Context()
	linked, err := h.service.Linker.LinkUnlinked(ctx, req.Limit)
	if err != nil {
		h.log.ErrorContext(ctx, "Building linkage failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse())
	}

	areasUpdated, err := h.service.Linker.RefreshAreas(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "Area refresh failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse())
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.LinkBuildingsResponse{
		Linked:       linked,
		AreasUpdated: areasUpdated,
	}))
}

func (h *handler) importURL(c echo.Context) error {
	var req dto.ImportURLRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	result, err := h.service.Importer.ImportURL(c.Request().Context(), req.URL, req.UpdateExisting)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "Import from URL failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse())
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ImportResponse{
		Created: result.Created,
		Updated: result.Updated,
		Skipped: result.Skipped,
	}))
}
