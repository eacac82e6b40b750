package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"estate-metrics/internal/dto"
	"estate-metrics/internal/model"
	"estate-metrics/pkg/logger"
)

func (h *handler) listListings(c echo.Context) error {
	var req dto.ListListingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid query parameters"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Page <= 0 {
		req.Page = 1
	}

	listings, total, err := h.service.Query.Listings(c.Request().Context(), model.ListListingsParam{
		TransactionKind: req.TransactionKind,
		Area:            req.Area,
		Bedrooms:        req.Bedrooms,
		MinROI:          req.MinROI,
		MaxPrice:        req.MaxPrice,
		SortBy:          req.SortBy,
		SortDesc:        req.SortDesc,
		Limit:           req.Limit,
		Offset:          (req.Page - 1) * req.Limit,
	})
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "Failed to list listings", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse())
	}

	items := make([]dto.ListingResponse, 0, len(listings))
	for _, listing := range listings {
		items = append(items, dto.ToListingResponse(listing))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListListingsResponse{
		Items: items,
		Total: total,
		Page:  req.Page,
		Limit: req.Limit,
	}))
}

func (h *handler) cohortStats(c echo.Context) error {
	buildingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid building id"))
	}

	var req dto.CohortStatsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid query parameters"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	stats, err := h.service.Query.CohortStats(c.Request().Context(), model.CohortParam{
		BuildingID:      uint(buildingID),
		Bedrooms:        req.Bedrooms,
		TransactionKind: req.TransactionKind,
	})
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "Failed to compute cohort stats", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse())
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CohortStatsResponse{
		Count:           stats.Count,
		AvgPrice:        stats.AvgPrice,
		AvgROI:          stats.AvgROI,
		AvgExposureDays: stats.AvgExposureDays,
	}))
}
