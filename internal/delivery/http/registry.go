package http

import (
	"net/http"

	"credit-intelligence/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupRegistry(base *echo.Group) {
	v1 := base.Group("/v1")
	{
		v1.POST("/companies", h.RegisterCompany)
		v1.GET("/companies", h.ListCompanies)
		v1.POST("/financials", h.RecordFinancials)
		v1.POST("/macro", h.RecordMacro)
		v1.POST("/events", h.RecordEvent)
	}
}

func (h *HttpAPIHandler) RegisterCompany(c echo.Context) error {
	req := new(dto.RegisterCompanyRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return c.JSON(bad.Code, bad)
	}
	company, err := h.service.RegistryService.RegisterCompany(c.Request().Context(), *req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Company registered", company))
}

func (h *HttpAPIHandler) ListCompanies(c echo.Context) error {
	companies, err := h.service.RegistryService.ListCompanies(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Companies", companies))
}

func (h *HttpAPIHandler) RecordFinancials(c echo.Context) error {
	req := new(dto.RecordFinancialsRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return c.JSON(bad.Code, bad)
	}
	snapshot, err := h.service.RegistryService.RecordFinancials(c.Request().Context(), *req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Financial snapshot recorded", snapshot))
}

func (h *HttpAPIHandler) RecordMacro(c echo.Context) error {
	req := new(dto.RecordMacroRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return c.JSON(bad.Code, bad)
	}
	snapshot, err := h.service.RegistryService.RecordMacro(c.Request().Context(), *req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Macro snapshot recorded", snapshot))
}

func (h *HttpAPIHandler) RecordEvent(c echo.Context) error {
	req := new(dto.RecordEventRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return c.JSON(bad.Code, bad)
	}
	event, err := h.service.RegistryService.RecordEvent(c.Request().Context(), *req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Event recorded", event))
}
