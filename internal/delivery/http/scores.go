package http

import (
	"net/http"

	"credit-intelligence/internal/dto"
	"credit-intelligence/internal/model"
	"credit-intelligence/pkg/utils"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupScores(base *echo.Group) {
	v1 := base.Group("/v1")
	{
		v1.POST("/model/train", h.TrainModel)
		v1.GET("/model/status", h.ModelStatus)
		v1.POST("/scores/:company_id", h.ScoreCompany)
		v1.GET("/scores/:company_id", h.ScoreHistory)
		v1.GET("/scores/:company_id/latest", h.LatestScore)
		v1.POST("/whatif/:company_id", h.WhatIf)
	}
}

func (h *HttpAPIHandler) TrainModel(c echo.Context) error {
	report, err := h.service.ScoringService.Train(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Model trained", report))
}

func (h *HttpAPIHandler) ModelStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Model status", h.service.ScoringService.Status()))
}

func (h *HttpAPIHandler) ScoreCompany(c echo.Context) error {
	companyID, err := parseIDParam(c, "company_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	result, err := h.service.ScoringService.Score(c.Request().Context(), companyID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Company scored", result))
}

func (h *HttpAPIHandler) LatestScore(c echo.Context) error {
	companyID, err := parseIDParam(c, "company_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	result, err := h.service.ScoringService.LatestScore(c.Request().Context(), companyID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Latest score", result))
}

// ScoreHistory returns persisted scores oldest first, optionally bounded by the
// from/to query parameters (2006-01-02 or RFC3339).
func (h *HttpAPIHandler) ScoreHistory(c echo.Context) error {
	companyID, err := parseIDParam(c, "company_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	query := new(dto.ScoreHistoryQuery)
	if bad := h.bindAndValidate(c, query); bad != nil {
		return c.JSON(bad.Code, bad)
	}

	param := model.GetScoreHistoryParam{CompanyID: companyID, Limit: query.Limit}
	if query.From != "" {
		if param.From, err = utils.ParseDate(query.From); err != nil {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid from: "+err.Error()))
		}
	}
	if query.To != "" {
		if param.To, err = utils.ParseDate(query.To); err != nil {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid to: "+err.Error()))
		}
	}

	history, err := h.service.ScoringService.History(c.Request().Context(), param)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Score history", history))
}

// WhatIf scores a company with hypothetical feature values; nothing is persisted.
func (h *HttpAPIHandler) WhatIf(c echo.Context) error {
	companyID, err := parseIDParam(c, "company_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	req := new(dto.WhatIfRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return c.JSON(bad.Code, bad)
	}
	result, err := h.service.ScoringService.WhatIf(c.Request().Context(), companyID, req.Overrides)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("What-if simulation", result))
}
