package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"credit-intelligence/internal/dto"
	"credit-intelligence/internal/repository"
	"credit-intelligence/internal/scoring"
	"credit-intelligence/internal/service"
	"credit-intelligence/pkg/metrics"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	metrics   *metrics.Recorder
}

func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, validator *goValidator.Validate, service *service.Service, recorder *metrics.Recorder) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		validator: validator,
		service:   service,
		metrics:   recorder,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.GET("/", h.Health)
	h.echo.GET("/metrics", echo.WrapHandler(h.metrics.Handler()))

	base := h.echo.Group("/api")
	h.SetupRegistry(base)
	h.SetupScores(base)
	h.SetupJobs(base)
}

func (h *HttpAPIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("credit-intelligence is running", map[string]interface{}{
		"model": h.service.ScoringService.Status(),
	}))
}

// bindAndValidate decodes the request into req and runs struct validation. A non-nil
// result is the bad request response to send.
func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) *dto.BaseResponse {
	if err := c.Bind(req); err != nil {
		return dto.NewBadRequestResponse("invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return dto.NewBadRequestResponse(err.Error())
	}
	return nil
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return uint(id), nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scoring.ErrEntityNotScored),
		errors.Is(err, repository.ErrCompanyNotFound),
		errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, service.ErrScheduleNotFound):
		return http.StatusNotFound
	case errors.Is(err, scoring.ErrInvalidOverride),
		errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, scoring.ErrDataUnavailable),
		errors.Is(err, scoring.ErrInsufficientData),
		errors.Is(err, scoring.ErrModelNotTrained),
		errors.Is(err, service.ErrFREDNotConfigured):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, err error) error {
	code := statusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal server error"
	}
	return c.JSON(code, dto.NewBaseResponse(code, message, nil))
}
