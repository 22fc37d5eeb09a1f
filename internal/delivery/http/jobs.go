package http

import (
	"net/http"

	"credit-intelligence/internal/dto"
	"credit-intelligence/internal/model"
	"credit-intelligence/pkg/utils"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupJobs(base *echo.Group) {
	v1 := base.Group("/v1/jobs")
	{
		v1.GET("", h.ListJobs)
		v1.POST("/run", h.RunJobs)
		v1.POST("/:id/run", h.RunJob)
	}

}

func (h *HttpAPIHandler) RunJobs(c echo.Context) error {
	response := dto.NewBaseResponse(http.StatusOK, "Start running jobs", nil)
	if err := h.service.SchedulerService.Execute(c.Request().Context()); err != nil {
		response.Code = http.StatusInternalServerError
		response.Message = err.Error()
	}
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) RunJob(c echo.Context) error {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	if err := h.service.SchedulerService.RunJobTask(c.Request().Context(), jobID); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusAccepted, dto.NewBaseResponse(http.StatusAccepted, "Job started", nil))
}

// ListJobs returns every job with its schedules and the latest runs.
func (h *HttpAPIHandler) ListJobs(c echo.Context) error {
	jobs, err := h.service.SchedulerService.GetJobSchedule(c.Request().Context(), model.GetJobParam{
		WithTaskHistory: &model.GetTaskExecutionHistoryParam{Limit: utils.ToPointer(20)},
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Jobs", jobs))
}
