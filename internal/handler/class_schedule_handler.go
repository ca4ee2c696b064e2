package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campus-hub/academic-core-api/internal/dto"
	"github.com/campus-hub/academic-core-api/internal/models"
	"github.com/campus-hub/academic-core-api/internal/service"
	appErrors "github.com/campus-hub/academic-core-api/pkg/errors"
	"github.com/campus-hub/academic-core-api/pkg/response"
)

// ClassScheduleHandler manages class schedule endpoints.
type ClassScheduleHandler struct {
	service *service.ClassScheduleService
}

// NewClassScheduleHandler constructs the handler.
func NewClassScheduleHandler(svc *service.ClassScheduleService) *ClassScheduleHandler {
	return &ClassScheduleHandler{service: svc}
}

// List godoc
// @Summary List class schedules
// @Tags ClassSchedules
// @Produce json
// @Param roomId query string false "Filter by room"
// @Param facultyId query string false "Filter by faculty"
// @Param sectionId query string false "Filter by section"
// @Param semesterRegistrationId query string false "Filter by registration"
// @Param dayOfWeek query string false "Filter by day"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /class-schedules [get]
func (h *ClassScheduleHandler) List(c *gin.Context) {
	query := dto.ClassScheduleQuery{
		RoomID:                 c.Query("roomId"),
		FacultyID:              c.Query("facultyId"),
		OfferedCourseSectionID: c.Query("sectionId"),
		SemesterRegistrationID: c.Query("semesterRegistrationId"),
		DayOfWeek:              strings.ToUpper(c.Query("dayOfWeek")),
		SortBy:                 c.Query("sort"),
		SortOrder:              c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		query.PageSize = limit
	}

	schedules, total, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, &models.Pagination{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get class schedule
// @Tags ClassSchedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /class-schedules/{id} [get]
func (h *ClassScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Create godoc
// @Summary Assign a class schedule
// @Tags ClassSchedules
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Router /class-schedules [post]
func (h *ClassScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateClassScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Update godoc
// @Summary Reassign a class schedule
// @Tags ClassSchedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.UpdateClassScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /class-schedules/{id} [put]
func (h *ClassScheduleHandler) Update(c *gin.Context) {
	var req dto.UpdateClassScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Reassign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete class schedule
// @Tags ClassSchedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /class-schedules/{id} [delete]
func (h *ClassScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
