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

// RegistrationHandler manages semester registration endpoints, both the
// administrative window lifecycle and the student-facing flows.
type RegistrationHandler struct {
	registrations *service.RegistrationService
	enrollments   *service.EnrollmentService
	metrics       *service.MetricsService
}

// NewRegistrationHandler constructs the handler.
func NewRegistrationHandler(registrations *service.RegistrationService, enrollments *service.EnrollmentService, metrics *service.MetricsService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, enrollments: enrollments, metrics: metrics}
}

// List godoc
// @Summary List semester registrations
// @Tags Registrations
// @Produce json
// @Param status query string false "Filter by status"
// @Param academicSemesterId query string false "Filter by semester"
// @Param search query string false "Search by semester title"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /semester-registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	query := dto.RegistrationQuery{
		Status:             strings.ToUpper(c.Query("status")),
		AcademicSemesterID: c.Query("academicSemesterId"),
		Search:             c.Query("search"),
		SortBy:             c.Query("sort"),
		SortOrder:          c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		query.PageSize = limit
	}

	registrations, total, err := h.registrations.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, &models.Pagination{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get semester registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /semester-registrations/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	registration, err := h.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}

// Create godoc
// @Summary Open a semester registration window
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.CreateRegistrationRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /semester-registrations [post]
func (h *RegistrationHandler) Create(c *gin.Context) {
	var req dto.CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.registrations.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// Update godoc
// @Summary Update registration window
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body dto.UpdateRegistrationRequest true "Registration payload"
// @Success 200 {object} response.Envelope
// @Router /semester-registrations/{id} [patch]
func (h *RegistrationHandler) Update(c *gin.Context) {
	var req dto.UpdateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.registrations.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}

// UpdateStatus godoc
// @Summary Advance registration status
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body dto.UpdateRegistrationStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /semester-registrations/{id}/status [patch]
func (h *RegistrationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateRegistrationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.registrations.AdvanceStatus(c.Request.Context(), c.Param("id"), models.SemesterRegistrationStatus(strings.ToUpper(req.Status)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}

// Delete godoc
// @Summary Delete an upcoming registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 204
// @Router /semester-registrations/{id} [delete]
func (h *RegistrationHandler) Delete(c *gin.Context) {
	if err := h.registrations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// StartNewSemester godoc
// @Summary Roll an ended registration into the new semester
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /semester-registrations/{id}/start-new-semester [post]
func (h *RegistrationHandler) StartNewSemester(c *gin.Context) {
	if err := h.registrations.StartNewSemester(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "semester started successfully"}, nil)
}

// StartMyRegistration godoc
// @Summary Start my registration for the active window
// @Tags MyRegistration
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /my-registration/start [post]
func (h *RegistrationHandler) StartMyRegistration(c *gin.Context) {
	studentID, err := currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.enrollments.StartMyRegistration(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetMyRegistration godoc
// @Summary Get my registration state
// @Tags MyRegistration
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /my-registration [get]
func (h *RegistrationHandler) GetMyRegistration(c *gin.Context) {
	studentID, err := currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.enrollments.GetMyRegistration(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MyCourses godoc
// @Summary Get my semester course catalogue
// @Tags MyRegistration
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /my-registration/courses [get]
func (h *RegistrationHandler) MyCourses(c *gin.Context) {
	studentID, err := currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	courses, err := h.enrollments.MyCourses(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// MyEnrolledCourses godoc
// @Summary Get my current ledger
// @Tags MyRegistration
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /my-registration/enrolled [get]
func (h *RegistrationHandler) MyEnrolledCourses(c *gin.Context) {
	studentID, err := currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	courses, err := h.enrollments.MyEnrolledCourses(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Enroll godoc
// @Summary Enroll into an offered course
// @Tags MyRegistration
// @Accept json
// @Produce json
// @Param payload body dto.EnrollCourseRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Router /my-registration/enroll [post]
func (h *RegistrationHandler) Enroll(c *gin.Context) {
	studentID, err := currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.EnrollCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.Enroll(c.Request.Context(), studentID, req); err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordEnrollment()
	response.JSON(c, http.StatusOK, gin.H{"message": "enrolled successfully"}, nil)
}

// Withdraw godoc
// @Summary Withdraw from an offered course
// @Tags MyRegistration
// @Accept json
// @Produce json
// @Param payload body dto.WithdrawCourseRequest true "Withdrawal payload"
// @Success 200 {object} response.Envelope
// @Router /my-registration/withdraw [post]
func (h *RegistrationHandler) Withdraw(c *gin.Context) {
	studentID, err := currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.WithdrawCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.Withdraw(c.Request.Context(), studentID, req); err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordWithdrawal()
	response.JSON(c, http.StatusOK, gin.H{"message": "withdrawn successfully"}, nil)
}

// Confirm godoc
// @Summary Confirm my registration
// @Tags MyRegistration
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /my-registration/confirm [post]
func (h *RegistrationHandler) Confirm(c *gin.Context) {
	studentID, err := currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.enrollments.Confirm(c.Request.Context(), studentID); err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordConfirmation()
	response.JSON(c, http.StatusOK, gin.H{"message": "registration confirmed"}, nil)
}
