package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scholarsync/scholarsync-api/internal/service"
	"github.com/scholarsync/scholarsync-api/pkg/response"
)

// AnalyticsHandler exposes aggregate datasets for dashboard charts.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler creates a new handler.
func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

func cacheMeta(hit bool) map[string]interface{} {
	return map[string]interface{}{"cache_hit": hit}
}

// Courses godoc
// @Summary Course summaries
// @Description Per-course student counts and average marks
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /analytics/courses [get]
func (h *AnalyticsHandler) Courses(c *gin.Context) {
	summaries, hit, err := h.service.Courses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil, cacheMeta(hit))
}

// Semesters godoc
// @Summary Semester distribution
// @Description Student counts per semester
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /analytics/semesters [get]
func (h *AnalyticsHandler) Semesters(c *gin.Context) {
	distribution, hit, err := h.service.Semesters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, distribution, nil, cacheMeta(hit))
}

// Attendance godoc
// @Summary Attendance summaries
// @Description Per-course average attendance
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /analytics/attendance [get]
func (h *AnalyticsHandler) Attendance(c *gin.Context) {
	summaries, hit, err := h.service.Attendance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil, cacheMeta(hit))
}

// System godoc
// @Summary System metrics snapshot
// @Description Aggregated runtime and cache statistics
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.SystemMetrics(), nil)
}
