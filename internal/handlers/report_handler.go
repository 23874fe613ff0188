package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/social/internal/models"
	"github.com/anonto42/nano-midea/social/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ReportHandler handles moderation reports
type ReportHandler struct {
	reportRepository repositories.ReportRepository
	postRepository   repositories.PostRepository
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportRepo repositories.ReportRepository, postRepo repositories.PostRepository) *ReportHandler {
	return &ReportHandler{reportRepository: reportRepo, postRepository: postRepo}
}

// RegisterReportRoutes registers report-related routes
func (h *ReportHandler) RegisterReportRoutes(g *echo.Group) {
	g.POST("/posts/:id/reports", h.CreateReport)
	g.GET("/reports", h.GetReports)
	g.GET("/reports/:report_id", h.GetReport)
	g.PUT("/reports/:report_id/status", h.UpdateReportStatus)
}

// CreateReport files a report against a post
func (h *ReportHandler) CreateReport(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	var req models.ReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	postID, err := idParam(c, "id", "post")
	if err != nil {
		return err
	}
	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return storeError(err, "Post")
	}

	report := &models.Report{
		UserID:      v.ID,
		PostID:      postID,
		Reason:      req.Reason,
		Description: req.Description,
		Status:      models.ReportPending,
	}
	if err := h.reportRepository.CreateReport(report); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusCreated, report)
}

// GetReport returns a report to its reporter or to an admin
func (h *ReportHandler) GetReport(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	report, err := h.report(c)
	if err != nil {
		return err
	}
	if !v.IsSelf(report.UserID) && !v.CanModerate() {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to view this report")
	}
	return respond(c, http.StatusOK, report)
}

// GetReports lists reports, optionally filtered by status. Admin only.
func (h *ReportHandler) GetReports(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	reports, err := h.reportRepository.GetReports(models.ReportStatus(c.QueryParam("status")))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return respond(c, http.StatusOK, reports)
}

// UpdateReportStatus moves a report to a new moderation state. Admin only.
func (h *ReportHandler) UpdateReportStatus(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	var req models.UpdateReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	report, err := h.report(c)
	if err != nil {
		return err
	}

	adminID := currentViewer(c).ID
	report.Status = req.Status
	report.AdminID = &adminID
	if err := h.reportRepository.UpdateReport(report); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, report)
}

func (h *ReportHandler) report(c echo.Context) (*models.Report, error) {
	id, err := idParam(c, "report_id", "report")
	if err != nil {
		return nil, err
	}
	report, err := h.reportRepository.GetReportByID(id)
	if err != nil {
		return nil, storeError(err, "Report")
	}
	return report, nil
}

func requireAdmin(c echo.Context) error {
	v, err := requireViewer(c)
	if err != nil {
		return err
	}
	if !v.CanModerate() {
		return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
	}
	return nil
}
