package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anonto42/nano-midea/social/internal/models"
)

// ReportService handles the moderation endpoints.
type ReportService service

// Create reports a post.
func (s *ReportService) Create(ctx context.Context, postID uint, req models.ReportRequest) (*models.Report, error) {
	if err := s.client.check(req); err != nil {
		return nil, err
	}
	var r models.Report
	if err := s.client.doJSON(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/reports", postID), req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Get returns one report.
func (s *ReportService) Get(ctx context.Context, reportID uint) (*models.Report, error) {
	var r models.Report
	if err := s.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/reports/%d", reportID), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns all reports. Admin only.
func (s *ReportService) List(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := s.client.doJSON(ctx, http.MethodGet, "/reports", nil, &reports)
	return reports, err
}

// UpdateStatus moves a report to a new moderation state. Admin only.
func (s *ReportService) UpdateStatus(ctx context.Context, reportID uint, req models.UpdateReportRequest) (*models.Report, error) {
	if err := s.client.check(req); err != nil {
		return nil, err
	}
	var r models.Report
	if err := s.client.doJSON(ctx, http.MethodPut, fmt.Sprintf("/reports/%d/status", reportID), req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
