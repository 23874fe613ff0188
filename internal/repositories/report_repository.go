package repositories

import (
	"github.com/anonto42/nano-midea/social/internal/models"
	"gorm.io/gorm"
)

// ReportRepository defines the interface for moderation report operations
type ReportRepository interface {
	CreateReport(report *models.Report) error
	GetReportByID(id uint) (*models.Report, error)
	GetReports(status models.ReportStatus) ([]models.Report, error)
	UpdateReport(report *models.Report) error
}

// PostgresReportRepository implements ReportRepository over gorm
type PostgresReportRepository struct {
	db *gorm.DB
}

// NewPostgresReportRepository creates a new PostgresReportRepository
func NewPostgresReportRepository(db *gorm.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

func (r *PostgresReportRepository) CreateReport(report *models.Report) error {
	if report.Status == "" {
		report.Status = models.ReportPending
	}
	return r.db.Create(report).Error
}

func (r *PostgresReportRepository) GetReportByID(id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.First(&report, id).Error; err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

// GetReports lists reports, newest first. An empty status lists all of them.
func (r *PostgresReportRepository) GetReports(status models.ReportStatus) ([]models.Report, error) {
	var reports []models.Report
	q := r.db.Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *PostgresReportRepository) UpdateReport(report *models.Report) error {
	return r.db.Save(report).Error
}
