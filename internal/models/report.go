package models

import "time"

// ReportStatus is the moderation state of a report
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportReviewed ReportStatus = "reviewed"
	ReportResolved ReportStatus = "resolved"
	ReportRejected ReportStatus = "rejected"
)

// Report represents a moderation report filed against a post
type Report struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	UserID      uint         `json:"user_id" gorm:"index"`
	PostID      uint         `json:"post_id" gorm:"index"`
	Reason      string       `json:"reason"`
	Description string       `json:"description,omitempty"`
	Status      ReportStatus `json:"status" gorm:"size:10;default:pending;index"`
	AdminID     *uint        `json:"admin_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ReportRequest defines the request body for reporting a post
type ReportRequest struct {
	Reason      string `json:"reason" validate:"required,min=3,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// UpdateReportRequest defines the request body for changing a report's status
type UpdateReportRequest struct {
	Status ReportStatus `json:"status" validate:"required,oneof=pending reviewed resolved rejected"`
}
