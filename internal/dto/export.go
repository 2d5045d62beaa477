package dto

import "github.com/noah-isme/coursedesk-api/internal/models"

// RosterExportRequest captures POST /courses/:courseId/students/export payload.
type RosterExportRequest struct {
	Format  models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	Section string              `json:"section,omitempty" validate:"max=60"`
}

// RosterExportResponse is returned after enqueueing an export.
type RosterExportResponse struct {
	ID     string              `json:"id"`
	Status models.ExportStatus `json:"status"`
}

// RosterExportStatusResponse exposes job state.
type RosterExportStatusResponse struct {
	ID        string              `json:"id"`
	CourseID  string              `json:"courseId"`
	Status    models.ExportStatus `json:"status"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
