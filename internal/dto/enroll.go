package dto

import (
	"github.com/noah-isme/coursedesk-api/internal/enroll"
	"github.com/noah-isme/coursedesk-api/internal/models"
)

// EnrollPageData is everything the course enroll page needs on load.
type EnrollPageData struct {
	CoursePresent             bool             `json:"coursePresent"`
	CourseID                  string           `json:"courseId"`
	HasResponses              bool             `json:"hasResponses"`
	ExistingStudents          []models.Student `json:"existingStudents"`
	NewStudentsPanelCollapsed bool             `json:"newStudentsPanelCollapsed"`
}

// EnrollRequest carries pending rows either as JSON rows or as CSV text.
// When both are supplied the JSON rows win.
type EnrollRequest struct {
	Rows []enroll.Row `json:"rows"`
	CSV  string       `json:"csv"`
}

// EnrollPreviewResponse lists each pending row's classification.
type EnrollPreviewResponse struct {
	CourseID string          `json:"courseId"`
	Results  []enroll.Result `json:"results"`
	Summary  enroll.Summary  `json:"summary"`
	Warnings []string        `json:"warnings,omitempty"`
}

// EnrollResponse reports the outcome of an enroll request.
type EnrollResponse struct {
	EnrollPreviewResponse
	Enrolled []string `json:"enrolled"`
	Skipped  []string `json:"skipped"`
}
