package enroll

import "github.com/noah-isme/coursedesk-api/internal/models"

// Record is the part of a student's enrollment that bulk enrollment can touch.
type Record struct {
	Email       string           `json:"email"`
	CourseID    string           `json:"course_id"`
	Name        string           `json:"name"`
	JoinState   models.JoinState `json:"join_state"`
	TeamName    string           `json:"team_name"`
	SectionName string           `json:"section_name"`
}

// FromStudent projects a persisted student onto a Record.
func FromStudent(s models.Student) Record {
	return Record{
		Email:       s.Email,
		CourseID:    s.CourseID,
		Name:        s.Name,
		JoinState:   s.JoinState,
		TeamName:    s.TeamName,
		SectionName: s.SectionName,
	}
}

// FromStudents projects a slice of students.
func FromStudents(students []models.Student) []Record {
	records := make([]Record, 0, len(students))
	for _, s := range students {
		records = append(records, FromStudent(s))
	}
	return records
}
