package models

// InstructorRole is the permission preset an instructor holds in a course.
type InstructorRole string

const (
	InstructorRoleCoowner  InstructorRole = "COOWNER"
	InstructorRoleManager  InstructorRole = "MANAGER"
	InstructorRoleObserver InstructorRole = "OBSERVER"
	InstructorRoleTutor    InstructorRole = "TUTOR"
	InstructorRoleCustom   InstructorRole = "CUSTOM"
)

// Instructor is an instructor's membership in a course.
type Instructor struct {
	CourseID string         `db:"course_id" json:"courseId"`
	GoogleID *string        `db:"google_id" json:"googleId,omitempty"`
	Email    string         `db:"email" json:"email"`
	Name     string         `db:"name" json:"name"`
	Role     InstructorRole `db:"role" json:"role"`
}
