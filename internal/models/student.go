package models

// JoinState tells whether a student has linked their account to the course.
type JoinState string

const (
	JoinStateJoined    JoinState = "JOINED"
	JoinStateNotJoined JoinState = "NOT_JOINED"
)

// Student is a student's membership in a course.
type Student struct {
	Email       string    `db:"email" json:"email"`
	CourseID    string    `db:"course_id" json:"courseId"`
	Name        string    `db:"name" json:"name"`
	GoogleID    *string   `db:"google_id" json:"googleId,omitempty"`
	Comments    string    `db:"comments" json:"comments,omitempty"`
	JoinState   JoinState `db:"join_state" json:"joinState"`
	TeamName    string    `db:"team_name" json:"teamName"`
	SectionName string    `db:"section_name" json:"sectionName"`
}

// Students wraps a student list.
type Students struct {
	Students []Student `json:"students"`
}
