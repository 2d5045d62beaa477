package models

// Course is a course offered by an institute.
type Course struct {
	CourseID          string `db:"course_id" json:"courseId"`
	CourseName        string `db:"course_name" json:"courseName"`
	Institute         string `db:"institute" json:"institute"`
	TimeZone          string `db:"time_zone" json:"timeZone"`
	CreationTimestamp int64  `db:"creation_timestamp" json:"creationTimestamp"`
	DeletionTimestamp *int64 `db:"deletion_timestamp" json:"deletionTimestamp,omitempty"`
}

// Courses wraps a course list.
type Courses struct {
	Courses []Course `json:"courses"`
}

// HasResponses reports whether a course, and each of its sessions, has feedback responses.
type HasResponses struct {
	HasResponses          bool            `json:"hasResponses"`
	HasResponsesBySession map[string]bool `json:"hasResponsesBySession"`
}

// SessionResponseCount is a per-session response count row.
type SessionResponseCount struct {
	SessionName string `db:"session_name"`
	Responses   int    `db:"responses"`
}
