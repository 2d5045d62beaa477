package models

import "time"

// FeedbackSession is a feedback session belonging to a course.
type FeedbackSession struct {
	CourseID     string    `db:"course_id" json:"courseId"`
	SessionName  string    `db:"session_name" json:"feedbackSessionName"`
	Instructions string    `db:"instructions" json:"instructions"`
	StartTime    time.Time `db:"start_time" json:"submissionStartTimestamp"`
	EndTime      time.Time `db:"end_time" json:"submissionEndTimestamp"`
}

// SessionSearchParams are the parameters entered in the sessions search bar.
type SessionSearchParams struct {
	SearchKey string `json:"searchKey" form:"searchKey" validate:"required,max=100"`
	Page      int    `json:"-" form:"page"`
	PageSize  int    `json:"-" form:"limit"`
}
