package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Account represents a person registered in the system, keyed by Google ID.
type Account struct {
	GoogleID          string            `db:"google_id" json:"googleId"`
	Name              string            `db:"name" json:"name"`
	Email             string            `db:"email" json:"email"`
	ReadNotifications ReadNotifications `db:"read_notifications" json:"readNotifications"`
	CreatedAt         time.Time         `db:"created_at" json:"createdAt"`
}

// ReadNotifications maps notification IDs to the end time of the notification that was read.
type ReadNotifications map[string]int64

// Value marshals the map into JSON for persistence.
func (n ReadNotifications) Value() (driver.Value, error) {
	if n == nil {
		n = ReadNotifications{}
	}
	data, err := json.Marshal(map[string]int64(n))
	if err != nil {
		return nil, fmt.Errorf("marshal read notifications: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSONB payloads.
func (n *ReadNotifications) Scan(value interface{}) error {
	if value == nil {
		*n = ReadNotifications{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ReadNotifications", value)
	}
	if len(data) == 0 {
		*n = ReadNotifications{}
		return nil
	}
	out := map[string]int64{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal read notifications: %w", err)
	}
	*n = out
	return nil
}

// AccountInfo aggregates what the admin account page shows for one account.
type AccountInfo struct {
	Account           Account  `json:"account"`
	StudentCourses    []Course `json:"studentCourses"`
	InstructorCourses []Course `json:"instructorCourses"`
}
