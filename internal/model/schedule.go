package model

// Schedule is the operating window for one weekday. Day is the lowercase
// weekday name and is unique. When Enabled is false the start and end times
// are stored as NULL.
type Schedule struct {
	ID        int64   `json:"id" db:"id"`
	Day       string  `json:"day" db:"day"`
	Enabled   bool    `json:"enabled" db:"enabled"`
	StartTime *string `json:"start_time" db:"start_time"`
	EndTime   *string `json:"end_time" db:"end_time"`
}
