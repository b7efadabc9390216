package models

import "time"

// Company issues assets. Assets may exist without one.
type Company struct {
	ID             int64      `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Profile        string     `db:"profile" json:"profile"`
	FoundationDate *time.Time `db:"foundation_date" json:"foundation_date,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
