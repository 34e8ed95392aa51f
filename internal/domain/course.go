package domain

import "time"

// Course is one entry of the course catalog. UID is assigned once and never changes.
type Course struct {
	ID           int64     `json:"id"`
	UID          string    `json:"uid"`
	Name         string    `json:"name"`
	Department   string    `json:"department"`
	CourseID     string    `json:"courseID"`
	School       string    `json:"school"`
	Supported    bool      `json:"supported"`
	Abbreviation string    `json:"abbreviation,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// EffectiveAbbreviation treats unsupported courses as having no abbreviation.
func (c *Course) EffectiveAbbreviation() string {
	if !c.Supported {
		return ""
	}
	return c.Abbreviation
}
