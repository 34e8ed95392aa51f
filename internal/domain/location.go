package domain

import "time"

// Location is a labelled shift calendar. Label doubles as the location name used in schedules.
type Location struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	FeedURL   string    `json:"feedURL"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
