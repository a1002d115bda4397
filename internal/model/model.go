package model

import "time"

// Room is a bookable physical room as configured by the operator.
// Rooms are static configuration data; nothing in the pipeline mutates them.
type Room struct {
	// ID is the upstream resource identifier used in API queries.
	ID int `yaml:"id" json:"id"`
	// Slug names the per-room output file (<slug>.ics).
	Slug string `yaml:"slug" json:"slug"`
	// Name is the human-readable room label, also used as the default
	// event location when the payload carries none.
	Name string `yaml:"name" json:"name"`
}

// TimeWindow is the UTC query window for one run. Start is strictly
// before End for every window produced by internal/window.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// CalendarEvent is a single normalized booking occurrence.
//
// UID is the external identity: calendar clients use it to update an
// existing entry in place instead of inserting a duplicate, so it must be
// a deterministic function of the upstream data (see internal/myschool
// UIDStrategy).
type CalendarEvent struct {
	UID  string
	Name string

	Begin time.Time
	End   time.Time

	Location    string
	Description string

	// URL is the room map link when the payload carries one; empty otherwise.
	URL string
}
